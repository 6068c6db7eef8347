package repository

import "os"

// binaryRepositoryURL returns the maven repository used to fetch the embedded
// postgres binaries, overridable via EMBEDDED_POSTGRES_BINARY_REPO_URL for
// environments where repo1.maven.org is unreachable.
func binaryRepositoryURL() string {
	if url := os.Getenv("EMBEDDED_POSTGRES_BINARY_REPO_URL"); url != "" {
		return url
	}
	return "https://repo1.maven.org/maven2"
}
