package domain

import "fmt"

// RatingSnapshot holds the externally sourced rating fields for one movie.
// Every score field is individually nullable: a partial upstream payload must
// never prevent the snapshot from being stored.
type RatingSnapshot struct {
	MovieID   int
	IMDBScore *float64
	IMDBVotes *int64
	RTScore   *float64
	InTop250  bool
	InTop100  bool
}

// RatingMetric selects which score column drives ordering.
type RatingMetric string

const (
	MetricIMDB RatingMetric = "IMDB"
	MetricRT   RatingMetric = "RT"
)

// ParseRatingMetric validates a metric string.
func ParseRatingMetric(s string) (RatingMetric, error) {
	switch RatingMetric(s) {
	case MetricIMDB, MetricRT:
		return RatingMetric(s), nil
	}
	return "", fmt.Errorf("unknown rating metric %q", s)
}

// RankScope restricts movies to one or both chart membership flags.
type RankScope string

const (
	ScopeTop250 RankScope = "top250"
	ScopeTop100 RankScope = "top100"
	ScopeBoth   RankScope = "both"
)

// ParseRankScope validates a scope string.
func ParseRankScope(s string) (RankScope, error) {
	switch RankScope(s) {
	case ScopeTop250, ScopeTop100, ScopeBoth:
		return RankScope(s), nil
	}
	return "", fmt.Errorf("unknown rank scope %q", s)
}
