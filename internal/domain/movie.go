package domain

import "time"

// Movie represents a catalog movie row. LastUpdated records when the rating
// snapshot was last refreshed and is nil for movies that were never enriched.
type Movie struct {
	ID          int
	Title       string
	ReleaseYear int
	LastUpdated *time.Time
}

// EnrichedMovie pairs a movie with its stored rating snapshot.
type EnrichedMovie struct {
	Movie
	Rating RatingSnapshot
}
