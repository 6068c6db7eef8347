package domain

import "time"

// Song is a catalog song row with its performing artists aggregated.
type Song struct {
	ID      int
	Title   string
	Artists *string
	Length  *int
}

// Artist is a catalog artist with the number of songs they perform on.
type Artist struct {
	ID        int
	Name      string
	SongCount int64
}

// Album is a catalog album with its song count and contributing artists.
type Album struct {
	ID        int
	Title     string
	SongCount int64
	Artists   *string
}

// TVShow is a catalog TV show with its episode count.
type TVShow struct {
	ID           int
	Title        string
	EpisodeCount int64
}

// TVEpisode is a single episode of a TV show.
type TVEpisode struct {
	MediaID int
	Title   string
	Season  int
	Episode int
	AirDate *time.Time
}

// Podcast is a catalog podcast with its episode count.
type Podcast struct {
	ID           int
	Title        string
	URI          *string
	EpisodeCount int64
}

// PodcastEpisode is a single published podcast episode.
type PodcastEpisode struct {
	MediaID   int
	PodcastID int
	Title     string
	URI       *string
	Published *time.Time
	Length    *int
}
