package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lhollands/mediaserver/internal/domain"
)

// RatingsRepository persists movie rating snapshots.
type RatingsRepository struct {
	pool *pgxpool.Pool
}

// Upsert stores a rating snapshot through the addMovieRatings procedure. The
// call is a single auto-committed statement: one commit per movie, so an
// aborted enrichment pass leaves earlier snapshots durable.
func (r *RatingsRepository) Upsert(ctx context.Context, snap domain.RatingSnapshot) error {
	_, err := r.pool.Exec(ctx,
		`SELECT mediaserver.addMovieRatings($1::int, $2::numeric, $3::bigint, $4::numeric, $5::boolean, $6::boolean)`,
		snap.MovieID, snap.IMDBScore, snap.IMDBVotes, snap.RTScore, snap.InTop250, snap.InTop100,
	)
	if err != nil {
		return fmt.Errorf("upsert rating snapshot for movie %d: %w", snap.MovieID, err)
	}
	return nil
}

// Get retrieves the stored snapshot for one movie.
func (r *RatingsRepository) Get(ctx context.Context, movieID int) (domain.RatingSnapshot, error) {
	const query = `
        SELECT movie_id, imdb_score, imdb_votes, rt_score, top250, top100
        FROM mediaserver.movieratings
        WHERE movie_id = $1
    `
	var snap domain.RatingSnapshot
	err := r.pool.QueryRow(ctx, query, movieID).Scan(
		&snap.MovieID,
		&snap.IMDBScore,
		&snap.IMDBVotes,
		&snap.RTScore,
		&snap.InTop250,
		&snap.InTop100,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.RatingSnapshot{}, ErrNotFound
		}
		return domain.RatingSnapshot{}, err
	}
	return snap, nil
}
