package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lhollands/mediaserver/internal/domain"
)

// MoviesRepository provides persistence helpers for movie entities.
type MoviesRepository struct {
	pool *pgxpool.Pool
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const movieColumns = `
    movie_id,
    movie_title,
    release_year,
    last_updated
`

var enrichedColumns = []string{
	"m.movie_id",
	"m.movie_title",
	"m.release_year",
	"m.last_updated",
	"r.imdb_score",
	"r.imdb_votes",
	"r.rt_score",
	"COALESCE(r.top250, false)",
	"COALESCE(r.top100, false)",
}

// List returns every catalog movie in ascending identifier order, including
// last_updated so the freshness cache can be seeded from the result.
func (r *MoviesRepository) List(ctx context.Context) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM mediaserver.movie ORDER BY movie_id`, movieColumns)
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list movies: %w", err)
	}
	defer rows.Close()

	var results []domain.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Get fetches a movie by its identifier.
func (r *MoviesRepository) Get(ctx context.Context, id int) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM mediaserver.movie WHERE movie_id = $1`, movieColumns)
	movie, err := scanMovie(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// Search returns movies whose title matches the given regular expression,
// case-insensitively, in ascending identifier order.
func (r *MoviesRepository) Search(ctx context.Context, term string) ([]domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM mediaserver.movie WHERE movie_title ~* $1 ORDER BY movie_id`, movieColumns)
	rows, err := r.pool.Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	defer rows.Close()

	var results []domain.Movie
	for rows.Next() {
		movie, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Add inserts a new movie through the addMovie procedure and returns its id.
func (r *MoviesRepository) Add(ctx context.Context, title string, releaseYear int) (int, error) {
	var id int
	err := r.pool.QueryRow(ctx, `SELECT mediaserver.addMovie($1, $2)`, title, releaseYear).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("add movie: %w", err)
	}
	return id, nil
}

// LastID returns the highest movie identifier, or 0 for an empty catalog.
func (r *MoviesRepository) LastID(ctx context.Context) (int, error) {
	var id *int
	err := r.pool.QueryRow(ctx, `SELECT max(movie_id) FROM mediaserver.movie`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("last movie id: %w", err)
	}
	if id == nil {
		return 0, nil
	}
	return *id, nil
}

// ListEnriched returns the full catalog joined with rating snapshots, ordered
// by identifier. Movies without a snapshot carry a zero-value snapshot.
func (r *MoviesRepository) ListEnriched(ctx context.Context) ([]domain.EnrichedMovie, error) {
	builder := enrichedSelect().OrderBy("m.movie_id")
	return r.queryEnriched(ctx, builder)
}

// GetEnriched fetches a single movie joined with its rating snapshot.
func (r *MoviesRepository) GetEnriched(ctx context.Context, id int) (domain.EnrichedMovie, error) {
	query, args, err := enrichedSelect().Where(sq.Eq{"m.movie_id": id}).ToSql()
	if err != nil {
		return domain.EnrichedMovie{}, fmt.Errorf("build enriched query: %w", err)
	}
	enriched, err := scanEnriched(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.EnrichedMovie{}, ErrNotFound
		}
		return domain.EnrichedMovie{}, err
	}
	return enriched, nil
}

// ListSorted returns enriched movies ordered by the chosen metric: rows with a
// null metric sort last, then metric descending with cross-metric tie-breaks.
func (r *MoviesRepository) ListSorted(ctx context.Context, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	builder := enrichedSelect().OrderBy(orderByMetric(metric)...)
	return r.queryEnriched(ctx, builder)
}

// ListRanked restricts enriched movies to the given chart scope, ordered the
// same way as ListSorted.
func (r *MoviesRepository) ListRanked(ctx context.Context, scope domain.RankScope, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	builder := enrichedSelect()
	switch scope {
	case domain.ScopeTop250:
		builder = builder.Where(sq.Eq{"r.top250": true})
	case domain.ScopeTop100:
		builder = builder.Where(sq.Eq{"r.top100": true})
	case domain.ScopeBoth:
		builder = builder.Where(sq.Eq{"r.top250": true, "r.top100": true})
	default:
		return nil, fmt.Errorf("unknown rank scope %q", scope)
	}
	return r.queryEnriched(ctx, builder.OrderBy(orderByMetric(metric)...))
}

func enrichedSelect() sq.SelectBuilder {
	return psql.Select(enrichedColumns...).
		From("mediaserver.movie m").
		LeftJoin("mediaserver.movieratings r USING (movie_id)")
}

func orderByMetric(metric domain.RatingMetric) []string {
	if metric == domain.MetricRT {
		return []string{
			"r.rt_score IS NULL",
			"r.rt_score DESC",
			"r.imdb_score DESC",
			"r.imdb_votes DESC",
		}
	}
	return []string{
		"r.imdb_score IS NULL",
		"r.imdb_score DESC",
		"r.imdb_votes DESC",
		"r.rt_score DESC",
	}
}

func (r *MoviesRepository) queryEnriched(ctx context.Context, builder sq.SelectBuilder) ([]domain.EnrichedMovie, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build enriched query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enriched movies: %w", err)
	}
	defer rows.Close()

	results := make([]domain.EnrichedMovie, 0)
	for rows.Next() {
		enriched, err := scanEnriched(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, enriched)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	if err := row.Scan(&movie.ID, &movie.Title, &movie.ReleaseYear, &movie.LastUpdated); err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}

func scanEnriched(row pgx.Row) (domain.EnrichedMovie, error) {
	var enriched domain.EnrichedMovie
	err := row.Scan(
		&enriched.ID,
		&enriched.Title,
		&enriched.ReleaseYear,
		&enriched.LastUpdated,
		&enriched.Rating.IMDBScore,
		&enriched.Rating.IMDBVotes,
		&enriched.Rating.RTScore,
		&enriched.Rating.InTop250,
		&enriched.Rating.InTop100,
	)
	if err != nil {
		return domain.EnrichedMovie{}, err
	}
	enriched.Rating.MovieID = enriched.ID
	return enriched, nil
}
