package enrichment

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lhollands/mediaserver/internal/domain"
	"github.com/lhollands/mediaserver/internal/freshness"
	"github.com/lhollands/mediaserver/internal/omdb"
	"github.com/lhollands/mediaserver/internal/rankindex"
	"github.com/lhollands/mediaserver/internal/repository"
)

// Store is the slice of the relational store the workflow needs.
type Store interface {
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	GetMovie(ctx context.Context, id int) (domain.Movie, error)
	ListEnriched(ctx context.Context) ([]domain.EnrichedMovie, error)
	GetEnriched(ctx context.Context, id int) (domain.EnrichedMovie, error)
	ListSorted(ctx context.Context, metric domain.RatingMetric) ([]domain.EnrichedMovie, error)
	ListRanked(ctx context.Context, scope domain.RankScope, metric domain.RatingMetric) ([]domain.EnrichedMovie, error)
	UpsertRating(ctx context.Context, snap domain.RatingSnapshot) error
}

type repoStore struct {
	repo *repository.Repository
}

// NewRepositoryStore adapts the aggregate repository to the workflow's Store.
func NewRepositoryStore(repo *repository.Repository) Store {
	return repoStore{repo: repo}
}

func (s repoStore) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.repo.Movies.List(ctx)
}

func (s repoStore) GetMovie(ctx context.Context, id int) (domain.Movie, error) {
	return s.repo.Movies.Get(ctx, id)
}

func (s repoStore) ListEnriched(ctx context.Context) ([]domain.EnrichedMovie, error) {
	return s.repo.Movies.ListEnriched(ctx)
}

func (s repoStore) GetEnriched(ctx context.Context, id int) (domain.EnrichedMovie, error) {
	return s.repo.Movies.GetEnriched(ctx, id)
}

func (s repoStore) ListSorted(ctx context.Context, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	return s.repo.Movies.ListSorted(ctx, metric)
}

func (s repoStore) ListRanked(ctx context.Context, scope domain.RankScope, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	return s.repo.Movies.ListRanked(ctx, scope, metric)
}

func (s repoStore) UpsertRating(ctx context.Context, snap domain.RatingSnapshot) error {
	return s.repo.Ratings.Upsert(ctx, snap)
}

// Enricher orchestrates rating enrichment: decide per movie whether to fetch a
// new snapshot or keep the stored one, persist results, and read back the
// enriched catalog.
type Enricher struct {
	store        Store
	fetcher      omdb.Client
	ranks        *rankindex.Index
	cache        *freshness.Cache
	fetchTimeout time.Duration
	logger       *log.Logger
}

// New wires an enricher. All collaborators are injected; the rank index and
// freshness cache are constructed at bootstrap and shared for the process
// lifetime.
func New(store Store, fetcher omdb.Client, ranks *rankindex.Index, cache *freshness.Cache, fetchTimeout time.Duration, logger *log.Logger) *Enricher {
	if logger == nil {
		logger = log.Default()
	}
	if ranks == nil {
		ranks = rankindex.Empty()
	}
	if cache == nil {
		cache = freshness.New(0)
	}
	return &Enricher{
		store:        store,
		fetcher:      fetcher,
		ranks:        ranks,
		cache:        cache,
		fetchTimeout: fetchTimeout,
		logger:       logger,
	}
}

// EnrichAll walks the catalog in ascending id order, refreshes every movie not
// marked fresh, and returns the full enriched catalog. Each refreshed movie is
// committed individually before the next one starts: if the pass aborts midway
// the completed movies stay durable and fresh, the rest keep stale snapshots
// until the next pass. Any fetch or persistence error aborts the pass.
func (e *Enricher) EnrichAll(ctx context.Context) ([]domain.EnrichedMovie, error) {
	movies, err := e.store.ListMovies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	refreshed := 0
	for _, movie := range movies {
		if e.cache.IsFresh(movie.ID) {
			continue
		}
		if err := e.refresh(ctx, movie); err != nil {
			return nil, fmt.Errorf("enrich movie %d (%s): %w", movie.ID, movie.Title, err)
		}
		refreshed++
	}
	if refreshed > 0 {
		e.logger.Printf("enrichment: refreshed %d of %d movies", refreshed, len(movies))
	}

	return e.store.ListEnriched(ctx)
}

// EnrichOne runs the same fetch-or-skip branch for exactly one movie, keyed by
// the movie's actual identifier, and returns its enriched row.
func (e *Enricher) EnrichOne(ctx context.Context, id int) (domain.EnrichedMovie, error) {
	movie, err := e.store.GetMovie(ctx, id)
	if err != nil {
		return domain.EnrichedMovie{}, err
	}

	if !e.cache.IsFresh(movie.ID) {
		if err := e.refresh(ctx, movie); err != nil {
			return domain.EnrichedMovie{}, fmt.Errorf("enrich movie %d (%s): %w", movie.ID, movie.Title, err)
		}
	}

	return e.store.GetEnriched(ctx, id)
}

// SortByRating returns the enriched catalog ordered by the chosen metric,
// null scores last.
func (e *Enricher) SortByRating(ctx context.Context, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	if _, err := domain.ParseRatingMetric(string(metric)); err != nil {
		return nil, err
	}
	return e.store.ListSorted(ctx, metric)
}

// FilterByRank restricts the enriched catalog to movies carrying the requested
// chart flags, ordered like SortByRating.
func (e *Enricher) FilterByRank(ctx context.Context, scope domain.RankScope, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	if _, err := domain.ParseRankScope(string(scope)); err != nil {
		return nil, err
	}
	if _, err := domain.ParseRatingMetric(string(metric)); err != nil {
		return nil, err
	}
	return e.store.ListRanked(ctx, scope, metric)
}

// refresh fetches a rating, stores the snapshot in one auto-committed call,
// and marks the movie fresh. The external call runs under a bounded timeout so
// a stalled upstream cannot block the pass indefinitely.
func (e *Enricher) refresh(ctx context.Context, movie domain.Movie) error {
	fetchCtx := ctx
	if e.fetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, e.fetchTimeout)
		defer cancel()
	}

	rating, err := e.fetcher.Fetch(fetchCtx, movie.Title, movie.ReleaseYear)
	if err != nil {
		return fmt.Errorf("fetch rating: %w", err)
	}

	snap := domain.RatingSnapshot{
		MovieID:   movie.ID,
		IMDBScore: rating.IMDBScore,
		IMDBVotes: rating.IMDBVotes,
		RTScore:   rating.RTScore,
		InTop250:  e.ranks.InTop250(movie.Title),
		InTop100:  e.ranks.InTop100(movie.Title),
	}
	if err := e.store.UpsertRating(ctx, snap); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	e.cache.MarkFresh(movie.ID)
	return nil
}
