package enrichment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lhollands/mediaserver/internal/domain"
	"github.com/lhollands/mediaserver/internal/freshness"
	"github.com/lhollands/mediaserver/internal/omdb"
	"github.com/lhollands/mediaserver/internal/rankindex"
	"github.com/lhollands/mediaserver/internal/repository"
)

// fakeStore keeps movies and snapshots in memory.
type fakeStore struct {
	movies    []domain.Movie
	snapshots map[int]domain.RatingSnapshot
	upserts   int
}

func newFakeStore(movies ...domain.Movie) *fakeStore {
	return &fakeStore{
		movies:    movies,
		snapshots: make(map[int]domain.RatingSnapshot),
	}
}

func (s *fakeStore) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	return s.movies, nil
}

func (s *fakeStore) GetMovie(ctx context.Context, id int) (domain.Movie, error) {
	for _, movie := range s.movies {
		if movie.ID == id {
			return movie, nil
		}
	}
	return domain.Movie{}, repository.ErrNotFound
}

func (s *fakeStore) enrich(movie domain.Movie) domain.EnrichedMovie {
	enriched := domain.EnrichedMovie{Movie: movie}
	if snap, ok := s.snapshots[movie.ID]; ok {
		enriched.Rating = snap
	} else {
		enriched.Rating.MovieID = movie.ID
	}
	return enriched
}

func (s *fakeStore) ListEnriched(ctx context.Context) ([]domain.EnrichedMovie, error) {
	results := make([]domain.EnrichedMovie, 0, len(s.movies))
	for _, movie := range s.movies {
		results = append(results, s.enrich(movie))
	}
	return results, nil
}

func (s *fakeStore) GetEnriched(ctx context.Context, id int) (domain.EnrichedMovie, error) {
	movie, err := s.GetMovie(ctx, id)
	if err != nil {
		return domain.EnrichedMovie{}, err
	}
	return s.enrich(movie), nil
}

func (s *fakeStore) ListSorted(ctx context.Context, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	return s.ListEnriched(ctx)
}

func (s *fakeStore) ListRanked(ctx context.Context, scope domain.RankScope, metric domain.RatingMetric) ([]domain.EnrichedMovie, error) {
	all, _ := s.ListEnriched(ctx)
	results := make([]domain.EnrichedMovie, 0, len(all))
	for _, enriched := range all {
		switch scope {
		case domain.ScopeTop250:
			if enriched.Rating.InTop250 {
				results = append(results, enriched)
			}
		case domain.ScopeTop100:
			if enriched.Rating.InTop100 {
				results = append(results, enriched)
			}
		case domain.ScopeBoth:
			if enriched.Rating.InTop250 && enriched.Rating.InTop100 {
				results = append(results, enriched)
			}
		}
	}
	return results, nil
}

func (s *fakeStore) UpsertRating(ctx context.Context, snap domain.RatingSnapshot) error {
	s.upserts++
	s.snapshots[snap.MovieID] = snap
	return nil
}

// fakeFetcher counts lookups and can fail on a chosen title.
type fakeFetcher struct {
	calls     int
	failTitle string
	rating    omdb.Rating
}

func (f *fakeFetcher) Fetch(ctx context.Context, title string, year int) (omdb.Rating, error) {
	f.calls++
	if f.failTitle != "" && title == f.failTitle {
		return omdb.Rating{}, fmt.Errorf("upstream down for %q", title)
	}
	return f.rating, nil
}

// buildTestIndex serves two tiny chart pages and builds a real index from them.
func buildTestIndex(t *testing.T, top250, top100 []string) *rankindex.Index {
	t.Helper()
	serve := func(titles []string) *httptest.Server {
		var sb strings.Builder
		sb.WriteString("<html><body>")
		for _, title := range titles {
			fmt.Fprintf(&sb, `<a href="#" title="%s">%s</a>`, title, title)
		}
		sb.WriteString("</body></html>")
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sb.String()))
		}))
		t.Cleanup(srv.Close)
		return srv
	}

	idx, err := rankindex.Build(context.Background(), nil, serve(top250).URL, serve(top100).URL)
	if err != nil {
		t.Fatalf("build test index: %v", err)
	}
	return idx
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func score(v float64) *float64 { return &v }

func TestEnrichAllFetchesStaleOnly(t *testing.T) {
	store := newFakeStore(
		domain.Movie{ID: 1, Title: "Fresh Movie", ReleaseYear: 2020},
		domain.Movie{ID: 2, Title: "Stale Movie", ReleaseYear: 2021},
	)
	fetcher := &fakeFetcher{rating: omdb.Rating{IMDBScore: score(7.5)}}
	cache := freshness.New(7 * 24 * time.Hour)
	cache.MarkFresh(1)

	enricher := New(store, fetcher, rankindex.Empty(), cache, time.Second, testLogger())

	enriched, err := enricher.EnrichAll(context.Background())
	if err != nil {
		t.Fatalf("EnrichAll: %v", err)
	}
	if len(enriched) != 2 {
		t.Fatalf("len(enriched) = %d, want 2", len(enriched))
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1 (fresh movie skipped)", fetcher.calls)
	}
	if store.upserts != 1 {
		t.Fatalf("upserts = %d, want 1", store.upserts)
	}
	if !cache.IsFresh(2) {
		t.Fatalf("refreshed movie should be marked fresh")
	}

	// A second pass fetches nothing: everything is fresh now.
	if _, err := enricher.EnrichAll(context.Background()); err != nil {
		t.Fatalf("second EnrichAll: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls after second pass = %d, want 1", fetcher.calls)
	}
}

func TestEnrichAllAbortsOnFetchError(t *testing.T) {
	store := newFakeStore(
		domain.Movie{ID: 1, Title: "First", ReleaseYear: 2020},
		domain.Movie{ID: 2, Title: "Broken", ReleaseYear: 2021},
		domain.Movie{ID: 3, Title: "Third", ReleaseYear: 2022},
	)
	fetcher := &fakeFetcher{failTitle: "Broken"}
	cache := freshness.New(7 * 24 * time.Hour)

	enricher := New(store, fetcher, rankindex.Empty(), cache, time.Second, testLogger())

	_, err := enricher.EnrichAll(context.Background())
	if err == nil {
		t.Fatalf("expected error from failing fetch")
	}

	// The first movie was committed and stays fresh, the rest never ran.
	if store.upserts != 1 {
		t.Fatalf("upserts = %d, want 1", store.upserts)
	}
	if !cache.IsFresh(1) {
		t.Fatalf("movie committed before the abort should be fresh")
	}
	if cache.IsFresh(2) || cache.IsFresh(3) {
		t.Fatalf("movies after the abort point must stay stale")
	}
	if fetcher.calls != 2 {
		t.Fatalf("fetch calls = %d, want 2", fetcher.calls)
	}
}

func TestEnrichOne(t *testing.T) {
	store := newFakeStore(domain.Movie{ID: 5, Title: "Solo", ReleaseYear: 2018})
	fetcher := &fakeFetcher{rating: omdb.Rating{IMDBScore: score(6.9)}}
	cache := freshness.New(7 * 24 * time.Hour)

	enricher := New(store, fetcher, rankindex.Empty(), cache, time.Second, testLogger())

	enriched, err := enricher.EnrichOne(context.Background(), 5)
	if err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if enriched.Rating.IMDBScore == nil || *enriched.Rating.IMDBScore != 6.9 {
		t.Fatalf("IMDBScore = %v, want 6.9", enriched.Rating.IMDBScore)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetcher.calls)
	}

	// Now fresh: a second lookup serves the stored snapshot.
	if _, err := enricher.EnrichOne(context.Background(), 5); err != nil {
		t.Fatalf("second EnrichOne: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls after fresh lookup = %d, want 1", fetcher.calls)
	}
}

func TestEnrichOneNotFound(t *testing.T) {
	store := newFakeStore()
	enricher := New(store, &fakeFetcher{}, rankindex.Empty(), freshness.New(time.Hour), time.Second, testLogger())

	_, err := enricher.EnrichOne(context.Background(), 99)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestRefreshSetsRankFlags(t *testing.T) {
	chartTitle := "Charted Movie"
	store := newFakeStore(domain.Movie{ID: 1, Title: chartTitle, ReleaseYear: 2019})
	fetcher := &fakeFetcher{rating: omdb.Rating{IMDBScore: score(8.8)}}
	cache := freshness.New(7 * 24 * time.Hour)

	ranks := buildTestIndex(t, []string{chartTitle}, []string{chartTitle})
	enricher := New(store, fetcher, ranks, cache, time.Second, testLogger())

	enriched, err := enricher.EnrichOne(context.Background(), 1)
	if err != nil {
		t.Fatalf("EnrichOne: %v", err)
	}
	if !enriched.Rating.InTop250 || !enriched.Rating.InTop100 {
		t.Fatalf("chart flags = (%v, %v), want both true", enriched.Rating.InTop250, enriched.Rating.InTop100)
	}
}

func TestNewDefaultsNilCollaborators(t *testing.T) {
	store := newFakeStore(domain.Movie{ID: 1, Title: "Solo", ReleaseYear: 2018})
	fetcher := &fakeFetcher{rating: omdb.Rating{IMDBScore: score(7.0)}}

	enricher := New(store, fetcher, nil, nil, time.Second, nil)

	if _, err := enricher.EnrichOne(context.Background(), 1); err != nil {
		t.Fatalf("EnrichOne with defaulted ranks/cache/logger: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetcher.calls)
	}
}

func TestSortAndFilterValidation(t *testing.T) {
	store := newFakeStore(domain.Movie{ID: 1, Title: "M", ReleaseYear: 2020})
	enricher := New(store, &fakeFetcher{}, rankindex.Empty(), freshness.New(time.Hour), time.Second, testLogger())
	ctx := context.Background()

	if _, err := enricher.SortByRating(ctx, "POPCORN"); err == nil {
		t.Fatalf("expected error for unknown metric")
	}
	if _, err := enricher.FilterByRank(ctx, "top9000", domain.MetricIMDB); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
	if _, err := enricher.SortByRating(ctx, domain.MetricRT); err != nil {
		t.Fatalf("SortByRating(RT): %v", err)
	}
	if _, err := enricher.FilterByRank(ctx, domain.ScopeBoth, domain.MetricIMDB); err != nil {
		t.Fatalf("FilterByRank(both): %v", err)
	}
}
