package httpserver

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lhollands/mediaserver/internal/config"
	"github.com/lhollands/mediaserver/internal/domain"
	"github.com/lhollands/mediaserver/internal/repository"
	"github.com/lhollands/mediaserver/internal/store"
)

// MovieEnricher is the slice of the enrichment workflow the handlers need.
type MovieEnricher interface {
	EnrichAll(ctx context.Context) ([]domain.EnrichedMovie, error)
	EnrichOne(ctx context.Context, id int) (domain.EnrichedMovie, error)
	SortByRating(ctx context.Context, metric domain.RatingMetric) ([]domain.EnrichedMovie, error)
	FilterByRank(ctx context.Context, scope domain.RankScope, metric domain.RatingMetric) ([]domain.EnrichedMovie, error)
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	store    *store.Store
	repo     *repository.Repository
	enricher MovieEnricher
	logger   *log.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, st *store.Store, repo *repository.Repository, enricher MovieEnricher, logger *log.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	if logger == nil {
		logger = log.Default()
	}

	s := &Server{
		cfg:      cfg,
		store:    st,
		repo:     repo,
		enricher: enricher,
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)

	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.Post("/", s.handleCreateMovie)
		r.Get("/search", s.handleSearchMovies)
		r.Route("/ratings", func(r chi.Router) {
			r.Get("/", s.handleEnrichedMovies)
			r.Get("/sorted", s.handleSortedMovies)
			r.Get("/top", s.handleTopMovies)
		})
		r.Get("/{id:[0-9]+}", s.handleGetMovie)
	})

	s.router.Get("/songs", s.handleListSongs)
	s.router.Get("/songs/{id:[0-9]+}", s.handleGetSong)
	s.router.Get("/artists", s.handleListArtists)
	s.router.Route("/albums", func(r chi.Router) {
		r.Get("/", s.handleListAlbums)
		r.Get("/{id:[0-9]+}/songs", s.handleAlbumSongs)
		r.Get("/{id:[0-9]+}/genres", s.handleAlbumGenres)
	})
	s.router.Get("/tvshows", s.handleListTVShows)
	s.router.Get("/tvshows/{id:[0-9]+}/episodes", s.handleTVShowEpisodes)
	s.router.Get("/podcasts", s.handleListPodcasts)
	s.router.Get("/podcasts/{id:[0-9]+}/episodes", s.handlePodcastEpisodes)
}

// Start boots the HTTP server and blocks until shutdown or failure.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.HealthCheck(ctx); err != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
