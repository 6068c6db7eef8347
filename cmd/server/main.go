package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lhollands/mediaserver/internal/config"
	"github.com/lhollands/mediaserver/internal/enrichment"
	"github.com/lhollands/mediaserver/internal/freshness"
	httpserver "github.com/lhollands/mediaserver/internal/http"
	"github.com/lhollands/mediaserver/internal/omdb"
	"github.com/lhollands/mediaserver/internal/rankindex"
	"github.com/lhollands/mediaserver/internal/repository"
	"github.com/lhollands/mediaserver/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := log.New(os.Stdout, "[mediaserver] ", log.LstdFlags|log.Lshortfile)

	dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	storeOpts := store.Options{
		MaxConns:               int32(cfg.DBMaxConns),
		MinConns:               int32(cfg.DBMinConns),
		MaxConnIdleTime:        time.Duration(cfg.DBMaxIdleSecs) * time.Second,
		MaxConnLifetime:        time.Duration(cfg.DBMaxLifeSecs) * time.Second,
		ConnTimeout:            time.Duration(cfg.DBConnTimeoutSecs) * time.Second,
		StatementCacheCapacity: cfg.DBStatementCache,
		Logger:                 logger,
	}

	st, err := store.New(dbCtx, cfg.DBURL, storeOpts)
	if err != nil {
		log.Fatalf("connect database: %v", err)
	}
	defer st.Close()

	repo := repository.New(st)

	// The rank index is built once at bootstrap. A chart outage degrades to an
	// empty index instead of refusing to start.
	chartCtx, chartCancel := context.WithTimeout(ctx, time.Duration(cfg.ChartTimeoutSecs)*time.Second)
	ranks, err := rankindex.Build(chartCtx, nil, cfg.Top250URL, cfg.Top100URL)
	chartCancel()
	if err != nil {
		logger.Printf("rank index build failed, continuing with empty index: %v", err)
		ranks = rankindex.Empty()
	} else {
		n250, n100 := ranks.Sizes()
		logger.Printf("rank index built (top250=%d, top100=%d)", n250, n100)
	}

	cache := freshness.New(time.Duration(cfg.FreshnessWindowDays) * 24 * time.Hour)
	seedCtx, seedCancel := context.WithTimeout(ctx, 30*time.Second)
	movies, err := repo.Movies.List(seedCtx)
	seedCancel()
	if err != nil {
		log.Fatalf("seed freshness cache: %v", err)
	}
	cache.Seed(movies, time.Now())
	logger.Printf("freshness cache seeded: %d of %d movies fresh", cache.Len(), len(movies))

	omdbClient, err := omdb.NewHTTPClient(cfg.OMDBURL, cfg.OMDBAPIKey, time.Duration(cfg.OMDBTimeoutSecs)*time.Second, cfg.OMDBRateLimit, logger)
	if err != nil {
		log.Fatalf("init omdb client: %v", err)
	}

	enricher := enrichment.New(
		enrichment.NewRepositoryStore(repo),
		omdbClient,
		ranks,
		cache,
		time.Duration(cfg.OMDBTimeoutSecs)*time.Second,
		logger,
	)

	server := httpserver.New(cfg, st, repo, enricher, logger)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			serverErrCh <- err
			return
		}
		serverErrCh <- nil
	}()

	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
			log.Printf("server error: %v", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("graceful shutdown error: %v", err)
	}
}
