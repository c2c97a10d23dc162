package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stemsi/sitesafe-learn/internal/config"
	"github.com/stemsi/sitesafe-learn/internal/content"
	"github.com/stemsi/sitesafe-learn/internal/database"
	"github.com/stemsi/sitesafe-learn/internal/handler"
	"github.com/stemsi/sitesafe-learn/internal/logger"
	"github.com/stemsi/sitesafe-learn/internal/middleware"
	"github.com/stemsi/sitesafe-learn/internal/repository"
	"github.com/stemsi/sitesafe-learn/internal/router"
	"github.com/stemsi/sitesafe-learn/internal/service"
	"github.com/stemsi/sitesafe-learn/internal/validator"
	"github.com/stemsi/sitesafe-learn/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("content_source", cfg.ContentSource).
		Str("mount_store", cfg.MountStore).
		Msg("Starting SiteSafe Learn")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var probes []database.Probe

	// ─── Load Content ──────────────────────────────────────────────────
	// The catalog is validated in full before the server accepts traffic.
	var catalog *content.Catalog
	switch cfg.ContentSource {
	case config.ContentSourceEmbedded:
		c, err := content.Embedded()
		if err != nil {
			log.Fatal().Err(err).Msg("Embedded content is invalid")
		}
		catalog = c

	case config.ContentSourcePostgres:
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		probes = append(probes, database.PoolProbe("postgres", pool))

		c, err := loadFromPostgres(ctx, pool)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load content from PostgreSQL")
		}
		catalog = c

	default:
		log.Fatal().Str("content_source", cfg.ContentSource).Msg("Unknown CONTENT_SOURCE")
	}
	log.Info().Int("pages", catalog.Len()).Msg("Content catalog loaded")

	// ─── Mount Store ───────────────────────────────────────────────────
	var store service.MountStore
	switch cfg.MountStore {
	case config.MountStoreRedis:
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		probes = append(probes, database.RedisProbe(rdb))
		store = repository.NewRedisMountStore(rdb)

	case config.MountStoreMemory:
		log.Warn().Msg("Mount state is kept in process memory; do not run more than one instance")
		memStore := repository.NewMemoryMountStore()
		go worker.NewSweepWorker(memStore, cfg.MountSweepInterval, log).Start(ctx)
		store = memStore

	default:
		log.Fatal().Str("mount_store", cfg.MountStore).Msg("Unknown MOUNT_STORE")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	pageService := service.NewPageService(catalog)
	mountService := service.NewMountService(cfg, catalog, store, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Page:   handler.NewPageHandler(pageService, mountService, log),
		Mount:  handler.NewMountHandler(pageService, mountService, log),
		WS:     handler.NewWSHandler(mountService, log, cfg.AllowedOrigins),
		System: handler.NewSystemHandler(catalog.Len(), log, probes...),
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	defer limiter.Close()

	// ─── Setup Router ──────────────────────────────────────────────────
	r, err := router.SetupRouter(mountService, limiter, handlers, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up router")
	}

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	cancel()

	log.Info().Msg("Shutdown complete")
}

// loadFromPostgres builds the catalog from the pages table.
func loadFromPostgres(ctx context.Context, pool *pgxpool.Pool) (*content.Catalog, error) {
	pages, err := repository.NewContentRepository(pool).ListPages(ctx)
	if err != nil {
		return nil, err
	}
	return content.FromPages(pages)
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
