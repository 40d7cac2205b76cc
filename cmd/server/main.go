package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"package-tracking-service/internal/adapters/cache"
	"package-tracking-service/internal/adapters/repositories"
	"package-tracking-service/internal/api"
	"package-tracking-service/internal/config"
	"package-tracking-service/internal/platform/obs"
	"package-tracking-service/internal/ports"
	"package-tracking-service/internal/services"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

// main is the application composition root.
// It wires concrete adapters (SQL store, Redis cache) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := obs.NewLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if envErr != nil {
		logger.Info().Msg("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(logger.WithContext(ctx), logger, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, logger zerolog.Logger, cfg *config.Config) error {
	repo, closeRepo, err := repositories.OpenPackageRepository(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return err
	}
	defer closeRepo()
	logger.Info().Str("driver", cfg.DBDriver).Msg("package store ready")

	pkgCache, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	svc := services.NewPackageService(repo, pkgCache, cfg.ListMaxLimit)
	router := api.NewRouter(logger, svc, api.NewSessionStore(cfg.SessionSecret))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	eg, egctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		logger.Info().Msg("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// openCache connects to Redis when REDIS_URL is set; otherwise caching is off.
func openCache(ctx context.Context, cfg *config.Config) (ports.PackageCache, func() error, error) {
	if cfg.RedisURL == "" {
		return cache.NoopPackageCache{}, func() error { return nil }, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	zerolog.Ctx(ctx).Info().Dur("ttl", cfg.CacheTTL).Msg("redis package cache enabled")

	return cache.NewRedisPackageCache(client, cfg.CacheTTL), client.Close, nil
}
