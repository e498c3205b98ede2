package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"baketrack/internal/backend"
	"baketrack/internal/cache"
	"baketrack/internal/cli"
	"baketrack/internal/config"
	"baketrack/internal/dashboard"
	apphttp "baketrack/internal/http"
	"baketrack/internal/log"
	"baketrack/internal/middleware/ratelimit"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	result, err := backend.NewFactory(logger).CreateBackend(startCtx, backendCfg)
	cancelStart()
	if err != nil {
		logger.Error("Failed to initialize data backend", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	store := dashboard.New(result.Backend, cfg.CacheTTL, logger)

	caches := cache.NewManager(logger)
	caches.Register(store.Cache())
	caches.StartCleanup(cfg.CacheTTL)

	srv, err := apphttp.NewServer(store, serverOptions(cfg, logger))
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := result.Close(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("Starting baketrack server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"cache_ttl", cfg.CacheTTL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

func serverOptions(cfg *config.Config, logger *log.Logger) apphttp.Options {
	return apphttp.Options{
		Addr:               ":" + cfg.Port,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		Logger: logger,
	}
}
