// Package main is the entrypoint for the RCAccelerator API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rcaccelerator/server/internal/api"
	"github.com/rcaccelerator/server/internal/api/handler"
	mw "github.com/rcaccelerator/server/internal/api/middleware"
	"github.com/rcaccelerator/server/internal/api/response"
	"github.com/rcaccelerator/server/internal/cache"
	"github.com/rcaccelerator/server/internal/config"
	"github.com/rcaccelerator/server/internal/rca"
	"github.com/rcaccelerator/server/internal/rca/engine"
	"github.com/rcaccelerator/server/internal/report"
	"github.com/rcaccelerator/server/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "engine", cfg.Engine.BaseURL, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create engine client, report fetcher, and pipeline service
	engineClient := engine.NewHTTPClient(cfg.Engine.BaseURL, cfg.Engine.Token, cfg.Engine.Timeout)

	var auth report.Authenticator
	if cfg.Report.AuthToken != "" {
		auth = &report.TokenAuthenticator{Token: cfg.Report.AuthToken}
	}
	fetcher := report.NewFetcher(cfg.Report.FetchTimeout, auth)

	svc := rca.NewService(fetcher, engineClient, cfg.Engine.Timeout)
	resolver := rca.NewCatalogResolver(engineClient, redisCache, cfg.Engine.CatalogTTL)

	// 6. Create store
	pgStore := store.NewPostgresStore(pool)

	// 7. Build router with dependencies
	authMw := mw.NewAuth(pgStore)
	rateLimit := mw.NewRateLimit(redisCache, 60)

	defaults := handler.Defaults{
		SimilarityThreshold: cfg.Defaults.SimilarityThreshold,
		Temperature:         cfg.Defaults.Temperature,
		MaxTokens:           cfg.Defaults.MaxTokens,
		EnableRerank:        cfg.Defaults.EnableRerank,
		Profile:             cfg.Defaults.Profile,
	}

	deps := api.Dependencies{
		Auth:      authMw,
		RateLimit: rateLimit,

		HealthHandler:         healthHandler(pgStore, redisCache),
		PromptHandler:         handler.NewPromptHandler(svc, resolver, defaults),
		RcaFromTempestHandler: handler.NewRcaFromTempestHandler(svc, resolver, defaults),
		ListModelsHandler:     handler.NewListModelsHandler(resolver),
		CreateKeyHandler:      handler.NewCreateKeyHandler(pgStore),
		ListKeysHandler:       handler.NewListKeysHandler(pgStore),
		RevokeKeyHandler:      handler.NewRevokeKeyHandler(pgStore),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for shutdown signal or server error
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// healthHandler checks database and cache connectivity.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}

		if err := s.Ping(r.Context()); err != nil {
			checks["database"] = "degraded"
		}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
