// Package main is the entry point for the RiskRadar API server.
//
// It loads configuration from the environment, connects the Postgres snapshot
// store, loads the trained coverage models, assembles the weather supplier
// with its cache and synthetic fallback, and serves the risk scoring API over
// HTTP with graceful shutdown on SIGINT/SIGTERM.
//
// The server starts even when the database or model directory is unavailable:
// scoring works without persistence and falls back to heuristics without
// models. Degraded dependencies surface through /health.
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

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"riskradar/internal/api/handlers"
	"riskradar/internal/config"
	"riskradar/internal/core"
	"riskradar/internal/db"
	"riskradar/internal/observability"
	"riskradar/internal/scoring"
	"riskradar/internal/types"
	"riskradar/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("riskradar API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	metrics := observability.NewMetrics()

	// Connect the snapshot store. A failed connection downgrades the service
	// to analysis-only mode rather than aborting startup.
	var pool *pgxpool.Pool
	var repo types.SnapshotRepository
	{
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.AcquireTimeout)
		pool, err = db.NewPool(ctx, cfg.Database)
		cancel()
		if err != nil {
			logger.Error("database unavailable, persistence disabled", "error", err)
			pool = nil
		} else {
			repo = db.NewSnapshotRepository(pool)
			defer pool.Close()
		}
	}

	// Trained model coefficients. Missing or partial directories are fine;
	// coverages without a model score on the heuristic alone.
	classifiers, err := scoring.LoadModels(cfg.Scoring.ModelDir)
	if err != nil {
		logger.Warn("model loading failed, scoring on heuristics only", "error", err)
		classifiers = nil
	} else {
		logger.Info("coverage models loaded", "count", len(classifiers))
	}

	weatherSvc := weather.NewService(
		weather.NewClient(cfg.Weather, types.RealClock{}),
		cfg.Weather.CacheTTL,
		metrics,
		logger,
		types.RealClock{},
	)

	manager := scoring.NewManager(
		cfg.Scoring,
		weatherSvc,
		repo,
		classifiers,
		metrics,
		logger,
		types.RealClock{},
	)

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	if pool != nil {
		srv.HealthProbes = append(srv.HealthProbes, core.ProbeFunc{
			ProbeName: "database",
			Fn:        pool.Ping,
		})
	}

	riskHandler := handlers.NewRiskHandler(manager, srv.Validator, logger)
	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars, func(r chi.Router) {
		riskHandler.RegisterRoutes(r)
	})

	srv.MountRoutes()

	return runHTTPServer(srv, cfg, logger)
}

// runHTTPServer starts the server in standard HTTP mode with graceful shutdown.
func runHTTPServer(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)

	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
