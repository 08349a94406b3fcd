// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starward/gwiki/internal/api"
	"github.com/starward/gwiki/internal/artifacts"
	"github.com/starward/gwiki/internal/builder"
	"github.com/starward/gwiki/internal/index"
	"github.com/starward/gwiki/internal/sse"
	"github.com/starward/gwiki/internal/storage"
	"github.com/starward/gwiki/internal/watcher"
	"github.com/starward/gwiki/internal/wikiservice"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("wiki_path", cfg.Wiki.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure wiki directory exists.
	if err := os.MkdirAll(cfg.Wiki.Path, 0o755); err != nil {
		return fmt.Errorf("create wiki dir: %w", err)
	}

	// Initialize storage.
	store, err := storage.NewFS(cfg.Wiki.Path, cfg.Wiki.Ext)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Artifact writer; empty dir disables JSON artifact output.
	var art *artifacts.Writer
	if cfg.Artifacts.Dir != "" {
		art, err = artifacts.NewWriter(cfg.Artifacts.Dir)
		if err != nil {
			return fmt.Errorf("init artifacts: %w", err)
		}
	}

	b := builder.New(store, db, art, cfg.Ledger.Path, logger)
	svc := wikiservice.New(b, store, db)

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	rebuild := func() error {
		broker.PublishBuildStarted()
		if err := svc.Rebuild(ctx); err != nil {
			broker.PublishBuildFailed(err)
			return err
		}
		nodes, edges, _ := svc.Graph(ctx)
		reports, _ := svc.Validate(ctx)
		broker.PublishBuildCompleted(sse.BuildStats{
			Documents: len(nodes),
			Edges:     len(edges),
			Broken:    len(reports),
		})
		return nil
	}

	// Initial build.
	if err := rebuild(); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, rebuild, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with debounced rebuilds.
	if cfg.Wiki.Watch {
		g.Go(func() error {
			if err := watcher.Watch(gCtx, cfg.Wiki.Path, cfg.Wiki.Ext, cfg.Wiki.Debounce, logger, func() {
				if err := rebuild(); err != nil {
					logger.Error("rebuild failed", slog.String("error", err.Error()))
				}
			}); err != nil {
				logger.Error("watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
