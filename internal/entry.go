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

	"github.com/starford/ansuz/internal/api"
	"github.com/starford/ansuz/internal/events"
	"github.com/starford/ansuz/internal/index"
	"github.com/starford/ansuz/internal/library"
	"github.com/starford/ansuz/internal/mcpserver"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/notes"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/store"
	"github.com/starford/ansuz/internal/tutor"
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
		slog.String("store_path", cfg.Store.Path),
		slog.String("index_path", cfg.Index.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Initialize record store and repositories.
	st, err := store.New(cfg.Store.Path, logger)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	noteRepo, err := notes.NewRepository(st, logger)
	if err != nil {
		return fmt.Errorf("init note repository: %w", err)
	}
	eventRepo, err := events.NewRepository(st, logger)
	if err != nil {
		return fmt.Errorf("init event repository: %w", err)
	}

	// Initialize search index from the persisted snapshot.
	idx, err := index.Open(cfg.Index.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer idx.Close()

	if err := idx.Rebuild(noteRepo.All()); err != nil {
		logger.Warn("initial index rebuild failed", slog.String("error", err.Error()))
	}

	cur := cfg.Curriculum.Curriculum()

	// MCP mode: serve tools over stdio instead of HTTP.
	if app.mcpMode {
		logger.Info("Serving MCP over stdio")
		return mcpserver.New(noteRepo, eventRepo, cur, idx).ServeStdio()
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Repository mutations feed the broker and the search index.
	noteRepo.SetOnChange(func(kind string, n models.Note) {
		broker.PublishRecordEvent("note."+kind, n.ID)
		var err error
		if kind == "deleted" {
			err = idx.Delete(n.ID)
		} else {
			err = idx.Upsert(n)
		}
		if err != nil {
			logger.Warn("index update failed", slog.String("id", n.ID), slog.String("error", err.Error()))
		}
	})
	eventRepo.SetOnChange(func(kind string, e models.Event) {
		broker.PublishRecordEvent("event."+kind, e.ID)
	})

	// External collaborators.
	lib := library.NewClient(cfg.Library.BaseURL, time.Duration(cfg.Library.TimeoutSeconds)*time.Second)
	planner := tutor.New(cfg.Tutor.APIKey, cfg.Tutor.Model, cfg.Tutor.MaxTokens, cfg.Tutor.Temperature, logger)
	if !planner.Enabled() {
		logger.Info("Tutor disabled: no API key configured")
	}

	// Build API handler and router.
	h := api.NewHandler(noteRepo, eventRepo, cur, idx, lib, planner)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, http.HandlerFunc(broker.ServeHTTP))

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

	// Watch the data directory for external changes to the persisted
	// collections (file-sync tools) and reload affected state.
	g.Go(func() error {
		return st.Watch(gCtx, func(key string) {
			switch key {
			case store.NotesKey:
				if err := noteRepo.Reload(); err != nil {
					logger.Warn("note reload failed", slog.String("error", err.Error()))
					return
				}
				if err := idx.Rebuild(noteRepo.All()); err != nil {
					logger.Warn("index rebuild failed", slog.String("error", err.Error()))
				}
				broker.Publish(sse.Event{Type: "notes.reloaded", Data: map[string]string{}})
			case store.EventsKey:
				if err := eventRepo.Reload(); err != nil {
					logger.Warn("event reload failed", slog.String("error", err.Error()))
					return
				}
				broker.Publish(sse.Event{Type: "calendar.updated", Data: map[string]string{}})
			}
		})
	})

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
