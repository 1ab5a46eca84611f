// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/quiet/internal/api"
	"github.com/starford/quiet/internal/mcpserver"
	"github.com/starford/quiet/internal/output"
	"github.com/starford/quiet/internal/sse"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", stdout: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// Run starts the HTTP server and the live index with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closer := newLogger(cfg.App, os.Stdout)
	defer closer.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.Duration("poll_interval", cfg.Content.PollInterval),
		slog.Any("hidden_categories", cfg.Content.HiddenCategories),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker, fed by the index worker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	pl, err := newPipeline(cfg.Content, logger, broker.PublishPostEvent)
	if err != nil {
		return err
	}

	apiRouter := api.NewRouter(pl.service(cfg.Site.PageSize), cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if !pl.ready() {
			writeStatus(w, http.StatusServiceUnavailable, "indexing")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := pl.watcher.Run(gCtx); err != nil {
			return fmt.Errorf("watcher: %w", err)
		}
		if gCtx.Err() == nil {
			logger.Warn("watcher: content root is gone, live updates stopped", slog.String("root", pl.root))
		}
		return nil
	})

	g.Go(func() error {
		return pl.worker.Run(gCtx)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		return waitAndShutdown(gCtx, logger, cancel, func(ctx context.Context) error {
			broker.Close()
			return httpServer.Shutdown(ctx)
		})
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout over a live index.
// Logs never go to stdout, which carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closer := newLogger(cfg.App, os.Stderr)
	defer closer.Close()
	slog.SetDefault(logger)

	pl, err := newPipeline(cfg.Content, logger, nil)
	if err != nil {
		return err
	}
	srv := mcpserver.New(pl.service(cfg.Site.PageSize), app.version)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return pl.watcher.Run(gCtx) })
	g.Go(func() error { return pl.worker.Run(gCtx) })

	logger.Info("MCP server starting on stdio", slog.String("content_path", pl.root))
	serveErr := srv.ServeStdio()
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if serveErr != nil {
		return fmt.Errorf("mcp serve: %w", serveErr)
	}
	return nil
}

// PrintTree indexes the content directory once and prints its category tree.
func PrintTree(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger, closer := newLogger(cfg.App, os.Stderr)
	defer closer.Close()

	pl, err := newPipeline(cfg.Content, logger, nil)
	if err != nil {
		return err
	}
	st, err := pl.scan(ctx)
	if err != nil {
		return fmt.Errorf("scan content: %w", err)
	}
	if st.Failed > 0 {
		logger.Warn("some posts could not be indexed", slog.Int("failed", st.Failed))
	}

	_, err = io.WriteString(app.stdout, output.CategoryTree(pl.service(cfg.Site.PageSize).Tree(ctx)))
	return err
}

// waitAndShutdown blocks until a signal arrives or ctx ends, then stops the
// background loops through cancel and calls shutdown.
func waitAndShutdown(ctx context.Context, logger *slog.Logger, cancel context.CancelFunc, shutdown func(context.Context) error) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}

	logger.Info("Shutting down server...")
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
	}
	return nil
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
