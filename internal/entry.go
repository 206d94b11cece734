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

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/hoursheet/internal/api"
	"github.com/starford/hoursheet/internal/mcpserver"
	"github.com/starford/hoursheet/internal/parser"
	"github.com/starford/hoursheet/internal/present"
	"github.com/starford/hoursheet/internal/session"
	"github.com/starford/hoursheet/internal/source"
	"github.com/starford/hoursheet/internal/sse"
	"github.com/starford/hoursheet/internal/tui"
)

// Version is reported by the MCP server. It is set at build time.
var Version = "dev"

// newApplication applies opts and builds the logger and session shared by
// every command. defaultLog is used unless WithLogOutput overrides it.
func newApplication(defaultLog io.Writer, opts []Option) (*application, *slog.Logger, *session.Session, error) {
	app := &application{logOutput: defaultLog}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	location := cfg.Source.Location()
	logger.Info("Configuration loaded",
		slog.String("source", location),
		slog.String("format", cfg.Source.Format),
		slog.String("log_level", cfg.App.LogLevel.String()))

	fetcher := app.fetcher
	if fetcher == nil {
		fetcher = source.New(location, source.Options{
			Timeout:      cfg.Source.Timeout,
			Retries:      cfg.Source.Retries,
			RetryBackoff: cfg.Source.RetryBackoff,
			MaxBytes:     cfg.Source.MaxBytes,
			Logger:       logger,
		})
	}

	sess := session.New(session.Config{
		Format:   parser.Format(cfg.Source.Format),
		Location: location,
		Envelope: cfg.Source.Envelope,
		Columns:  cfg.Columns,
	}, fetcher, logger)

	return app, logger, sess, nil
}

// runReloaders starts the periodic refresher and the file watcher that
// the configuration enables.
func runReloaders(ctx context.Context, g *errgroup.Group, cfg *Config, sess *session.Session, logger *slog.Logger) {
	if cfg.Reload.Interval > 0 {
		g.Go(func() error {
			return sess.RunRefresh(ctx, cfg.Reload.Interval)
		})
	}
	if cfg.Reload.Watch {
		g.Go(func() error {
			return source.Watch(ctx, cfg.Source.Path, cfg.Reload.Debounce, logger, func() {
				if _, err := sess.Reload(ctx); err != nil {
					logger.Debug("watch reload failed", slog.String("error", err.Error()))
				}
			})
		})
	}
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, sess, err := newApplication(os.Stdout, opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// SSE broker.
	broker := sse.NewBroker(30 * time.Second)
	defer broker.Close()
	sess.OnChange(func(kind string, snap session.Snapshot) {
		broker.PublishDataset(kind, snap)
	})

	h := api.NewHandler(sess, cfg.App.Title)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", h.Ready)

	r.Get("/", h.Page)
	r.Mount("/api", api.NewRouter(h, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Initial load runs beside the server so the page can show the
	// loading state.
	g.Go(func() error {
		_ = sess.Load(gCtx)
		return nil
	})

	runReloaders(gCtx, g, cfg, sess, logger)

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// SSE streams never finish on their own.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has stopped, so the
// refresher and watcher exit too.
var errShutdown = errors.New("shutdown")

// RunSearch loads the source once, runs one search and writes the result
// to out. A failed load is reported and returned as an error.
func RunSearch(ctx context.Context, term string, out io.Writer, opts ...Option) error {
	_, _, sess, err := newApplication(os.Stderr, opts)
	if err != nil {
		return err
	}

	if err := sess.Load(ctx); err != nil {
		_ = present.WriteText(out, sess.View())
		return fmt.Errorf("load data source: %w", err)
	}
	return present.WriteText(out, sess.Search(term))
}

// RunTUI starts the interactive terminal shell. Logs are discarded unless
// WithLogOutput says otherwise, since they would corrupt the screen.
func RunTUI(ctx context.Context, opts ...Option) error {
	app, logger, sess, err := newApplication(io.Discard, opts)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	runReloaders(runCtx, g, app.config, sess, logger)

	g.Go(func() error {
		defer cancel()
		p := tea.NewProgram(tui.New(runCtx, sess, app.config.App.Title), tea.WithAltScreen(), tea.WithContext(runCtx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// RunMCP loads the source and serves the MCP tools on stdin/stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, logger, sess, err := newApplication(os.Stderr, opts)
	if err != nil {
		return err
	}

	// A failed load is reported through the dataset_status tool.
	_ = sess.Load(ctx)

	g, gCtx := errgroup.WithContext(ctx)
	runCtx, cancel := context.WithCancel(gCtx)
	defer cancel()

	runReloaders(runCtx, g, app.config, sess, logger)

	g.Go(func() error {
		defer cancel()
		logger.Info("Starting MCP server on stdio")
		return mcpserver.New(sess, Version).ServeStdio()
	})

	return g.Wait()
}
