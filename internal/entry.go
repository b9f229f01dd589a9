package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/mannaz/internal/manager"
	"github.com/starford/mannaz/internal/mcpserver"
	"github.com/starford/mannaz/internal/storage"
)

// Run starts the application with the given options: it loads the profile
// directory into the registry and serves the MCP tools over stdio until
// the context is cancelled or a shutdown signal arrives.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Structured JSON logger on stderr: stdout carries the MCP transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("profiles_path", cfg.Profiles.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Profiles.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	mgr := manager.New(store, logger)
	defer mgr.Shutdown()

	// Initial load. An index write failure keeps the in-memory set usable.
	if err := mgr.Initialize(); err != nil {
		logger.Warn("initial index write failed", slog.String("error", err.Error()))
	}

	// Log reload events until the manager shuts down.
	events := mgr.Subscribe()
	go func() {
		for ev := range events {
			logger.Info("profiles reloaded",
				slog.String("event", ev.Type),
				slog.Int("count", len(ev.Profiles)))
		}
	}()

	srv := mcpserver.New(mgr)

	logger.Info("Server starting...", slog.String("transport", "stdio"))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		// Unblocks the signal goroutine when stdin reaches EOF.
		defer cancel()
		if err := srv.ServeStdio(gCtx, app.stdin, app.stdout); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	})

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

		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
