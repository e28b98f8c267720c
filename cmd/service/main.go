// cmd/service/main.go
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

	"golang.org/x/sync/errgroup"

	"commit-watcher/internal/api"
	"commit-watcher/internal/commitlog"
	"commit-watcher/internal/config"
	"commit-watcher/internal/model"
	"commit-watcher/internal/poller"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application startup error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Initialize structured logger
	logLevel := new(slog.LevelVar)
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// 2. Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	setLogLevel(cfg.LogLevel, logLevel)
	logger.Info("Configuration loaded successfully")

	// 3. Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// 4. Initialize application components
	client := commitlog.NewClient(cfg.BaseURL, cfg.Repo, cfg.Branch, logger)
	watcher := poller.New(client, cfg.PollInterval, logger)
	defer watcher.Close()

	watcher.Subscribe(func(commits []model.Commit) {
		for _, c := range commits {
			logger.Info("New commit observed",
				"id", c.ID,
				"branch", c.Branch,
				"author", c.User.Name,
				"message", c.Message)
		}
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: api.NewRouter(watcher, client, logger),
	}

	// 5. Run the poller and the API server until a shutdown signal arrives
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		watcher.Start(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received. Exiting.")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func setLogLevel(level string, v *slog.LevelVar) {
	switch level {
	case "debug":
		v.Set(slog.LevelDebug)
	case "warn":
		v.Set(slog.LevelWarn)
	case "error":
		v.Set(slog.LevelError)
	default:
		v.Set(slog.LevelInfo)
	}
}
