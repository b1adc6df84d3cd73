package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/coinstream/internal/api"
	"github.com/rickgao/coinstream/internal/auth"
	"github.com/rickgao/coinstream/internal/config"
	"github.com/rickgao/coinstream/internal/hub"
	"github.com/rickgao/coinstream/internal/metrics"
	"github.com/rickgao/coinstream/internal/poller"
	"github.com/rickgao/coinstream/internal/refresh"
	"github.com/rickgao/coinstream/internal/search"
	"github.com/rickgao/coinstream/internal/server"
	"github.com/rickgao/coinstream/internal/snapshot"
	"github.com/rickgao/coinstream/internal/store"
	"github.com/rickgao/coinstream/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/coinstream.yaml", "path to config file")
	envFile := flag.String("env", ".env", "path to optional .env file")
	flag.Parse()

	bootLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(*envFile); err != nil {
		bootLogger.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		bootLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting coinstream",
		"version", version.Version,
		"commit", version.Get().Commit,
		"config", *configPath,
	)

	secret, err := auth.LoadSecret(cfg.Server.AuthToken, cfg.Server.AuthTokenFile)
	if err != nil {
		logger.Error("failed to load auth token", "error", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	var rec metrics.Recorder = metrics.Prom{}
	if cfg.Metrics.Disabled {
		rec = metrics.Nop{}
	}

	// Restore the last persisted snapshot
	st := store.New()
	persister := snapshot.NewPersister(snapshot.NewFileBlob(cfg.Snapshot.Path), logger)
	restoreSnapshot(ctx, persister, st, rec, logger)

	// Create API client
	apiClient := api.NewClient(
		cfg.Upstream.BaseURL,
		cfg.Upstream.APIKey,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Upstream.Timeout),
		api.WithAPIKeyHeader(cfg.Upstream.APIKeyHeader),
		api.WithVsCurrency(cfg.Upstream.VsCurrency),
	)

	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	if pong, err := apiClient.Ping(pingCtx); err != nil {
		logger.Warn("upstream ping failed, serving cached data until it recovers", "error", err)
	} else {
		logger.Info("upstream reachable", "message", pong.GeckoSays)
	}
	pingCancel()

	broadcaster := hub.New(logger, rec)

	orchestrator := refresh.New(apiClient, st, persister, broadcaster,
		refresh.Config{
			PageSize:  cfg.Refresh.PageSize,
			MaxPages:  cfg.Refresh.MaxPages,
			PageDelay: cfg.Refresh.PageDelay,
			Interval:  cfg.Refresh.Interval,
		},
		refresh.WithLogger(logger),
		refresh.WithMetrics(rec),
	)

	engine := search.NewEngine(st, apiClient, logger, rec)

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		DeferGreeting:   cfg.Server.DeferGreeting,
		WriteTimeout:    cfg.Server.WriteTimeout,
		PingInterval:    cfg.Server.PingInterval,
		PongTimeout:     cfg.Server.PongTimeout,
		MaxMessageBytes: cfg.Server.MaxMessageBytes,
		SendQueueSize:   cfg.Server.SendQueueSize,
		MetricsEnabled:  !cfg.Metrics.Disabled,
		MetricsPath:     cfg.Metrics.Path,
	}, broadcaster, orchestrator, engine, st, auth.NewVerifier(secret, cfg.Server.AllowQueryToken), logger)

	scheduler := poller.New(poller.Config{Interval: orchestrator.Interval()}, orchestrator, st, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(srv.Run)

	g.Go(func() error {
		if err := scheduler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		stopCtx, stopCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer stopCancel()
		return scheduler.Stop(stopCtx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("coinstream running",
		"addr", cfg.Server.Addr,
		"refresh_interval", cfg.Refresh.Interval,
		"snapshot", cfg.Snapshot.Path,
	)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("coinstream exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("coinstream stopped")
}

// restoreSnapshot seeds the store from disk. A missing or unreadable
// snapshot leaves the store empty.
func restoreSnapshot(ctx context.Context, p *snapshot.Persister, st *store.Store, rec metrics.Recorder, logger *slog.Logger) {
	snap, err := p.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		logger.Info("no persisted snapshot, starting empty")
		return
	case err != nil:
		logger.Warn("ignoring unreadable snapshot", "error", err)
		return
	}

	st.Restore(snap)
	if last := st.LastUpdated(); last != nil {
		rec.SnapshotInstalled(st.Len(), *last)
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
