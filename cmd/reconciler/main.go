package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/config"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/registry"
	"github.com/feral-file/ff-registry/internal/store"
	"github.com/feral-file/ff-registry/internal/sweeper"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadReconcilerConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:           cfg.Debug,
		SentryDSN:       cfg.SentryDSN,
		BreadcrumbLevel: zapcore.InfoLevel,
		Service:         "registry-reconciler",
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.InfoCtx(ctx, "Starting Registry Reconciler")

	kv, closeStore, err := store.Open(ctx, cfg.Storage)
	if err != nil {
		logger.FatalCtx(ctx, "Failed to open storage", zap.Error(err), zap.String("backend", cfg.Storage.Backend))
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error(fmt.Errorf("failed to close storage: %w", err))
		}
	}()

	clock := adapter.NewClock()
	directory := registry.NewDirectory(kv, adapter.NewJSON(), adapter.NewJCS(), clock, adapter.NewULID(), nil, registry.Config{
		WorkerPoolSize: cfg.Worker.WorkerPoolSize,
	})
	defer directory.Close()

	// One-shot mode
	if cfg.Interval <= 0 {
		report, err := directory.Reconcile(ctx)
		if err != nil {
			logger.FatalCtx(ctx, "Reconciliation failed", zap.Error(err))
		}
		logger.InfoCtx(ctx, "Reconciliation complete",
			zap.String("run_id", report.RunID),
			zap.Int("repaired", report.Repaired()))
		return
	}

	indexSweeper := sweeper.NewIndexSweeper(sweeper.IndexSweeperConfig{Interval: cfg.Interval}, directory, clock)
	logger.InfoCtx(ctx, "Initialized index sweeper", zap.Duration("interval", cfg.Interval))

	errChan := make(chan error, 1)
	go func() {
		if err := indexSweeper.Start(ctx); err != nil {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.InfoCtx(ctx, "Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.ErrorCtx(ctx, err)
	}

	// Give the sweeper time to finish an in-progress run
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := indexSweeper.Stop(shutdownCtx); err != nil {
		logger.WarnCtx(shutdownCtx, "Index sweeper did not stop cleanly", zap.Error(err))
	}
	cancel()

	logger.Info("Registry reconciler stopped")
}
