package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-registry/internal/adapter"
	"github.com/feral-file/ff-registry/internal/logger"
	"github.com/feral-file/ff-registry/internal/registry"
)

const DEFAULT_INDEX_SWEEP_INTERVAL = 15 * time.Minute

// IndexSweeperConfig holds configuration for the index sweeper
type IndexSweeperConfig struct {
	// Interval between successful runs
	Interval time.Duration
	// InitialRetryInterval is the first wait after a failed run. Retries back off
	// exponentially up to Interval.
	InitialRetryInterval time.Duration
}

// indexSweeper periodically reconciles the registry indexes with the primary records
type indexSweeper struct {
	config    IndexSweeperConfig
	directory registry.Directory
	clock     adapter.Clock

	// mu guards the channels of the current run; both are nil while stopped
	mu        sync.Mutex
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewIndexSweeper creates a sweeper that runs Reconcile on every interval
func NewIndexSweeper(config IndexSweeperConfig, directory registry.Directory, clock adapter.Clock) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_INDEX_SWEEP_INTERVAL
	}
	if config.InitialRetryInterval <= 0 || config.InitialRetryInterval > config.Interval {
		config.InitialRetryInterval = min(10*time.Second, config.Interval)
	}
	return &indexSweeper{
		config:    config,
		directory: directory,
		clock:     clock,
	}
}

func (s *indexSweeper) Name() string {
	return "index-sweeper"
}

// Start reconciles immediately, then once per interval. A failed run is retried
// with exponential backoff instead of waiting a full interval.
// The sweeper can be started again once a previous run has returned.
func (s *indexSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stopChan != nil {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already running")
	}
	stop, stopped := make(chan struct{}), make(chan struct{})
	s.stopChan, s.stoppedCh = stop, stopped
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.stopChan, s.stoppedCh = nil, nil
		s.mu.Unlock()
		close(stopped)
	}()

	logger.InfoCtx(ctx, "Starting index sweeper", zap.Duration("interval", s.config.Interval))

	retry := backoff.NewExponentialBackOff()
	retry.InitialInterval = s.config.InitialRetryInterval
	retry.MaxInterval = s.config.Interval
	retry.MaxElapsedTime = 0
	retry.Reset()

	for {
		wait := s.config.Interval
		if err := s.runSweepCycle(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			wait = retry.NextBackOff()
			logger.ErrorCtx(ctx, err, zap.Duration("retry_in", wait))
		} else {
			retry.Reset()
		}

		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Index sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-stop:
			logger.InfoCtx(ctx, "Index sweeper stop requested")
			return nil
		case <-s.clock.After(wait):
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *indexSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	stop, stopped := s.stopChan, s.stoppedCh
	if stop == nil {
		s.mu.Unlock()
		return nil // Already stopped
	}
	select {
	case <-stop:
		// another Stop is already waiting on this run
	default:
		close(stop)
	}
	s.mu.Unlock()

	logger.InfoCtx(ctx, "Stopping index sweeper")

	select {
	case <-stopped:
		logger.InfoCtx(ctx, "Index sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Index sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs a single reconciliation
func (s *indexSweeper) runSweepCycle(ctx context.Context) error {
	start := s.clock.Now()
	report, err := s.directory.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	logger.InfoCtx(ctx, "Index sweep cycle finished",
		zap.String("run_id", report.RunID),
		zap.Int("repaired", report.Repaired()),
		zap.Duration("duration", s.clock.Since(start)),
	)
	return nil
}
