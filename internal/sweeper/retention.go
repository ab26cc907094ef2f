package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/dedupe"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/store"
)

// RetentionSweeperConfig controls expiry of sync bookkeeping data
type RetentionSweeperConfig struct {
	// Interval is the pause between purge cycles
	Interval time.Duration
	// EventRetention is how long audit log entries are kept
	EventRetention time.Duration
}

// retentionSweeper periodically purges expired echo-suppression
// operation ids and prunes old audit log entries.
type retentionSweeper struct {
	config    *RetentionSweeperConfig
	store     store.Store
	guard     *dedupe.Guard
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewRetentionSweeper creates a new retention sweeper
func NewRetentionSweeper(config *RetentionSweeperConfig, st store.Store, guard *dedupe.Guard, clock adapter.Clock) Sweeper {
	return &retentionSweeper{
		config:    config,
		store:     st,
		guard:     guard,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *retentionSweeper) Name() string {
	return "retention-sweeper"
}

// Start begins the sweeper's main loop
func (s *retentionSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting retention sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Duration("event_retention", s.config.EventRetention),
	)

	for {
		if err := s.runSweepCycle(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
		}

		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Retention sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Retention sweeper stop requested")
			return nil
		case <-s.clock.After(s.config.Interval):
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *retentionSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping retention sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Retention sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Retention sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle purges expired operation ids and old audit entries
func (s *retentionSweeper) runSweepCycle(ctx context.Context) error {
	operations, err := s.guard.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to purge expired sync operations: %w", err)
	}

	cutoff := s.clock.Now().Add(-s.config.EventRetention)
	events, err := s.store.PruneSyncEvents(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune sync events: %w", err)
	}

	if operations > 0 || events > 0 {
		logger.InfoCtx(ctx, "Retention cycle finished",
			zap.Int64("operations_purged", operations),
			zap.Int64("events_pruned", events),
		)
	}
	return nil
}
