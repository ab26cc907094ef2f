package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/orchestrator"
)

// ReconciliationSweeperConfig controls the periodic full sync
type ReconciliationSweeperConfig struct {
	// Tenants are the tenant ids swept each cycle
	Tenants []string
	// Interval is the pause between sweep cycles
	Interval time.Duration
}

// reconciliationSweeper runs a full two-way sync for every configured
// tenant on a fixed interval, catching anything the webhook path missed.
type reconciliationSweeper struct {
	config    *ReconciliationSweeperConfig
	syncer    orchestrator.Syncer
	clock     adapter.Clock
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewReconciliationSweeper creates a new reconciliation sweeper
func NewReconciliationSweeper(config *ReconciliationSweeperConfig, syncer orchestrator.Syncer, clock adapter.Clock) Sweeper {
	return &reconciliationSweeper{
		config:    config,
		syncer:    syncer,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Name returns the sweeper's name
func (s *reconciliationSweeper) Name() string {
	return "reconciliation-sweeper"
}

// Start begins the sweeper's main loop
func (s *reconciliationSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting reconciliation sweeper",
		zap.Int("tenants", len(s.config.Tenants)),
		zap.Duration("interval", s.config.Interval),
	)

	for {
		if err := s.runSweepCycle(ctx); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.ErrorCtx(ctx, err)
			}
		}

		select {
		case <-ctx.Done():
			logger.InfoCtx(ctx, "Reconciliation sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
			return nil
		case <-s.stopChan:
			logger.InfoCtx(ctx, "Reconciliation sweeper stop requested")
			return nil
		case <-s.clock.After(s.config.Interval):
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *reconciliationSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping reconciliation sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Reconciliation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Reconciliation sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle runs one full sync per configured tenant
func (s *reconciliationSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()

	for _, tenant := range s.config.Tenants {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		stats, err := s.syncer.FullSync(ctx, tenant)
		if err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "full sync failed"), zap.String("tenant", tenant))
			continue
		}

		logger.InfoCtx(ctx, "Tenant reconciled",
			zap.String("tenant", tenant),
			zap.Int("total", stats.Total),
			zap.Int("synced", stats.Synced),
			zap.Int("skipped", stats.Skipped),
			zap.Int("errors", stats.Errors),
		)
	}

	logger.InfoCtx(ctx, "Reconciliation cycle finished",
		zap.Duration("elapsed", s.clock.Since(startTime)))
	return nil
}
