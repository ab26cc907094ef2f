package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"go.uber.org/zap"
)

// CredentialRefresher re-acquires a tenant's credentials after a 401
//
//go:generate mockgen -source=executor.go -destination=../mocks/credential_refresher.go -package=mocks -mock_names=CredentialRefresher=MockCredentialRefresher
type CredentialRefresher interface {
	Refresh(ctx context.Context, tenant string) error
}

// Config controls retry behavior for outbound remote calls
type Config struct {
	MaxAttempts       int
	InitialInterval   time.Duration
	MaxInterval       time.Duration
	DefaultRetryAfter time.Duration
}

// DefaultConfig returns the retry settings used in production
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       5,
		InitialInterval:   500 * time.Millisecond,
		MaxInterval:       30 * time.Second,
		DefaultRetryAfter: 10 * time.Second,
	}
}

// Executor runs remote operations with classified retries. Rate limits
// honor the server's Retry-After delay, transient failures back off
// exponentially, an expired credential gets one refresh, and all other
// client errors fail immediately.
type Executor struct {
	cfg       Config
	clock     adapter.Clock
	refresher CredentialRefresher
}

// NewExecutor creates a retry executor. refresher may be nil, in which
// case 401 responses are treated as permanent.
func NewExecutor(cfg Config, clock adapter.Clock, refresher CredentialRefresher) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = DefaultConfig().InitialInterval
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = DefaultConfig().MaxInterval
	}
	if cfg.DefaultRetryAfter <= 0 {
		cfg.DefaultRetryAfter = DefaultConfig().DefaultRetryAfter
	}
	return &Executor{cfg: cfg, clock: clock, refresher: refresher}
}

// Do runs op until it succeeds, fails permanently, or the attempt
// budget is exhausted.
func (e *Executor) Do(ctx context.Context, tenant string, op func(ctx context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.cfg.InitialInterval
	bo.MaxInterval = e.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	bo.Reset()

	refreshed := false
	var lastErr error

	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		delay, retry := e.classify(ctx, tenant, err, bo, &refreshed)
		if !retry {
			return err
		}
		if attempt == e.cfg.MaxAttempts {
			break
		}

		logger.WarnCtx(ctx, "retrying remote operation",
			zap.String("tenant", tenant),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		if delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-e.clock.After(delay):
			}
		}
	}

	return fmt.Errorf("retry budget exhausted after %d attempts: %w", e.cfg.MaxAttempts, lastErr)
}

// classify decides whether err is retryable and with what delay
func (e *Executor) classify(ctx context.Context, tenant string, err error, bo backoff.BackOff, refreshed *bool) (time.Duration, bool) {
	var permErr *backoff.PermanentError
	if errors.As(err, &permErr) {
		return 0, false
	}

	var statusErr *domain.StatusError
	if !errors.As(err, &statusErr) {
		// network-level failure, treat as transient
		return bo.NextBackOff(), true
	}

	switch {
	case statusErr.StatusCode == 429:
		delay := statusErr.RetryAfter
		if delay <= 0 {
			delay = e.cfg.DefaultRetryAfter
		}
		return delay, true
	case statusErr.StatusCode == 401:
		if e.refresher == nil || *refreshed {
			return 0, false
		}
		*refreshed = true
		if refreshErr := e.refresher.Refresh(ctx, tenant); refreshErr != nil {
			logger.WarnCtx(ctx, "credential refresh failed",
				zap.String("tenant", tenant), zap.Error(refreshErr))
			return 0, false
		}
		return 0, true
	case statusErr.StatusCode >= 500:
		return bo.NextBackOff(), true
	default:
		// remaining 4xx are permanent
		return 0, false
	}
}
