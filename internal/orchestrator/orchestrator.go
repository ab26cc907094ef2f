package orchestrator

import (
	"context"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/conflict"
	"github.com/crosslink-crm/crosslink/internal/dedupe"
	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/idempotency"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/messaging"
	"github.com/crosslink-crm/crosslink/internal/provider"
	"github.com/crosslink-crm/crosslink/internal/retry"
	"github.com/crosslink-crm/crosslink/internal/store"
)

// Config holds the tuning knobs for the sync orchestrator
type Config struct {
	TieBreak      conflict.TieBreak
	BatchWorkers  int
	FullSyncPage  int
	BatchShutdown time.Duration
}

// DefaultConfig returns the orchestrator settings used in production
func DefaultConfig() Config {
	return Config{
		TieBreak:      conflict.TieBreakInbound,
		BatchWorkers:  8,
		FullSyncPage:  100,
		BatchShutdown: 30 * time.Second,
	}
}

// Orchestrator drives the four sync scenarios: it suppresses echoes,
// maps fields, resolves conflicts, skips no-op writes, and keeps the
// identity mappings and audit log consistent with what it wrote.
//
//go:generate mockgen -source=orchestrator.go -destination=../mocks/syncer.go -package=mocks -mock_names=Syncer=MockSyncer
type Syncer interface {
	// HandleWebhookEvent processes one verified inbound notification
	HandleWebhookEvent(ctx context.Context, tenant string, event domain.WebhookEvent) (*domain.SyncResult, error)
	// ProcessWebhookBatch processes a batch concurrently, one result per event
	ProcessWebhookBatch(ctx context.Context, tenant string, events []domain.WebhookEvent) []BatchResult
	// FullSync walks both systems and reconciles every contact
	FullSync(ctx context.Context, tenant string) (*domain.SweepStats, error)
	// Close drains the batch worker pool
	Close()
}

type orchestrator struct {
	cfg       Config
	store     store.Store
	providers map[domain.Side]provider.ContactProvider
	engine    *mapping.Engine
	guard     *dedupe.Guard
	checker   *idempotency.Checker
	executor  *retry.Executor
	publisher messaging.Publisher
	clock     adapter.Clock
	pool      pond.ResultPool[*BatchResult]
}

// NewOrchestrator wires the sync pipeline. publisher may be nil, in
// which case audit events are persisted but not published.
func NewOrchestrator(
	cfg Config,
	st store.Store,
	providerA, providerB provider.ContactProvider,
	engine *mapping.Engine,
	guard *dedupe.Guard,
	checker *idempotency.Checker,
	executor *retry.Executor,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Syncer {
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = DefaultConfig().BatchWorkers
	}
	if cfg.FullSyncPage <= 0 {
		cfg.FullSyncPage = DefaultConfig().FullSyncPage
	}
	if cfg.TieBreak == "" {
		cfg.TieBreak = conflict.TieBreakInbound
	}
	if cfg.BatchShutdown <= 0 {
		cfg.BatchShutdown = DefaultConfig().BatchShutdown
	}

	return &orchestrator{
		cfg:   cfg,
		store: st,
		providers: map[domain.Side]provider.ContactProvider{
			domain.SideA: providerA,
			domain.SideB: providerB,
		},
		engine:    engine,
		guard:     guard,
		checker:   checker,
		executor:  executor,
		publisher: publisher,
		clock:     clock,
		pool:      pond.NewResultPool[*BatchResult](cfg.BatchWorkers),
	}
}

// HandleWebhookEvent processes one verified inbound notification
func (o *orchestrator) HandleWebhookEvent(ctx context.Context, tenant string, event domain.WebhookEvent) (*domain.SyncResult, error) {
	if !event.Side.Valid() {
		return nil, domain.ErrUnknownSide
	}
	started := o.clock.Now()

	switch event.EventType {
	case domain.EventTypeCreated, domain.EventTypeUpdated:
	case domain.EventTypeDeleted:
		return o.handleContactDeleted(ctx, tenant, event, started)
	default:
		return nil, domain.ErrUnknownEventType
	}

	contactID := event.ContactID
	if contactID == "" {
		return nil, domain.ErrMissingContactID
	}

	source := domain.SourceForSide(event.Side)
	echo, _ := o.guard.IsEcho(ctx, tenant, event.Record, event.Side)
	if echo {
		logger.InfoCtx(ctx, "suppressed echo event",
			zap.String("tenant", tenant),
			zap.String("side", string(event.Side)),
			zap.String("contact_id", contactID))
		result := o.skipResult(event.Side, contactID)
		o.audit(ctx, tenant, result, source, started, nil, map[string]interface{}{
			"reason": "echo",
		})
		return result, nil
	}

	result, err := o.syncContact(ctx, tenant, event.Side, contactID, event.Record, source, started)
	if err != nil {
		o.auditFailure(ctx, tenant, event.Side, contactID, source, started, err)
		return nil, err
	}
	return result, nil
}

// handleContactDeleted tears down the identity link when a contact is
// removed on one side. The surviving contact is left untouched.
func (o *orchestrator) handleContactDeleted(ctx context.Context, tenant string, event domain.WebhookEvent, started time.Time) (*domain.SyncResult, error) {
	if event.ContactID == "" {
		return nil, domain.ErrMissingContactID
	}
	source := domain.SourceForSide(event.Side)

	m, err := o.lookupMapping(ctx, tenant, event.Side, event.ContactID)
	if err != nil {
		o.auditFailure(ctx, tenant, event.Side, event.ContactID, source, started, err)
		return nil, err
	}
	if m == nil {
		result := o.skipResult(event.Side, event.ContactID)
		o.audit(ctx, tenant, result, source, started, nil, map[string]interface{}{
			"reason": "no mapping for deleted contact",
		})
		return result, nil
	}

	if err := o.store.DeleteMapping(ctx, tenant, event.ContactID, event.Side); err != nil {
		o.auditFailure(ctx, tenant, event.Side, event.ContactID, source, started, err)
		return nil, err
	}

	result := &domain.SyncResult{
		Action:       domain.SyncActionDelete,
		SourceSystem: event.Side,
		SideAID:      m.SideAID,
		SideBID:      m.SideBID,
	}
	o.audit(ctx, tenant, result, source, started, nil, nil)
	return result, nil
}

func (o *orchestrator) skipResult(side domain.Side, contactID string) *domain.SyncResult {
	result := &domain.SyncResult{
		Action:       domain.SyncActionSkip,
		SourceSystem: side,
	}
	if side == domain.SideA {
		result.SideAID = contactID
	} else {
		result.SideBID = contactID
	}
	return result
}

// auditFailure records a scenario that aborted on an error, so the
// audit log accounts for every inbound event, not only the clean ones
func (o *orchestrator) auditFailure(ctx context.Context, tenant string, side domain.Side, contactID string, source domain.SyncSource, started time.Time, syncErr error) {
	result := &domain.SyncResult{
		Action:       domain.SyncActionFailed,
		SourceSystem: side,
	}
	if side == domain.SideA {
		result.SideAID = contactID
	} else {
		result.SideBID = contactID
	}
	o.audit(ctx, tenant, result, source, started, syncErr, nil)
}

// audit persists one audit log entry and publishes it. Neither failure
// aborts the sync that produced the event.
func (o *orchestrator) audit(ctx context.Context, tenant string, result *domain.SyncResult, source domain.SyncSource, started time.Time, syncErr error, detail map[string]interface{}) {
	duration := o.clock.Now().Sub(started)
	errText := ""
	if syncErr != nil {
		errText = syncErr.Error()
	}
	eventID, err := o.store.AppendSyncEvent(ctx, store.SyncEventInput{
		Tenant:       tenant,
		Action:       result.Action,
		SourceSystem: source,
		SideAID:      result.SideAID,
		SideBID:      result.SideBID,
		Detail:       detail,
		Duration:     duration,
		Error:        errText,
	})
	if err != nil {
		logger.ErrorCtx(ctx, err,
			zap.String("message", "failed to append sync event"),
			zap.String("tenant", tenant),
			zap.String("action", string(result.Action)))
		return
	}

	if o.publisher == nil {
		return
	}
	event := &domain.AuditEvent{
		EventID:      eventID,
		Tenant:       tenant,
		Action:       result.Action,
		SourceSystem: source,
		SideAID:      result.SideAID,
		SideBID:      result.SideBID,
		Detail:       detail,
		DurationMS:   duration.Milliseconds(),
		Error:        errText,
		CreatedAt:    o.clock.Now(),
	}
	if err := o.publisher.PublishSyncEvent(ctx, event); err != nil {
		logger.WarnCtx(ctx, "failed to publish sync event",
			zap.String("tenant", tenant),
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

// Close drains the batch worker pool, waiting at most BatchShutdown
// for in-flight syncs to finish
func (o *orchestrator) Close() {
	task := o.pool.Stop()
	select {
	case <-task.Done():
	case <-o.clock.After(o.cfg.BatchShutdown):
		logger.Warn("batch pool did not drain before shutdown deadline",
			zap.Duration("deadline", o.cfg.BatchShutdown))
	}
}
