package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/conflict"
	"github.com/crosslink-crm/crosslink/internal/dedupe"
	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/provider"
	"github.com/crosslink-crm/crosslink/internal/store/schema"
)

func (o *orchestrator) lookupMapping(ctx context.Context, tenant string, side domain.Side, contactID string) (*schema.ContactMapping, error) {
	if side == domain.SideA {
		return o.store.GetMappingBySideA(ctx, tenant, contactID)
	}
	return o.store.GetMappingBySideB(ctx, tenant, contactID)
}

// syncContact runs the mapped-or-unmapped sync scenarios for one source
// record. raw is the source system's payload; source labels the audit
// trail ("a"/"b" for webhooks, "manual" for full syncs).
func (o *orchestrator) syncContact(ctx context.Context, tenant string, sourceSide domain.Side, sourceID string, raw map[string]interface{}, source domain.SyncSource, started time.Time) (*domain.SyncResult, error) {
	targetSide := sourceSide.Opposite()
	targetProvider := o.providers[targetSide]

	flat := mapping.Flatten(raw, sourceSide)
	rules, err := o.engine.RulesFor(ctx, tenant)
	if err != nil {
		return nil, err
	}
	mapped := mapping.MapToTarget(flat, rules, mapping.EffectiveDirection(sourceSide))

	m, err := o.lookupMapping(ctx, tenant, sourceSide, sourceID)
	if err != nil {
		return nil, err
	}

	if m != nil {
		targetID := m.SideBID
		if targetSide == domain.SideA {
			targetID = m.SideAID
		}
		result, err := o.updateTarget(ctx, tenant, sourceSide, sourceID, targetID, raw, mapped, source, started)
		if err == nil || !errors.Is(err, domain.ErrContactNotFound) {
			return result, err
		}
		// The mapped target contact is gone; drop the stale link and
		// fall through to the unmapped flow.
		logger.WarnCtx(ctx, "mapped target contact missing, relinking",
			zap.String("tenant", tenant),
			zap.String("target_id", targetID))
		if delErr := o.store.DeleteMapping(ctx, tenant, sourceID, sourceSide); delErr != nil {
			return nil, delErr
		}
	}

	// No mapping: try to adopt an existing target contact by email
	// before creating a duplicate.
	if email := flat[mapping.FieldEmail]; email != "" {
		existing, err := o.findByEmail(ctx, tenant, targetProvider, email)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if err := o.upsertMapping(ctx, tenant, sourceSide, sourceID, existing.ID, source); err != nil {
				return nil, err
			}
			return o.updateTarget(ctx, tenant, sourceSide, sourceID, existing.ID, raw, mapped, source, started)
		}
	}

	return o.createTarget(ctx, tenant, sourceSide, sourceID, mapped, source, started)
}

// updateTarget writes mapped fields onto an existing target contact,
// unless the content already matches or the target is newer.
func (o *orchestrator) updateTarget(ctx context.Context, tenant string, sourceSide domain.Side, sourceID, targetID string, raw map[string]interface{}, mapped domain.FlatFields, source domain.SyncSource, started time.Time) (*domain.SyncResult, error) {
	targetSide := sourceSide.Opposite()
	targetProvider := o.providers[targetSide]

	result := &domain.SyncResult{
		SourceSystem: sourceSide,
	}
	o.fillIDs(result, sourceSide, sourceID, targetID)

	// Unchanged content short-circuits before any remote call
	skip, _ := o.checker.ShouldSkipWrite(ctx, tenant, targetID, targetSide, mapped)
	if skip {
		result.Action = domain.SyncActionSkip
		o.audit(ctx, tenant, result, source, started, nil, map[string]interface{}{
			"reason": "content unchanged",
		})
		return result, nil
	}

	var targetRecord *domain.ContactRecord
	err := o.executor.Do(ctx, tenant, func(ctx context.Context) error {
		var opErr error
		targetRecord, opErr = targetProvider.GetByID(ctx, targetID)
		if errors.Is(opErr, domain.ErrContactNotFound) {
			return backoff.Permanent(opErr)
		}
		return opErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch target contact: %w", err)
	}

	sourceTS := mapping.ExtractUpdatedAt(raw, sourceSide)
	decision := o.resolve(sourceTS, targetRecord.UpdatedAt, sourceSide)
	if decision.Winner != sourceSide {
		result.Action = domain.SyncActionSkip
		o.audit(ctx, tenant, result, source, started, nil, map[string]interface{}{
			"reason":   "conflict loss",
			"decision": decision.Reason,
		})
		return result, nil
	}

	operationID := o.guard.NewOperationID()
	if err := o.guard.RegisterOperation(ctx, tenant, operationID, targetID, targetSide); err != nil {
		return nil, err
	}

	payload := mapped.Clone()
	payload[dedupe.TagField] = operationID
	err = o.executor.Do(ctx, tenant, func(ctx context.Context) error {
		return targetProvider.Update(ctx, targetID, payload)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update target contact: %w", err)
	}

	o.checker.UpdateHash(ctx, tenant, targetID, targetSide, mapped)
	if err := o.upsertMapping(ctx, tenant, sourceSide, sourceID, targetID, source); err != nil {
		return nil, err
	}

	result.Action = domain.SyncActionUpdate
	o.audit(ctx, tenant, result, source, started, nil, map[string]interface{}{
		"operation_id": operationID,
	})
	return result, nil
}

// createTarget creates the contact on the target side and links the pair
func (o *orchestrator) createTarget(ctx context.Context, tenant string, sourceSide domain.Side, sourceID string, mapped domain.FlatFields, source domain.SyncSource, started time.Time) (*domain.SyncResult, error) {
	targetSide := sourceSide.Opposite()
	targetProvider := o.providers[targetSide]

	operationID := o.guard.NewOperationID()
	if err := o.guard.RegisterOperation(ctx, tenant, operationID, sourceID, targetSide); err != nil {
		return nil, err
	}

	payload := mapped.Clone()
	payload[dedupe.TagField] = operationID

	var created *domain.ContactRecord
	err := o.executor.Do(ctx, tenant, func(ctx context.Context) error {
		var opErr error
		created, opErr = targetProvider.Create(ctx, payload)
		return opErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create target contact: %w", err)
	}

	o.checker.UpdateHash(ctx, tenant, created.ID, targetSide, mapped)
	if err := o.upsertMapping(ctx, tenant, sourceSide, sourceID, created.ID, source); err != nil {
		return nil, err
	}

	result := &domain.SyncResult{
		Action:       domain.SyncActionCreate,
		SourceSystem: sourceSide,
	}
	o.fillIDs(result, sourceSide, sourceID, created.ID)
	o.audit(ctx, tenant, result, source, started, nil, map[string]interface{}{
		"operation_id": operationID,
	})
	return result, nil
}

func (o *orchestrator) findByEmail(ctx context.Context, tenant string, targetProvider provider.ContactProvider, email string) (*domain.ContactRecord, error) {
	var found *domain.ContactRecord
	err := o.executor.Do(ctx, tenant, func(ctx context.Context) error {
		var opErr error
		found, opErr = targetProvider.FindByEmail(ctx, email)
		return opErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to match contact by email: %w", err)
	}
	return found, nil
}

// resolve orients the source/target timestamps into side order before
// applying last-writer-wins.
func (o *orchestrator) resolve(sourceTS, targetTS string, sourceSide domain.Side) conflict.Decision {
	tsA, tsB := sourceTS, targetTS
	if sourceSide == domain.SideB {
		tsA, tsB = targetTS, sourceTS
	}
	return conflict.Resolve(tsA, tsB, sourceSide, o.cfg.TieBreak)
}

func (o *orchestrator) upsertMapping(ctx context.Context, tenant string, sourceSide domain.Side, sourceID, targetID string, source domain.SyncSource) error {
	sideAID, sideBID := sourceID, targetID
	if sourceSide == domain.SideB {
		sideAID, sideBID = targetID, sourceID
	}
	return o.store.UpsertMapping(ctx, tenant, sideAID, sideBID, source)
}

func (o *orchestrator) fillIDs(result *domain.SyncResult, sourceSide domain.Side, sourceID, targetID string) {
	if sourceSide == domain.SideA {
		result.SideAID, result.SideBID = sourceID, targetID
	} else {
		result.SideAID, result.SideBID = targetID, sourceID
	}
}
