package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/provider"
)

// FullSync reconciles every contact in both systems: each side-A contact
// is pushed through the normal sync pipeline, then side-B contacts that
// still have no mapping are pulled back the other way. One bad record
// counts as an error and the sweep moves on.
func (o *orchestrator) FullSync(ctx context.Context, tenant string) (*domain.SweepStats, error) {
	stats := &domain.SweepStats{}

	// The watermark records the attempt, complete or not, so operators
	// can see when reconciliation last ran.
	defer func() {
		if err := o.store.SetLastFullSyncAt(ctx, tenant, o.clock.Now()); err != nil {
			logger.WarnCtx(ctx, "failed to record full sync watermark",
				zap.String("tenant", tenant), zap.Error(err))
		}
	}()

	if err := o.sweepSide(ctx, tenant, domain.SideA, stats, nil); err != nil {
		return stats, err
	}

	// Only side-B contacts nobody linked yet; mapped pairs were already
	// reconciled in the first pass.
	unmappedOnly := func(ctx context.Context, contactID string) (bool, error) {
		m, err := o.store.GetMappingBySideB(ctx, tenant, contactID)
		if err != nil {
			return false, err
		}
		return m == nil, nil
	}
	if err := o.sweepSide(ctx, tenant, domain.SideB, stats, unmappedOnly); err != nil {
		return stats, err
	}

	logger.InfoCtx(ctx, "full sync finished",
		zap.String("tenant", tenant),
		zap.Int("total", stats.Total),
		zap.Int("synced", stats.Synced),
		zap.Int("skipped", stats.Skipped),
		zap.Int("errors", stats.Errors))
	return stats, nil
}

// sweepSide pages through one side's contacts and syncs each record that
// passes the optional filter.
func (o *orchestrator) sweepSide(ctx context.Context, tenant string, side domain.Side, stats *domain.SweepStats, filter func(ctx context.Context, contactID string) (bool, error)) error {
	prov := o.providers[side]
	cursor := ""
	for {
		page, err := o.listPage(ctx, tenant, prov, cursor)
		if err != nil {
			return fmt.Errorf("failed to list side %s contacts: %w", side, err)
		}

		for _, record := range page.Records {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			started := o.clock.Now()
			if record.ID == "" {
				stats.Total++
				stats.Errors++
				o.auditFailure(ctx, tenant, side, "", domain.SyncSourceManual, started, domain.ErrMissingContactID)
				logger.WarnCtx(ctx, "full sync record has no contact id",
					zap.String("tenant", tenant),
					zap.String("side", string(side)))
				continue
			}
			if filter != nil {
				include, err := filter(ctx, record.ID)
				if err != nil {
					stats.Errors++
					stats.Total++
					continue
				}
				if !include {
					continue
				}
			}
			if echo, _ := o.guard.IsEcho(ctx, tenant, record.Fields, side); echo {
				stats.Total++
				stats.Skipped++
				o.audit(ctx, tenant, o.skipResult(side, record.ID), domain.SyncSourceManual, started, nil, map[string]interface{}{
					"reason": "echo",
				})
				continue
			}

			stats.Total++
			result, err := o.syncContact(ctx, tenant, side, record.ID, record.Fields, domain.SyncSourceManual, started)
			switch {
			case err != nil:
				stats.Errors++
				o.auditFailure(ctx, tenant, side, record.ID, domain.SyncSourceManual, started, err)
				logger.WarnCtx(ctx, "full sync record failed",
					zap.String("tenant", tenant),
					zap.String("side", string(side)),
					zap.String("contact_id", record.ID),
					zap.Error(err))
			case result.Action == domain.SyncActionSkip:
				stats.Skipped++
			default:
				stats.Synced++
			}
		}

		if page.NextCursor == "" {
			return nil
		}
		cursor = page.NextCursor
	}
}

func (o *orchestrator) listPage(ctx context.Context, tenant string, prov provider.ContactProvider, cursor string) (*provider.Page, error) {
	var page *provider.Page
	err := o.executor.Do(ctx, tenant, func(ctx context.Context) error {
		var opErr error
		page, opErr = prov.List(ctx, cursor, o.cfg.FullSyncPage)
		return opErr
	})
	return page, err
}
