package orchestrator

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
)

// BatchResult pairs one batch event with its outcome. Err is set when
// the event failed; Result is set when it completed, including skips.
type BatchResult struct {
	Index  int
	Result *domain.SyncResult
	Err    error
}

// ProcessWebhookBatch runs a batch of events through the bounded worker
// pool. Results come back in input order, and one event's failure never
// aborts its siblings.
func (o *orchestrator) ProcessWebhookBatch(ctx context.Context, tenant string, events []domain.WebhookEvent) []BatchResult {
	tasks := make([]pond.Result[*BatchResult], len(events))
	for i, event := range events {
		i, event := i, event
		tasks[i] = o.pool.SubmitErr(func() (*BatchResult, error) {
			result, err := o.HandleWebhookEvent(ctx, tenant, event)
			return &BatchResult{Index: i, Result: result, Err: err}, nil
		})
	}

	results := make([]BatchResult, len(events))
	for i, task := range tasks {
		br, err := task.Wait()
		if err != nil {
			// pool-level failure (stopped pool or panic in the task)
			results[i] = BatchResult{Index: i, Err: fmt.Errorf("batch task failed: %w", err)}
			logger.ErrorCtx(ctx, err,
				zap.String("message", "webhook batch task failed"),
				zap.String("tenant", tenant),
				zap.Int("index", i))
			continue
		}
		results[i] = *br
		if br.Err != nil {
			logger.WarnCtx(ctx, "webhook event failed",
				zap.String("tenant", tenant),
				zap.Int("index", i),
				zap.String("contact_id", events[i].ContactID),
				zap.Error(br.Err))
		}
	}
	return results
}
