package dedupe

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/crosslink-crm/crosslink/internal/adapter"
	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/logger"
	"github.com/crosslink-crm/crosslink/internal/mapping"
)

// TagField carries the sync operation id on outbound payloads so the
// echo webhook can be recognized when it comes back.
const TagField = "crosslink_sync_op"

// OperationStore persists issued operation ids for the echo window
type OperationStore interface {
	PutSyncOperation(ctx context.Context, tenant, operationID, contactID string, targetSide domain.Side, expiresAt time.Time) error
	SyncOperationExists(ctx context.Context, tenant, operationID string) (bool, error)
	DeleteExpiredSyncOperations(ctx context.Context, now time.Time) (int64, error)
}

// Guard suppresses echo loops: every outbound write registers an
// operation id, and inbound events carrying a registered id are dropped
// instead of synced back.
type Guard struct {
	store OperationStore
	cache *expirable.LRU[string, struct{}]
	ttl   time.Duration
	clock adapter.Clock
}

// DefaultTTL is how long a registered operation id is considered live
const DefaultTTL = 5 * time.Minute

// NewGuard creates an echo guard. The cache is an advisory fast path
// over the store; correctness only depends on the store.
func NewGuard(store OperationStore, clock adapter.Clock, ttl time.Duration, cacheSize int) *Guard {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	return &Guard{
		store: store,
		cache: expirable.NewLRU[string, struct{}](cacheSize, nil, ttl),
		ttl:   ttl,
		clock: clock,
	}
}

// NewOperationID returns a fresh operation id for an outbound write
func (g *Guard) NewOperationID() string {
	return uuid.New().String()
}

// RegisterOperation records an operation id before the outbound write
// that will carry it. Registration must succeed or the write must not
// proceed, otherwise the echo would be unrecognizable.
func (g *Guard) RegisterOperation(ctx context.Context, tenant, operationID, contactID string, targetSide domain.Side) error {
	expiresAt := g.clock.Now().Add(g.ttl)
	if err := g.store.PutSyncOperation(ctx, tenant, operationID, contactID, targetSide, expiresAt); err != nil {
		return fmt.Errorf("failed to register sync operation: %w", err)
	}
	g.cache.Add(cacheKey(tenant, operationID), struct{}{})
	return nil
}

// IsEcho reports whether the inbound event is the reflection of a write
// this service made. When the store cannot answer, the event is treated
// as not an echo: suppressing a genuine external change would silently
// drop it, while processing an echo is caught by the idempotency hash.
func (g *Guard) IsEcho(ctx context.Context, tenant string, raw map[string]interface{}, side domain.Side) (bool, error) {
	operationID, ok := ExtractOperationID(raw, side)
	if !ok {
		return false, nil
	}
	if _, hit := g.cache.Get(cacheKey(tenant, operationID)); hit {
		return true, nil
	}
	exists, err := g.store.SyncOperationExists(ctx, tenant, operationID)
	if err != nil {
		logger.WarnCtx(ctx, "echo lookup failed, processing event",
			zap.String("tenant", tenant),
			zap.String("operation_id", operationID),
			zap.Error(err))
		return false, nil
	}
	if exists {
		g.cache.Add(cacheKey(tenant, operationID), struct{}{})
	}
	return exists, nil
}

// PurgeExpired removes operation ids past their echo window
func (g *Guard) PurgeExpired(ctx context.Context) (int64, error) {
	return g.store.DeleteExpiredSyncOperations(ctx, g.clock.Now())
}

func cacheKey(tenant, operationID string) string {
	return tenant + "/" + operationID
}

// operationIDPaths lists where each remote system surfaces the tag
// field on inbound webhook payloads.
var operationIDPaths = map[domain.Side][]mapping.Extractor{
	domain.SideA: {
		{Path: []string{"properties", TagField, "value"}},
		{Path: []string{"properties", TagField}},
		{Path: []string{TagField}},
	},
	domain.SideB: {
		{Path: []string{"extended_properties", TagField}},
		{Path: []string{TagField}},
	},
}

// ExtractOperationID pulls the sync operation tag out of a raw inbound
// payload, trying each known location for the side in order.
func ExtractOperationID(raw map[string]interface{}, side domain.Side) (string, bool) {
	for _, ex := range operationIDPaths[side] {
		if v := ex.Extract(raw); v != "" {
			return v, true
		}
	}
	return "", false
}
