package store

import (
	"context"
	"time"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/store/schema"
)

// SyncEventInput is the payload for one audit log entry. EventID is
// assigned by the store.
type SyncEventInput struct {
	Tenant       string
	Action       domain.SyncAction
	SourceSystem domain.SyncSource
	SideAID      string
	SideBID      string
	Detail       map[string]interface{}
	Duration     time.Duration
	Error        string
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetMappingBySideA retrieves the identity mapping whose system A id matches
	GetMappingBySideA(ctx context.Context, tenant, sideAID string) (*schema.ContactMapping, error)
	// GetMappingBySideB retrieves the identity mapping whose system B id matches
	GetMappingBySideB(ctx context.Context, tenant, sideBID string) (*schema.ContactMapping, error)
	// UpsertMapping creates or refreshes the identity link between the two
	// ids, recording which source drove the write
	UpsertMapping(ctx context.Context, tenant, sideAID, sideBID string, source domain.SyncSource) error
	// DeleteMapping removes the identity link keyed by one side's id
	DeleteMapping(ctx context.Context, tenant, contactID string, side domain.Side) error

	// GetContactHash retrieves the last synced content hash, "" when absent
	GetContactHash(ctx context.Context, tenant, contactID string, side domain.Side) (string, error)
	// SetContactHash stores the content hash after a successful write
	SetContactHash(ctx context.Context, tenant, contactID string, side domain.Side, hash string) error

	// PutSyncOperation registers an operation id for the echo window
	PutSyncOperation(ctx context.Context, tenant, operationID, contactID string, targetSide domain.Side, expiresAt time.Time) error
	// SyncOperationExists checks whether an operation id is registered and live
	SyncOperationExists(ctx context.Context, tenant, operationID string) (bool, error)
	// DeleteExpiredSyncOperations removes operation ids past their window
	DeleteExpiredSyncOperations(ctx context.Context, now time.Time) (int64, error)

	// ListActiveRules returns the tenant's active field mapping rules
	ListActiveRules(ctx context.Context, tenant string) ([]mapping.Rule, error)

	// AppendSyncEvent writes one audit log entry and returns its event id
	AppendSyncEvent(ctx context.Context, input SyncEventInput) (string, error)
	// PruneSyncEvents deletes audit entries older than the cutoff
	PruneSyncEvents(ctx context.Context, cutoff time.Time) (int64, error)

	// GetLastFullSyncAt retrieves a tenant's reconciliation watermark
	GetLastFullSyncAt(ctx context.Context, tenant string) (time.Time, error)
	// SetLastFullSyncAt stores a tenant's reconciliation watermark
	SetLastFullSyncAt(ctx context.Context, tenant string, at time.Time) error
}
