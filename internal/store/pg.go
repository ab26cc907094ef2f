package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/mapping"
	"github.com/crosslink-crm/crosslink/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// It accesses the underlying *sql.DB and sets the pool configuration.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
//
// Notes:
//   - database/sql treats MaxOpenConns=0 as "unlimited"
//   - database/sql treats MaxIdleConns=0 as "no idle connections"
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	// Ensure MaxIdleConns doesn't exceed MaxOpenConns
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// Migrate creates or updates the schema tables
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&schema.ContactMapping{},
		&schema.SyncOperation{},
		&schema.ContactHash{},
		&schema.FieldMappingRule{},
		&schema.SyncEvent{},
		&schema.KeyValueStore{},
	)
}

// GetMappingBySideA retrieves the identity mapping whose system A id matches
func (s *pgStore) GetMappingBySideA(ctx context.Context, tenant, sideAID string) (*schema.ContactMapping, error) {
	var m schema.ContactMapping
	err := s.db.WithContext(ctx).
		Where("tenant = ? AND side_a_id = ?", tenant, sideAID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact mapping by side a id: %w", err)
	}
	return &m, nil
}

// GetMappingBySideB retrieves the identity mapping whose system B id matches
func (s *pgStore) GetMappingBySideB(ctx context.Context, tenant, sideBID string) (*schema.ContactMapping, error) {
	var m schema.ContactMapping
	err := s.db.WithContext(ctx).
		Where("tenant = ? AND side_b_id = ?", tenant, sideBID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get contact mapping by side b id: %w", err)
	}
	return &m, nil
}

// UpsertMapping creates or refreshes the identity link between the two ids.
// The unique index on (tenant, side_a_id) makes concurrent upserts for the
// same contact converge on one row instead of racing.
func (s *pgStore) UpsertMapping(ctx context.Context, tenant, sideAID, sideBID string, source domain.SyncSource) error {
	now := time.Now()
	m := schema.ContactMapping{
		Tenant:         tenant,
		SideAID:        sideAID,
		SideBID:        sideBID,
		LastSyncSource: string(source),
		LastSyncedAt:   now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant"}, {Name: "side_a_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"side_b_id", "last_sync_source", "last_synced_at", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert contact mapping: %w", err)
	}
	return nil
}

// DeleteMapping removes the identity link keyed by one side's id
func (s *pgStore) DeleteMapping(ctx context.Context, tenant, contactID string, side domain.Side) error {
	column := "side_a_id"
	if side == domain.SideB {
		column = "side_b_id"
	}
	err := s.db.WithContext(ctx).
		Where("tenant = ? AND "+column+" = ?", tenant, contactID).
		Delete(&schema.ContactMapping{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete contact mapping: %w", err)
	}
	return nil
}

// GetContactHash retrieves the last synced content hash, "" when absent
func (s *pgStore) GetContactHash(ctx context.Context, tenant, contactID string, side domain.Side) (string, error) {
	var h schema.ContactHash
	err := s.db.WithContext(ctx).
		Where("tenant = ? AND contact_id = ? AND side = ?", tenant, contactID, string(side)).
		First(&h).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get contact hash: %w", err)
	}
	return h.Hash, nil
}

// SetContactHash stores the content hash after a successful write
func (s *pgStore) SetContactHash(ctx context.Context, tenant, contactID string, side domain.Side, hash string) error {
	h := schema.ContactHash{
		Tenant:    tenant,
		ContactID: contactID,
		Side:      string(side),
		Hash:      hash,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tenant"}, {Name: "contact_id"}, {Name: "side"}},
		DoUpdates: clause.AssignmentColumns([]string{"hash", "updated_at"}),
	}).Create(&h).Error
	if err != nil {
		return fmt.Errorf("failed to set contact hash: %w", err)
	}
	return nil
}

// PutSyncOperation registers an operation id for the echo window
func (s *pgStore) PutSyncOperation(ctx context.Context, tenant, operationID, contactID string, targetSide domain.Side, expiresAt time.Time) error {
	op := schema.SyncOperation{
		OperationID: operationID,
		Tenant:      tenant,
		ContactID:   contactID,
		TargetSide:  string(targetSide),
		ExpiresAt:   expiresAt,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "operation_id"}},
		DoNothing: true,
	}).Create(&op).Error
	if err != nil {
		return fmt.Errorf("failed to put sync operation: %w", err)
	}
	return nil
}

// SyncOperationExists checks whether an operation id is registered and live
func (s *pgStore) SyncOperationExists(ctx context.Context, tenant, operationID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.SyncOperation{}).
		Where("tenant = ? AND operation_id = ? AND expires_at > ?", tenant, operationID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check sync operation: %w", err)
	}
	return count > 0, nil
}

// DeleteExpiredSyncOperations removes operation ids past their window
func (s *pgStore) DeleteExpiredSyncOperations(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Delete(&schema.SyncOperation{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete expired sync operations: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListActiveRules returns the tenant's active field mapping rules
func (s *pgStore) ListActiveRules(ctx context.Context, tenant string) ([]mapping.Rule, error) {
	var rows []schema.FieldMappingRule
	err := s.db.WithContext(ctx).
		Where("tenant = ? AND active = ?", tenant, true).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list field mapping rules: %w", err)
	}

	rules := make([]mapping.Rule, 0, len(rows))
	for _, row := range rows {
		rules = append(rules, mapping.Rule{
			SourceField:      row.SourceField,
			TargetField:      row.TargetField,
			Direction:        mapping.Direction(row.Direction),
			Transform:        mapping.TransformKind(row.Transform),
			Active:           row.Active,
			ProtectedDefault: row.ProtectedDefault,
		})
	}
	return rules, nil
}

// AppendSyncEvent writes one audit log entry and returns its event id
func (s *pgStore) AppendSyncEvent(ctx context.Context, input SyncEventInput) (string, error) {
	eventID := ulid.Make().String()

	var detail []byte
	if input.Detail != nil {
		var err error
		detail, err = json.Marshal(input.Detail)
		if err != nil {
			return "", fmt.Errorf("failed to marshal event detail: %w", err)
		}
	}

	event := schema.SyncEvent{
		EventID:      eventID,
		Tenant:       input.Tenant,
		Action:       string(input.Action),
		SourceSystem: string(input.SourceSystem),
		SideAID:      input.SideAID,
		SideBID:      input.SideBID,
		Detail:       detail,
		DurationMs:   input.Duration.Milliseconds(),
		Error:        input.Error,
	}
	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return "", fmt.Errorf("failed to append sync event: %w", err)
	}
	return eventID, nil
}

// PruneSyncEvents deletes audit entries older than the cutoff
func (s *pgStore) PruneSyncEvents(ctx context.Context, cutoff time.Time) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&schema.SyncEvent{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to prune sync events: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// GetLastFullSyncAt retrieves a tenant's reconciliation watermark
func (s *pgStore) GetLastFullSyncAt(ctx context.Context, tenant string) (time.Time, error) {
	key := fmt.Sprintf("last_full_sync_at:%s", tenant)

	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to get full sync watermark: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, kv.Value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse full sync watermark: %w", err)
	}
	return at, nil
}

// SetLastFullSyncAt stores a tenant's reconciliation watermark
func (s *pgStore) SetLastFullSyncAt(ctx context.Context, tenant string, at time.Time) error {
	kv := schema.KeyValueStore{
		Key:   fmt.Sprintf("last_full_sync_at:%s", tenant),
		Value: at.UTC().Format(time.RFC3339Nano),
	}
	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set full sync watermark: %w", err)
	}
	return nil
}
