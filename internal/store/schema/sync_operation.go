package schema

import "time"

// SyncOperation represents the sync_operations table - operation ids
// issued for outbound writes, kept for the echo suppression window.
type SyncOperation struct {
	// OperationID is the UUID tagged onto the outbound payload
	OperationID string `gorm:"column:operation_id;primaryKey;type:varchar(36)"`
	Tenant      string `gorm:"column:tenant;not null;type:varchar(64);index:idx_sync_op_tenant"`
	// ContactID is the target-side contact the write addressed
	ContactID string `gorm:"column:contact_id;not null;type:varchar(255)"`
	// TargetSide is the side the write went to, "a" or "b"
	TargetSide string `gorm:"column:target_side;not null;type:varchar(1)"`
	// ExpiresAt is the end of the echo window for this operation
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_sync_op_expires;type:timestamptz"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

func (SyncOperation) TableName() string {
	return "sync_operations"
}
