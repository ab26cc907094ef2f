package schema

import "time"

// ContactMapping represents the contact_mappings table - the identity
// link between a contact's representation on each side.
type ContactMapping struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Tenant scopes the mapping to one customer account
	Tenant string `gorm:"column:tenant;not null;type:varchar(64);uniqueIndex:idx_mapping_side_a,priority:1;uniqueIndex:idx_mapping_side_b,priority:1"`
	// SideAID is the contact's id in system A
	SideAID string `gorm:"column:side_a_id;not null;type:varchar(255);uniqueIndex:idx_mapping_side_a,priority:2"`
	// SideBID is the contact's id in system B
	SideBID string `gorm:"column:side_b_id;not null;type:varchar(255);uniqueIndex:idx_mapping_side_b,priority:2"`
	// LastSyncSource is "a", "b", or "manual" for the most recent write
	LastSyncSource string `gorm:"column:last_sync_source;type:varchar(8)"`
	// LastSyncedAt is when the pair was last written by a sync
	LastSyncedAt time.Time `gorm:"column:last_synced_at;not null;default:now();type:timestamptz"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

func (ContactMapping) TableName() string {
	return "contact_mappings"
}
