package schema

import (
	"time"

	"gorm.io/datatypes"
)

// SyncEvent represents the sync_events table - the append-only audit
// log of every sync decision.
type SyncEvent struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is a ULID, so events sort lexicographically by time
	EventID string `gorm:"column:event_id;not null;unique;type:varchar(26)"`
	Tenant  string `gorm:"column:tenant;not null;type:varchar(64);index:idx_sync_event_tenant"`
	// Action is "create", "update", "skip", "delete", or "failed"
	Action string `gorm:"column:action;not null;type:varchar(16)"`
	// SourceSystem is "a", "b", or "manual"
	SourceSystem string `gorm:"column:source_system;not null;type:varchar(8)"`
	SideAID      string `gorm:"column:side_a_id;type:varchar(255)"`
	SideBID      string `gorm:"column:side_b_id;type:varchar(255)"`
	// Detail holds action-specific context such as skip reasons and
	// conflict decisions
	Detail datatypes.JSON `gorm:"column:detail;type:jsonb"`
	// DurationMs is how long the scenario ran, in milliseconds
	DurationMs int64 `gorm:"column:duration_ms;not null;default:0"`
	// Error is the failure text for "failed" entries
	Error     string    `gorm:"column:error;type:text"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();index:idx_sync_event_created;type:timestamptz"`
}

func (SyncEvent) TableName() string {
	return "sync_events"
}
