package schema

import "time"

// ContactHash represents the contact_hashes table - the content hash of
// the last state synced to a contact on one side.
type ContactHash struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Tenant string `gorm:"column:tenant;not null;type:varchar(64);uniqueIndex:idx_contact_hash,priority:1"`
	// ContactID is the contact's id on the side the hash describes
	ContactID string `gorm:"column:contact_id;not null;type:varchar(255);uniqueIndex:idx_contact_hash,priority:2"`
	// Side is "a" or "b"
	Side string `gorm:"column:side;not null;type:varchar(1);uniqueIndex:idx_contact_hash,priority:3"`
	// Hash is the hex SHA-256 of the canonical flattened fields
	Hash      string    `gorm:"column:hash;not null;type:varchar(64)"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

func (ContactHash) TableName() string {
	return "contact_hashes"
}
