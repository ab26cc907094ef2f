package schema

import "time"

// FieldMappingRule represents the field_mapping_rules table - one
// per-tenant rule for carrying a field across systems.
type FieldMappingRule struct {
	ID     uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Tenant string `gorm:"column:tenant;not null;type:varchar(64);index:idx_rule_tenant"`
	// SourceField and TargetField are canonical field names
	SourceField string `gorm:"column:source_field;not null;type:varchar(128)"`
	TargetField string `gorm:"column:target_field;not null;type:varchar(128)"`
	// Direction is "a_to_b", "b_to_a", or "both"
	Direction string `gorm:"column:direction;not null;type:varchar(16)"`
	// Transform is applied to the value in flight, "" for passthrough
	Transform string `gorm:"column:transform;not null;default:'';type:varchar(32)"`
	Active    bool   `gorm:"column:active;not null;default:true"`
	// ProtectedDefault marks rules seeded at tenant creation
	ProtectedDefault bool      `gorm:"column:protected_default;not null;default:false"`
	CreatedAt        time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	UpdatedAt        time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

func (FieldMappingRule) TableName() string {
	return "field_mapping_rules"
}
