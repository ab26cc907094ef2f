package mapping_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crosslink-crm/crosslink/internal/domain"
	"github.com/crosslink-crm/crosslink/internal/mapping"
)

func TestEffectiveDirection(t *testing.T) {
	assert.Equal(t, mapping.DirectionAToB, mapping.EffectiveDirection(domain.SideA))
	assert.Equal(t, mapping.DirectionBToA, mapping.EffectiveDirection(domain.SideB))
}

func TestDirectionIncludes(t *testing.T) {
	assert.True(t, mapping.DirectionBoth.Includes(mapping.DirectionAToB))
	assert.True(t, mapping.DirectionBoth.Includes(mapping.DirectionBToA))
	assert.True(t, mapping.DirectionAToB.Includes(mapping.DirectionAToB))
	assert.False(t, mapping.DirectionAToB.Includes(mapping.DirectionBToA))
}

func TestMapToTarget(t *testing.T) {
	rules := []mapping.Rule{
		{
			SourceField: mapping.FieldEmail,
			TargetField: mapping.FieldEmail,
			Direction:   mapping.DirectionBoth,
			Transform:   mapping.TransformLowercase,
			Active:      true,
		},
		{
			SourceField: mapping.FieldFirstName,
			TargetField: mapping.FieldFirstName,
			Direction:   mapping.DirectionAToB,
			Transform:   mapping.TransformPassthrough,
			Active:      true,
		},
		{
			SourceField: mapping.FieldPhone,
			TargetField: mapping.FieldPhone,
			Direction:   mapping.DirectionBoth,
			Transform:   mapping.TransformPhoneE164,
			Active:      false,
		},
		{
			SourceField: mapping.FieldCompany,
			TargetField: mapping.FieldCompany,
			Direction:   mapping.DirectionBToA,
			Transform:   mapping.TransformPassthrough,
			Active:      true,
		},
	}

	flat := domain.FlatFields{
		mapping.FieldEmail:     "Ada@Example.COM",
		mapping.FieldFirstName: "Ada",
		mapping.FieldPhone:     "(555) 010-0123",
		mapping.FieldCompany:   "Analytical Engines",
	}

	out := mapping.MapToTarget(flat, rules, mapping.DirectionAToB)

	assert.Equal(t, domain.FlatFields{
		mapping.FieldEmail:     "ada@example.com",
		mapping.FieldFirstName: "Ada",
	}, out)
}

func TestMapToTargetOmitsEmptyValues(t *testing.T) {
	rules := []mapping.Rule{
		{
			SourceField: mapping.FieldNotes,
			TargetField: mapping.FieldNotes,
			Direction:   mapping.DirectionBoth,
			Transform:   mapping.TransformTrim,
			Active:      true,
		},
		{
			SourceField: mapping.FieldCity,
			TargetField: mapping.FieldCity,
			Direction:   mapping.DirectionBoth,
			Transform:   mapping.TransformPassthrough,
			Active:      true,
		},
	}

	flat := domain.FlatFields{
		mapping.FieldNotes: "   ",
		mapping.FieldCity:  "",
	}

	out := mapping.MapToTarget(flat, rules, mapping.DirectionBToA)
	assert.Empty(t, out)
}

func TestValidateRules(t *testing.T) {
	known := mapping.KnownFields(domain.SideA)

	tests := []struct {
		name    string
		rules   []mapping.Rule
		reasons []string
	}{
		{
			name: "valid rule set",
			rules: []mapping.Rule{
				{SourceField: mapping.FieldEmail, TargetField: mapping.FieldEmail, Direction: mapping.DirectionBoth, Active: true},
				{SourceField: mapping.FieldPhone, TargetField: mapping.FieldPhone, Direction: mapping.DirectionAToB, Active: true},
			},
			reasons: nil,
		},
		{
			name: "missing source field",
			rules: []mapping.Rule{
				{TargetField: mapping.FieldEmail, Direction: mapping.DirectionBoth, Active: true},
			},
			reasons: []string{"missing source field"},
		},
		{
			name: "missing target field",
			rules: []mapping.Rule{
				{SourceField: mapping.FieldEmail, Direction: mapping.DirectionBoth, Active: true},
			},
			reasons: []string{"missing target field"},
		},
		{
			name: "unknown source and target fields",
			rules: []mapping.Rule{
				{SourceField: "fax", TargetField: "pager", Direction: mapping.DirectionBoth, Active: true},
			},
			reasons: []string{"unknown source field", "unknown target field"},
		},
		{
			name: "duplicate target in same direction",
			rules: []mapping.Rule{
				{SourceField: mapping.FieldFirstName, TargetField: mapping.FieldNotes, Direction: mapping.DirectionAToB, Active: true},
				{SourceField: mapping.FieldLastName, TargetField: mapping.FieldNotes, Direction: mapping.DirectionAToB, Active: true},
			},
			reasons: []string{"duplicate target field in direction a_to_b (also mapped from \"first_name\")"},
		},
		{
			name: "both direction occupies both target slots",
			rules: []mapping.Rule{
				{SourceField: mapping.FieldFirstName, TargetField: mapping.FieldNotes, Direction: mapping.DirectionBoth, Active: true},
				{SourceField: mapping.FieldLastName, TargetField: mapping.FieldNotes, Direction: mapping.DirectionBToA, Active: true},
			},
			reasons: []string{"duplicate target field in direction b_to_a (also mapped from \"first_name\")"},
		},
		{
			name: "inactive rule does not reserve its target",
			rules: []mapping.Rule{
				{SourceField: mapping.FieldFirstName, TargetField: mapping.FieldNotes, Direction: mapping.DirectionAToB, Active: false},
				{SourceField: mapping.FieldLastName, TargetField: mapping.FieldNotes, Direction: mapping.DirectionAToB, Active: true},
			},
			reasons: nil,
		},
		{
			name: "same source may cover the same target in both directions",
			rules: []mapping.Rule{
				{SourceField: mapping.FieldEmail, TargetField: mapping.FieldEmail, Direction: mapping.DirectionAToB, Active: true},
				{SourceField: mapping.FieldEmail, TargetField: mapping.FieldEmail, Direction: mapping.DirectionBToA, Active: true},
			},
			reasons: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := mapping.ValidateRules(tt.rules, known, known)
			assert.Len(t, errs, len(tt.reasons))
			for i, reason := range tt.reasons {
				assert.Equal(t, reason, errs[i].Reason)
			}
		})
	}
}

func TestValidateRulesSkipsRegistryChecksWhenNil(t *testing.T) {
	rules := []mapping.Rule{
		{SourceField: "custom_field", TargetField: "custom_target", Direction: mapping.DirectionBoth, Active: true},
	}
	assert.Empty(t, mapping.ValidateRules(rules, nil, nil))
}
