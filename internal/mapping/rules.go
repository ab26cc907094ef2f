package mapping

import (
	"fmt"

	"github.com/crosslink-crm/crosslink/internal/domain"
)

// Direction constrains which way a rule applies
type Direction string

const (
	// DirectionAToB applies when mapping side-A fields onto side B
	DirectionAToB Direction = "a_to_b"
	// DirectionBToA applies when mapping side-B fields onto side A
	DirectionBToA Direction = "b_to_a"
	// DirectionBoth applies in either direction
	DirectionBoth Direction = "both"
)

// Includes reports whether a rule direction covers an effective direction.
// The effective direction is always one of DirectionAToB or DirectionBToA.
func (d Direction) Includes(effective Direction) bool {
	return d == DirectionBoth || d == effective
}

// EffectiveDirection returns the mapping direction for an inbound side
func EffectiveDirection(inbound domain.Side) Direction {
	if inbound == domain.SideA {
		return DirectionAToB
	}
	return DirectionBToA
}

// Rule translates one source field into one target field
type Rule struct {
	SourceField      string        `json:"source_field"`
	TargetField      string        `json:"target_field"`
	Direction        Direction     `json:"direction"`
	Transform        TransformKind `json:"transform"`
	Active           bool          `json:"active"`
	ProtectedDefault bool          `json:"protected_default"`
}

// RuleError describes one invalid rule; validation collects these
// instead of failing on the first problem.
type RuleError struct {
	SourceField string
	TargetField string
	Reason      string
}

// Error implements the error interface
func (e RuleError) Error() string {
	return fmt.Sprintf("rule %q -> %q: %s", e.SourceField, e.TargetField, e.Reason)
}

// MapToTarget applies the active rules covering the requested direction to
// a flat source field map. Fields whose transformed value is empty are
// omitted so the sync never writes empty strings over target data.
func MapToTarget(flat domain.FlatFields, rules []Rule, direction Direction) domain.FlatFields {
	out := make(domain.FlatFields)
	for _, rule := range rules {
		if !rule.Active || !rule.Direction.Includes(direction) {
			continue
		}
		value := ApplyTransform(flat[rule.SourceField], rule.Transform)
		if value == "" {
			continue
		}
		out[rule.TargetField] = value
	}
	return out
}

// ValidateRules checks a rule set and returns one error per problem found.
// The unknown-target check runs only when a known-target set is supplied;
// pass nil when the target side's field registry is unavailable.
func ValidateRules(rules []Rule, knownSources, knownTargets map[string]struct{}) []RuleError {
	var errs []RuleError

	// Track active target usage per effective direction to catch two
	// source fields racing to write the same target field. Bidirectional
	// rules occupy both directions.
	targets := map[Direction]map[string]string{
		DirectionAToB: {},
		DirectionBToA: {},
	}

	for _, rule := range rules {
		if rule.SourceField == "" {
			errs = append(errs, RuleError{
				SourceField: rule.SourceField,
				TargetField: rule.TargetField,
				Reason:      "missing source field",
			})
			continue
		}
		if rule.TargetField == "" {
			errs = append(errs, RuleError{
				SourceField: rule.SourceField,
				TargetField: rule.TargetField,
				Reason:      "missing target field",
			})
			continue
		}

		if knownSources != nil {
			if _, ok := knownSources[rule.SourceField]; !ok {
				errs = append(errs, RuleError{
					SourceField: rule.SourceField,
					TargetField: rule.TargetField,
					Reason:      "unknown source field",
				})
			}
		}
		if knownTargets != nil {
			if _, ok := knownTargets[rule.TargetField]; !ok {
				errs = append(errs, RuleError{
					SourceField: rule.SourceField,
					TargetField: rule.TargetField,
					Reason:      "unknown target field",
				})
			}
		}

		if !rule.Active {
			continue
		}

		for _, direction := range []Direction{DirectionAToB, DirectionBToA} {
			if !rule.Direction.Includes(direction) {
				continue
			}
			if previous, ok := targets[direction][rule.TargetField]; ok && previous != rule.SourceField {
				errs = append(errs, RuleError{
					SourceField: rule.SourceField,
					TargetField: rule.TargetField,
					Reason:      fmt.Sprintf("duplicate target field in direction %s (also mapped from %q)", direction, previous),
				})
				continue
			}
			targets[direction][rule.TargetField] = rule.SourceField
		}
	}

	return errs
}
