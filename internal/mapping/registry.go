package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crosslink-crm/crosslink/internal/domain"
)

// Canonical field names used by the flat field maps on both sides.
const (
	FieldEmail     = "email"
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldPhone     = "phone"
	FieldCompany   = "company"
	FieldJobTitle  = "job_title"
	FieldCity      = "city"
	FieldCountry   = "country"
	FieldNotes     = "notes"
)

// Extractor reads one candidate location of a raw record. Path segments
// descend nested maps; a numeric segment indexes into a slice. Candidate
// extractors for a field are evaluated in priority order and the first
// non-empty value wins.
type Extractor struct {
	Path []string
}

// Extract returns the string value at the extractor's path, or ""
func (e Extractor) Extract(raw map[string]interface{}) string {
	return LookupString(raw, e.Path...)
}

// LookupString descends a raw record along the given path and returns the
// value found as a trimmed string. Missing keys, nil values, and
// non-scalar leaves yield "".
func LookupString(raw map[string]interface{}, path ...string) string {
	var current interface{} = raw
	for _, segment := range path {
		switch node := current.(type) {
		case map[string]interface{}:
			current = node[segment]
		case []interface{}:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(node) {
				return ""
			}
			current = node[idx]
		default:
			return ""
		}
	}
	return stringify(current)
}

// stringify renders a scalar leaf value as a string
func stringify(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(value)
	case bool:
		return strconv.FormatBool(value)
	case float64:
		// JSON numbers decode as float64; render integers without exponent
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		return ""
	}
}

// sideARegistry lists candidate extractors per canonical field for side-A
// records. Side A nests current-shape values under "properties" and keeps
// legacy top-level names from its v1 API.
var sideARegistry = map[string][]Extractor{
	FieldEmail: {
		{Path: []string{"properties", "email"}},
		{Path: []string{"email"}},
	},
	FieldFirstName: {
		{Path: []string{"properties", "firstname"}},
		{Path: []string{"firstname"}},
		{Path: []string{"first_name"}},
	},
	FieldLastName: {
		{Path: []string{"properties", "lastname"}},
		{Path: []string{"lastname"}},
		{Path: []string{"last_name"}},
	},
	FieldPhone: {
		{Path: []string{"properties", "phone"}},
		{Path: []string{"properties", "mobilephone"}},
		{Path: []string{"phone"}},
	},
	FieldCompany: {
		{Path: []string{"properties", "company"}},
		{Path: []string{"company"}},
	},
	FieldJobTitle: {
		{Path: []string{"properties", "jobtitle"}},
		{Path: []string{"jobtitle"}},
	},
	FieldCity: {
		{Path: []string{"properties", "city"}},
		{Path: []string{"city"}},
	},
	FieldCountry: {
		{Path: []string{"properties", "country"}},
		{Path: []string{"country"}},
	},
	FieldNotes: {
		{Path: []string{"properties", "notes"}},
		{Path: []string{"notes"}},
	},
}

// sideBRegistry lists candidate extractors per canonical field for side-B
// records. Side B exposes addresses and phones as typed lists plus flat
// convenience fields on older payloads.
var sideBRegistry = map[string][]Extractor{
	FieldEmail: {
		{Path: []string{"email_addresses", "0", "address"}},
		{Path: []string{"emailAddress"}},
		{Path: []string{"email"}},
	},
	FieldFirstName: {
		{Path: []string{"given_name"}},
		{Path: []string{"givenName"}},
		{Path: []string{"first_name"}},
	},
	FieldLastName: {
		{Path: []string{"surname"}},
		{Path: []string{"family_name"}},
		{Path: []string{"last_name"}},
	},
	FieldPhone: {
		{Path: []string{"phones", "0", "number"}},
		{Path: []string{"businessPhones", "0"}},
		{Path: []string{"mobile_phone"}},
		{Path: []string{"phone"}},
	},
	FieldCompany: {
		{Path: []string{"company_name"}},
		{Path: []string{"companyName"}},
		{Path: []string{"organization"}},
	},
	FieldJobTitle: {
		{Path: []string{"job_title"}},
		{Path: []string{"jobTitle"}},
	},
	FieldCity: {
		{Path: []string{"addresses", "0", "city"}},
		{Path: []string{"city"}},
	},
	FieldCountry: {
		{Path: []string{"addresses", "0", "country"}},
		{Path: []string{"country"}},
	},
	FieldNotes: {
		{Path: []string{"personal_notes"}},
		{Path: []string{"notes"}},
	},
}

// registryFor returns the extractor registry for a side
func registryFor(side domain.Side) map[string][]Extractor {
	if side == domain.SideA {
		return sideARegistry
	}
	return sideBRegistry
}

// KnownFields returns the set of canonical field names for a side
func KnownFields(side domain.Side) map[string]struct{} {
	registry := registryFor(side)
	known := make(map[string]struct{}, len(registry))
	for field := range registry {
		known[field] = struct{}{}
	}
	return known
}

// Flatten normalizes a raw, system-specific record into a flat canonical
// field map. Every registered field is present in the output; fields with
// no non-empty candidate default to "".
func Flatten(raw map[string]interface{}, side domain.Side) domain.FlatFields {
	registry := registryFor(side)
	flat := make(domain.FlatFields, len(registry))
	for field, extractors := range registry {
		flat[field] = ""
		for _, extractor := range extractors {
			if value := extractor.Extract(raw); value != "" {
				flat[field] = value
				break
			}
		}
	}
	return flat
}

// updatedAtPaths lists where each side's records surface the
// last-modified timestamp.
var updatedAtPaths = map[domain.Side][]Extractor{
	domain.SideA: {
		{Path: []string{"properties", "lastmodifieddate"}},
		{Path: []string{"updated_at"}},
		{Path: []string{"updatedAt"}},
	},
	domain.SideB: {
		{Path: []string{"last_modified_date_time"}},
		{Path: []string{"lastModifiedDateTime"}},
		{Path: []string{"updated_at"}},
	},
}

// ExtractUpdatedAt pulls the last-modified timestamp out of a raw record,
// "" when the side reports none.
func ExtractUpdatedAt(raw map[string]interface{}, side domain.Side) string {
	for _, ex := range updatedAtPaths[side] {
		if v := ex.Extract(raw); v != "" {
			return v
		}
	}
	return ""
}

// FieldRef renders an extractor path for diagnostics
func FieldRef(path []string) string {
	return fmt.Sprintf("$.%s", strings.Join(path, "."))
}
