package mapping

import "strings"

// TransformKind identifies a per-field value transform
type TransformKind string

const (
	// TransformPassthrough copies the value unchanged
	TransformPassthrough TransformKind = "passthrough"
	// TransformTrim strips surrounding whitespace
	TransformTrim TransformKind = "trim"
	// TransformLowercase lowercases the value
	TransformLowercase TransformKind = "lowercase"
	// TransformUppercase uppercases the value
	TransformUppercase TransformKind = "uppercase"
	// TransformPhoneE164 normalizes a phone number to E.164
	TransformPhoneE164 TransformKind = "phone_e164"
)

// ApplyTransform applies a value transform. Empty input yields empty
// output for every kind; unknown kinds behave as passthrough.
func ApplyTransform(value string, kind TransformKind) string {
	if value == "" {
		return ""
	}

	switch kind {
	case TransformTrim:
		return strings.TrimSpace(value)
	case TransformLowercase:
		return strings.ToLower(value)
	case TransformUppercase:
		return strings.ToUpper(value)
	case TransformPhoneE164:
		return phoneToE164(value)
	default:
		return value
	}
}

// phoneToE164 strips non-digits and renders a +-prefixed number,
// prepending the country code 1 unless the digits already start with it
func phoneToE164(value string) string {
	var digits strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	number := digits.String()
	if number == "" {
		return ""
	}
	if !strings.HasPrefix(number, "1") {
		number = "1" + number
	}
	return "+" + number
}
