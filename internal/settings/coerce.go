package settings

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rovshanmuradov/prometheus-client/internal/amount"
)

// Form input follows two distinct coercion policies. Required numeric fields
// fall back to 0 when the text does not parse. Optional caps fall back to
// "unset" (nil) so the backend can tell "no cap" from "cap of zero".

var intPrefix = regexp.MustCompile(`^[+-]?\d+`)

// FloatOrZero parses the leading number in raw. Anything unparseable,
// including NaN and infinities, becomes 0.
func FloatOrZero(raw string) float64 {
	v, _ := amount.LeadingFloat(raw)
	return v
}

// IntOrZero parses the leading integer in raw, or returns 0
func IntOrZero(raw string) int {
	v, ok := leadingInt(raw)
	if !ok {
		return 0
	}
	return v
}

// OptionalInt parses the leading integer in raw. Empty or unparseable text
// means the value is unset.
func OptionalInt(raw string) *int {
	v, ok := leadingInt(raw)
	if !ok {
		return nil
	}
	return &v
}

// FormatOptionalInt renders an optional cap for a text input
func FormatOptionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// FormatFloat renders a number without a trailing ".0"
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func leadingInt(raw string) (int, bool) {
	m := intPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return v, true
}
