// internal/amount/number.go
package amount

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// LeadingFloat reads the number at the start of raw and ignores whatever
// follows it, so "50%" is 50 and "12abc" is 12. It reports false when raw
// does not start with a finite number.
func LeadingFloat(raw string) (float64, bool) {
	m := floatPrefix.FindString(strings.TrimSpace(raw))
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
