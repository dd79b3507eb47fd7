package parse

import (
	"regexp"
	"strconv"
	"strings"

	"ValuPull/internal/domain/models"
)

// numberToken matches a decimal number with optional thousands separators and
// an optional fractional part, e.g. "1,234,567.89".
var numberToken = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// FirstNumber finds the first decimal-number token in s, strips the thousands
// separators and parses it as a float. ok is false when no token parses.
func FirstNumber(s string) (float64, bool) {
	m := numberToken.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// InBounds reports whether v is a plausible valuation amount. The bounds guard
// against misparsed tokens (phone numbers, years, huge concatenations).
func InBounds(v float64) bool {
	return v > models.MinAmount && v < models.MaxAmount
}

// ContainsSentinel reports whether s carries the provider's "no data" token.
// Matching is case-insensitive and tolerates the spaced variant.
func ContainsSentinel(s string) bool {
	u := strings.ToUpper(s)
	return strings.Contains(u, "NOT_AVAILABLE") || strings.Contains(u, "NOT AVAILABLE")
}
