// Package money converts between decimal amount strings and integer cents.
// All balances and amounts are stored as int64 cents; parsing never goes
// through a float.
package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseCents parses a decimal string such as "42.50" into cents.
// Thousands separators are tolerated. Amounts with more than two decimal
// places are rejected rather than rounded.
func ParseCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	shifted := d.Shift(2)
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("amount %q has more than two decimal places", s)
	}
	return shifted.IntPart(), nil
}

// FormatCents renders cents as a plain two-decimal string, e.g. -4250 -> "-42.50".
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
