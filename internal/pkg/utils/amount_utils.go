package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a token uiAmountString. Empty or malformed strings are reported as not ok.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// IsPositiveAmount reports whether s parses to a number strictly greater than zero.
func IsPositiveAmount(s string) bool {
	d, ok := ParseAmount(s)
	return ok && d.IsPositive()
}

// SumAmounts adds up amount strings, skipping the ones that do not parse.
func SumAmounts(amounts []string) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		if d, ok := ParseAmount(a); ok {
			total = total.Add(d)
		}
	}
	return total
}
