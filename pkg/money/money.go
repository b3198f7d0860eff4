package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts serialize as bare JSON numbers so exports stay readable by
// spreadsheet tooling and round-trip with historical data files.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Parse converts free-form user input to a decimal amount. Missing or
// non-numeric input coerces to zero instead of failing; form fields are
// validated upstream, so a zero here is the documented lenient default.
func Parse(raw string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds to 2 decimal places. Only display/serialization
// boundaries round; intermediate arithmetic keeps full precision.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// NonNegative clamps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
