// Package format renders product values for display.
package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PricePrefix is the currency marker shown before every formatted price.
const PricePrefix = "₹. "

var (
	printer  = message.NewPrinter(language.English)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

// FormatPrice groups the integer digits of value in threes from the right,
// separated by commas: 1234567 becomes "1,234,567", 100 stays "100".
// A fractional part is appended with the digits value carries, trailing
// zeros included: 1000.50 becomes "1,000.50".
func FormatPrice(value decimal.Decimal) string {
	sign := ""
	if value.IsNegative() {
		sign = "-"
		value = value.Abs()
	}

	whole := value.Truncate(0)
	var grouped string
	if whole.LessThanOrEqual(maxInt64) {
		grouped = printer.Sprintf("%d", whole.IntPart())
	} else {
		grouped = groupDigits(whole.String())
	}

	if exp := value.Exponent(); exp < 0 {
		if _, frac, ok := strings.Cut(value.StringFixed(-exp), "."); ok {
			return sign + grouped + "." + frac
		}
	}
	return sign + grouped
}

// FormatInt is FormatPrice for plain integers.
func FormatInt(n int64) string {
	return FormatPrice(decimal.NewFromInt(n))
}

// groupDigits handles values beyond int64.
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
