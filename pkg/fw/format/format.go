// Package format renders money, gains and percentages the way every
// surface of the fund list shows them.
package format

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Missing stands in for values that are unknown or not applicable.
const Missing = "--"

var printer = message.NewPrinter(language.Chinese)

// Money formats v with two decimals and thousands separators.
func Money(v float64) string {
	return printer.Sprintf("%.2f", clean(v))
}

// Signed formats v with two decimals and an explicit "+" for v >= 0.
func Signed(v float64) string {
	v = clean(v)
	if v >= 0 {
		return fmt.Sprintf("+%.2f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// Percent is Signed with a trailing "%".
func Percent(v float64) string {
	return Signed(v) + "%"
}

// NAV formats a per-share value with four decimals, or Missing.
func NAV(v *float64) string {
	if v == nil {
		return Missing
	}
	return fmt.Sprintf("%.4f", *v)
}

// Cost formats a cost basis, or Missing when there is none.
func Cost(v float64) string {
	if v <= 0 {
		return Missing
	}
	return fmt.Sprintf("%.4f", v)
}

// Sign is 1, -1 or 0 by the sign of v.
func Sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Dot is a colored marker: red up, green down, white flat.
func Dot(v float64) string {
	switch Sign(v) {
	case 1:
		return "🔴"
	case -1:
		return "🟢"
	default:
		return "⚪"
	}
}

// Clock trims a "2006-01-02 15:04" timestamp to its time part. Dates and
// markers are returned as is.
func Clock(ts string) string {
	if ts == "" {
		return Missing
	}
	if len(ts) > 11 && ts[10] == ' ' {
		return ts[11:]
	}
	return ts
}

// clean turns negative zero into zero.
func clean(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
