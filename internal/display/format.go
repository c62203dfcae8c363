// Package display renders amounts and dates the way the Polish UI shows them.
package display

import (
	"strings"

	"loan-overpay/internal/calendar"

	"github.com/shopspring/decimal"
)

const nbsp = "\u00a0"

// Currency formats v as PLN in pl-PL style: "65 000,00 zł" with
// non-breaking spaces. Four-digit amounts are not grouped ("1005,06 zł").
func Currency(v float64) string {
	return Number(v) + nbsp + "zł"
}

// Number formats v with two decimals, a decimal comma and pl-PL grouping.
func Number(v float64) string {
	s := decimal.NewFromFloat(v).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")

	if len(intPart) >= 5 {
		var b strings.Builder
		lead := len(intPart) % 3
		if lead > 0 {
			b.WriteString(intPart[:lead])
		}
		for i := lead; i < len(intPart); i += 3 {
			if b.Len() > 0 {
				b.WriteString(nbsp)
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	out := intPart + "," + frac
	if neg && out != "0,00" {
		out = "-" + out
	}
	return out
}

// Date turns "YYYY-MM-DD" into "dd.MM.yyyy". Input that does not parse is
// returned unchanged.
func Date(s string) string {
	t, err := calendar.ParseDate(s)
	if err != nil {
		return s
	}
	return t.Format("02.01.2006")
}
