package calendar

import (
	"fmt"
	"time"
)

// DateLayout is the wire and storage format for calendar dates.
const DateLayout = "2006-01-02"

// AddMonths behaves like Excel's EDATE: it moves t by n calendar months and
// clamps the day to the last valid day of the target month, so Jan 31 + 1
// month is Feb 28 (or 29). Clock time and location are preserved.
func AddMonths(t time.Time, n int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	day := t.Day()
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SameMonth reports whether a and b fall in the same (year, month).
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// OnOrAfterMonth reports whether t's (year, month) is the same as or later
// than ref's. Days are ignored.
func OnOrAfterMonth(t, ref time.Time) bool {
	return monthOrdinal(t) >= monthOrdinal(ref)
}

// MonthsBetween returns the whole-month distance from a to b using only the
// (year, month) pairs. Negative when b is before a.
func MonthsBetween(a, b time.Time) int {
	return monthOrdinal(b) - monthOrdinal(a)
}

// MonthStart returns midnight on the first day of t's month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func monthOrdinal(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// ParseDate parses a YYYY-MM-DD string as a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as YYYY-MM-DD. The zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
