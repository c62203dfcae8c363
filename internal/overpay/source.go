package overpay

import (
	"time"

	"loan-overpay/internal/calendar"
)

// Source is one stream of extra principal payments.
type Source interface {
	Name() string
	// Contribution returns the extra principal due in the calendar month
	// containing month. Only (year, month) is significant.
	Contribution(month time.Time) float64
}

// OneTimeSource pays Amount once, in the month containing Date.
type OneTimeSource struct {
	Date   time.Time
	Amount float64
}

func (s OneTimeSource) Name() string { return "one-time" }

func (s OneTimeSource) Contribution(month time.Time) float64 {
	if calendar.SameMonth(month, s.Date) {
		return s.Amount
	}
	return 0
}

// FromMonthSource pays Amount every month from Start's month onward.
// The flat recurring amount is a FromMonthSource anchored at "now", so it
// never applies to months already in the past.
type FromMonthSource struct {
	Start  time.Time
	Amount float64
}

func (s FromMonthSource) Name() string { return "from-month" }

func (s FromMonthSource) Contribution(month time.Time) float64 {
	if calendar.OnOrAfterMonth(month, s.Start) {
		return s.Amount
	}
	return 0
}

// IntervalSource pays Amount in Start's month and then every Every months.
// Every <= 0 is treated as monthly.
type IntervalSource struct {
	Start  time.Time
	Every  int
	Amount float64
}

func (s IntervalSource) Name() string { return "interval" }

func (s IntervalSource) Contribution(month time.Time) float64 {
	every := s.Every
	if every <= 0 {
		every = 1
	}
	n := calendar.MonthsBetween(s.Start, month)
	if n < 0 || n%every != 0 {
		return 0
	}
	return s.Amount
}
