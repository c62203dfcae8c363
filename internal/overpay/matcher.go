package overpay

import (
	"time"

	"loan-overpay/internal/model"
)

// Matcher returns the extra principal due in the month containing a
// simulated payment date.
type Matcher func(month time.Time) float64

// None never pays anything extra. Used for the baseline projection.
func None(time.Time) float64 { return 0 }

// Sources converts configured events and the flat recurring amount into
// extra payment sources. now anchors the flat recurring amount; it is passed
// in rather than read from the clock so simulations stay reproducible.
//
// Events that cannot be matched (no date, non-positive amount, unknown type)
// are skipped.
func Sources(events []model.OverpaymentEvent, recurring float64, now time.Time) []Source {
	out := make([]Source, 0, len(events)+1)
	// Summation order is part of the reproducible output: flat amount first,
	// then events in list order.
	if recurring > 0 {
		out = append(out, FromMonthSource{Start: now, Amount: recurring})
	}
	for _, ev := range events {
		if ev.Date == nil || ev.Amount <= 0 {
			continue
		}
		switch ev.Kind {
		case model.OneTime:
			out = append(out, OneTimeSource{Date: *ev.Date, Amount: ev.Amount})
		case model.Recurring:
			out = append(out, IntervalSource{Start: *ev.Date, Every: ev.IntervalMonths, Amount: ev.Amount})
		}
	}
	return out
}

// Combine sums the contributions of every source.
func Combine(sources ...Source) Matcher {
	return func(month time.Time) float64 {
		total := 0.0
		for _, s := range sources {
			total += s.Contribution(month)
		}
		return total
	}
}

// MatchMonth computes the total extra principal due in current's month:
// every one-time event dated in that month, every recurring event falling on
// that month, plus recurring when current is in or after now's month.
func MatchMonth(current time.Time, events []model.OverpaymentEvent, recurring float64, now time.Time) float64 {
	return Combine(Sources(events, recurring, now)...)(current)
}

// For builds the matcher used by a simulation.
func For(events []model.OverpaymentEvent, recurring float64, now time.Time) Matcher {
	sources := Sources(events, recurring, now)
	if len(sources) == 0 {
		return None
	}
	return Combine(sources...)
}
