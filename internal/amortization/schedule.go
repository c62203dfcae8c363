package amortization

import (
	"time"
)

// ScheduleEntry is one simulated month.
// This is the primary artifact for "what happened" in a simulation.
type ScheduleEntry struct {
	Index int // 1-based
	Date  time.Time

	PrincipalStart float64

	// Installment is what was actually charged; on the final period it is
	// principal + interest, which may be below the nominal installment.
	Installment   float64
	Interest      float64
	PrincipalPart float64
	Overpayment   float64

	PrincipalEnd float64
	IsOverpaid   bool
}

// Projection is the output of a single projector run.
type Projection struct {
	Schedule      []ScheduleEntry
	TotalInterest float64
	// Converged is false when the safety cap stopped the loop with principal
	// still outstanding.
	Converged bool
}

// Months is the number of simulated periods.
func (p Projection) Months() int { return len(p.Schedule) }

// EndDate returns the date of the last entry, or fallback for an empty schedule.
func (p Projection) EndDate(fallback time.Time) time.Time {
	if len(p.Schedule) == 0 {
		return fallback
	}
	return p.Schedule[len(p.Schedule)-1].Date
}

// Residual is the principal left after the last entry.
func (p Projection) Residual() float64 {
	if len(p.Schedule) == 0 {
		return 0
	}
	return p.Schedule[len(p.Schedule)-1].PrincipalEnd
}

// Summary is the condensed view of a projection.
type Summary struct {
	Months        int
	TotalInterest float64
	EndDate       time.Time
	Converged     bool
}

// SimulationResult compares the actual schedule (with overpayments) against
// the baseline (as originally contracted).
type SimulationResult struct {
	Schedule        []ScheduleEntry
	TotalInterest   float64
	TotalCost       float64
	EndDate         time.Time
	MonthsSaved     int
	InterestSaved   float64
	OriginalEndDate time.Time

	Baseline  Summary
	Converged bool
	Warnings  []string
}
