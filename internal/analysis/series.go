package analysis

import (
	"time"

	"loan-overpay/internal/amortization"
)

// DefaultMaxPoints keeps charts readable for long schedules.
const DefaultMaxPoints = 50

// BalancePoint is the outstanding principal after one period.
type BalancePoint struct {
	Index   int
	Date    time.Time
	Balance float64
}

// BalanceSeries downsamples the schedule to at most maxPoints points by
// keeping every ceil(n/maxPoints)-th entry, starting with the first.
func BalanceSeries(schedule []amortization.ScheduleEntry, maxPoints int) []BalancePoint {
	if len(schedule) == 0 {
		return nil
	}
	if maxPoints <= 0 {
		maxPoints = DefaultMaxPoints
	}
	stride := (len(schedule) + maxPoints - 1) / maxPoints

	out := make([]BalancePoint, 0, maxPoints)
	for i := 0; i < len(schedule); i += stride {
		e := schedule[i]
		out = append(out, BalancePoint{Index: e.Index, Date: e.Date, Balance: e.PrincipalEnd})
	}
	return out
}

// YearTotal aggregates one calendar year of the schedule.
type YearTotal struct {
	Year        int
	Months      int
	Paid        float64 // installments actually charged
	Interest    float64
	Principal   float64 // scheduled principal, overpayments excluded
	Overpayment float64
	EndBalance  float64
}

// YearlyTotals groups the schedule by calendar year, in schedule order.
func YearlyTotals(schedule []amortization.ScheduleEntry) []YearTotal {
	var out []YearTotal
	for _, e := range schedule {
		y := e.Date.Year()
		if len(out) == 0 || out[len(out)-1].Year != y {
			out = append(out, YearTotal{Year: y})
		}
		t := &out[len(out)-1]
		t.Months++
		t.Paid += e.Installment
		t.Interest += e.Interest
		t.Principal += e.PrincipalPart
		t.Overpayment += e.Overpayment
		t.EndBalance = e.PrincipalEnd
	}
	return out
}
