package amortization

import (
	"math"

	"loan-overpay/internal/calendar"
	"loan-overpay/internal/model"
	"loan-overpay/internal/overpay"
)

const (
	// Epsilon is the outstanding principal treated as paid off.
	Epsilon = 0.01
	// SafetyCap bounds the schedule at 100 years of monthly periods.
	SafetyCap = 1200
)

type Engine struct{}

func New() *Engine { return &Engine{} }

// Project runs the month-stepping loop for cfg. extra supplies the
// overpayment due in each simulated month; nil means none.
//
// The installment is assumed to cover interest. When it does not, the
// scheduled principal reduction is clamped to zero rather than capitalizing
// the shortfall, and the loop ends at SafetyCap with Converged=false.
func (e *Engine) Project(cfg model.LoanConfig, extra overpay.Matcher) Projection {
	if extra == nil {
		extra = overpay.None
	}

	schedule := make([]ScheduleEntry, 0, estimateMonths(cfg))
	principal := cfg.Amount
	date := cfg.StartDate
	totalInterest := 0.0

	for idx := 1; principal > Epsilon && idx <= SafetyCap; idx++ {
		interest := principal * (cfg.InterestRate / 100) / 12
		principalPart := math.Max(0, cfg.Installment-interest)
		over := extra(date)

		charged := cfg.Installment
		if principal+interest < cfg.Installment {
			principalPart = principal
			charged = principal + interest
		}

		principalEnd := math.Max(0, principal-principalPart-over)

		schedule = append(schedule, ScheduleEntry{
			Index:          idx,
			Date:           date,
			PrincipalStart: principal,
			Installment:    charged,
			Interest:       interest,
			PrincipalPart:  principalPart,
			Overpayment:    over,
			PrincipalEnd:   principalEnd,
			IsOverpaid:     over > 0,
		})

		totalInterest += interest
		principal = principalEnd
		date = calendar.AddMonths(date, 1)
	}

	return Projection{
		Schedule:      schedule,
		TotalInterest: totalInterest,
		Converged:     principal <= Epsilon,
	}
}

// estimateMonths sizes the schedule slice from the closed-form annuity term.
// It only affects allocation, never the result.
func estimateMonths(cfg model.LoanConfig) int {
	if cfg.Amount <= 0 || cfg.Installment <= 0 {
		return 0
	}
	r := cfg.InterestRate / 100 / 12
	var n float64
	switch {
	case r == 0:
		n = cfg.Amount / cfg.Installment
	case cfg.Installment > cfg.Amount*r:
		n = -math.Log(1-cfg.Amount*r/cfg.Installment) / math.Log(1+r)
	default:
		return SafetyCap
	}
	if n > SafetyCap || math.IsNaN(n) {
		return SafetyCap
	}
	return int(n) + 1
}
