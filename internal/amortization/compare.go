package amortization

import (
	"fmt"
	"math"
	"time"

	"loan-overpay/internal/model"
	"loan-overpay/internal/overpay"
)

// Compare combines the baseline and actual projections into savings metrics.
// Savings are clamped at zero even if overpayments somehow lengthen the term.
func Compare(cfg model.LoanConfig, baseline, actual Projection) SimulationResult {
	res := SimulationResult{
		Schedule:        actual.Schedule,
		TotalInterest:   actual.TotalInterest,
		TotalCost:       cfg.Amount + actual.TotalInterest,
		EndDate:         actual.EndDate(cfg.StartDate),
		MonthsSaved:     max(0, baseline.Months()-actual.Months()),
		InterestSaved:   math.Max(0, baseline.TotalInterest-actual.TotalInterest),
		OriginalEndDate: baseline.EndDate(cfg.StartDate),
		Baseline: Summary{
			Months:        baseline.Months(),
			TotalInterest: baseline.TotalInterest,
			EndDate:       baseline.EndDate(cfg.StartDate),
			Converged:     baseline.Converged,
		},
		Converged: baseline.Converged && actual.Converged,
	}
	if !baseline.Converged {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"baseline does not amortize within %d months: residual principal %.2f", SafetyCap, baseline.Residual()))
	}
	if !actual.Converged {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"schedule does not amortize within %d months: residual principal %.2f", SafetyCap, actual.Residual()))
	}
	return res
}

// Simulate is the primary entry point: it projects the loan once with no
// overpayments (baseline) and once with the configured ones, then compares.
//
// now decides which months the flat recurring amount applies to. cfg is not
// validated; see model.LoanConfig.Validate.
func (e *Engine) Simulate(cfg model.LoanConfig, overpayments []model.OverpaymentEvent, recurringMonthlyAmount float64, now time.Time) SimulationResult {
	baseline := e.Project(cfg, overpay.None)
	actual := e.Project(cfg, overpay.For(overpayments, recurringMonthlyAmount, now))
	return Compare(cfg, baseline, actual)
}

// Simulate runs a simulation on a fresh engine.
func Simulate(cfg model.LoanConfig, overpayments []model.OverpaymentEvent, recurringMonthlyAmount float64, now time.Time) SimulationResult {
	return New().Simulate(cfg, overpayments, recurringMonthlyAmount, now)
}
