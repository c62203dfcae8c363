package model

import (
	"errors"
	"time"
)

var (
	ErrInvalidAmount      = errors.New("amount must be > 0")
	ErrInvalidRate        = errors.New("interest rate must be >= 0")
	ErrInvalidInstallment = errors.New("installment must be > 0")
	ErrMissingStartDate   = errors.New("start date is required")
)

// LoanConfig defines the contracted loan.
// Units:
// - Amount, Installment: currency units
// - InterestRate: nominal annual rate in percent (12.5 = 12.5%)
// - StartDate: due date of the first installment
type LoanConfig struct {
	Amount       float64
	InterestRate float64
	Installment  float64
	StartDate    time.Time
}

// Validate checks the preconditions of a simulation. The engine itself never
// calls it; boundaries (config loader, API, store) do.
func (c LoanConfig) Validate() error {
	if c.Amount <= 0 {
		return ErrInvalidAmount
	}
	if c.InterestRate < 0 {
		return ErrInvalidRate
	}
	if c.Installment <= 0 {
		return ErrInvalidInstallment
	}
	if c.StartDate.IsZero() {
		return ErrMissingStartDate
	}
	return nil
}

// MonthlyRate is the periodic rate applied to the outstanding principal.
func (c LoanConfig) MonthlyRate() float64 {
	return c.InterestRate / 100 / 12
}

// CoversInterest reports whether the installment exceeds the first month's
// interest. When it doesn't, the baseline can never amortize.
func (c LoanConfig) CoversInterest() bool {
	return c.Installment > c.Amount*c.MonthlyRate()
}
