package models

import (
	"loan-overpay/internal/model"
)

// LoanRequest is a loan as entered in the UI.
type LoanRequest struct {
	Amount       Amount  `json:"amount" binding:"gt=0"`
	InterestRate float64 `json:"interestRate" binding:"gte=0"`
	Installment  Amount  `json:"installment" binding:"gt=0"`
	StartDate    string  `json:"startDate" binding:"required"` // YYYY-MM-DD
}

// SimulateRequest represents the request body for POST /simulate
type SimulateRequest struct {
	Loan                   LoanRequest              `json:"loan"`
	Overpayments           []model.OverpaymentEvent `json:"overpayments,omitempty"`
	RecurringMonthlyAmount Amount                   `json:"recurringMonthlyAmount" binding:"gte=0"`
	Now                    string                   `json:"now,omitempty"` // YYYY-MM-DD, default: server clock
	Options                SimulateOptions          `json:"options,omitempty"`
}

type SimulateOptions struct {
	OmitSchedule bool `json:"omitSchedule,omitempty"`
}

// CompareRequest runs the base scenario plus each variation.
type CompareRequest struct {
	Base       SimulateRequest    `json:"base"`
	Variations []VariationRequest `json:"variations" binding:"required,min=1,dive"`
}

// VariationRequest mirrors analysis.Variation.
type VariationRequest struct {
	Name   string  `json:"name" binding:"required"`
	Kind   string  `json:"kind" binding:"required,oneof=recurring once installment"`
	Amount Amount `json:"amount" binding:"gt=0"`
	Date   string `json:"date,omitempty"` // required for kind=once
}

// RecurringRequest is the body of PUT /state/recurring
type RecurringRequest struct {
	Amount Amount `json:"amount"`
}

// SheetURLRequest is the body of PUT /state/sheet-url; empty disables pushes.
type SheetURLRequest struct {
	URL string `json:"url"`
}

// OverpaymentRequest is the body of POST /overpayments
type OverpaymentRequest struct {
	ID             string `json:"id,omitempty"` // assigned by the store when empty
	Date           string `json:"date" binding:"required"`
	Amount         Amount `json:"amount"`
	Type           string `json:"type,omitempty" binding:"omitempty,oneof=one-time recurring"`
	IntervalMonths int    `json:"intervalMonths,omitempty" binding:"gte=0"`
}

// Amount accepts a JSON number or a string as typed by the user
// ("10 500,00").
type Amount = model.Amount
