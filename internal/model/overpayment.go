package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loan-overpay/internal/calendar"
)

// OverpaymentKind distinguishes single charges from repeating ones.
// Keep these values stable; they are part of the JSON body pushed to sheets.
type OverpaymentKind string

const (
	OneTime   OverpaymentKind = "one-time"
	Recurring OverpaymentKind = "recurring"
)

var (
	ErrMissingID         = errors.New("overpayment id is required")
	ErrUnknownKind       = errors.New("overpayment type must be one-time or recurring")
	ErrMissingDate       = errors.New("overpayment date is required")
	ErrInvalidOverAmount = errors.New("overpayment amount must be > 0")
)

// OverpaymentEvent is an extra principal payment configured by the user.
//
// Date is nil when it was absent or could not be parsed; such events are
// kept (so they round-trip) but never match a month. RawDate holds the
// original text in that case.
type OverpaymentEvent struct {
	ID             string
	Kind           OverpaymentKind
	Date           *time.Time
	RawDate        string
	Amount         float64
	IntervalMonths int
}

// NewOneTime builds a dated one-time overpayment.
func NewOneTime(id string, date time.Time, amount float64) OverpaymentEvent {
	return OverpaymentEvent{ID: id, Kind: OneTime, Date: &date, Amount: amount}
}

// Validate is used at input boundaries. The matcher never rejects events.
func (e OverpaymentEvent) Validate() error {
	if e.ID == "" {
		return ErrMissingID
	}
	switch e.Kind {
	case OneTime, Recurring:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	if e.Date == nil {
		if e.RawDate != "" {
			return fmt.Errorf("overpayment %s: invalid date %q", e.ID, e.RawDate)
		}
		return fmt.Errorf("overpayment %s: %w", e.ID, ErrMissingDate)
	}
	if e.Amount <= 0 {
		return fmt.Errorf("overpayment %s: %w", e.ID, ErrInvalidOverAmount)
	}
	if e.IntervalMonths < 0 {
		return fmt.Errorf("overpayment %s: interval must be >= 0", e.ID)
	}
	return nil
}

// DateString renders the event date as YYYY-MM-DD, or the raw text when the
// date could not be parsed.
func (e OverpaymentEvent) DateString() string {
	if e.Date == nil {
		return e.RawDate
	}
	return calendar.FormatDate(*e.Date)
}

// overpaymentWire is the JSON/YAML shape: the same body the spreadsheet
// endpoint receives.
type overpaymentWire struct {
	ID             string          `json:"id" yaml:"id"`
	Kind           OverpaymentKind `json:"type" yaml:"type"`
	Date           string          `json:"date,omitempty" yaml:"date,omitempty"`
	Amount         Amount          `json:"amount" yaml:"amount"`
	IntervalMonths int             `json:"intervalMonths,omitempty" yaml:"interval_months,omitempty"`
}

func (e OverpaymentEvent) toWire() overpaymentWire {
	return overpaymentWire{
		ID:             e.ID,
		Kind:           e.Kind,
		Date:           e.DateString(),
		Amount:         Amount(e.Amount),
		IntervalMonths: e.IntervalMonths,
	}
}

func (w overpaymentWire) toEvent() OverpaymentEvent {
	e := OverpaymentEvent{
		ID:             w.ID,
		Kind:           w.Kind,
		Amount:         float64(w.Amount),
		IntervalMonths: w.IntervalMonths,
	}
	if e.Kind == "" {
		e.Kind = OneTime
	}
	if w.Date != "" {
		if t, err := calendar.ParseDate(w.Date); err == nil {
			e.Date = &t
		} else {
			e.RawDate = w.Date
		}
	}
	return e
}

func (e OverpaymentEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.toWire())
}

func (e *OverpaymentEvent) UnmarshalJSON(raw []byte) error {
	var w overpaymentWire
	if err := json.Unmarshal(raw, &w); err != nil {
		return err
	}
	*e = w.toEvent()
	return nil
}

func (e OverpaymentEvent) MarshalYAML() (any, error) {
	return e.toWire(), nil
}

func (e *OverpaymentEvent) UnmarshalYAML(unmarshal func(any) error) error {
	var w overpaymentWire
	if err := unmarshal(&w); err != nil {
		return err
	}
	*e = w.toEvent()
	return nil
}
