// Package store persists the user's loan inputs between sessions.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("overpayment not found")
	ErrDuplicateID    = errors.New("overpayment id already exists")
	ErrNegativeAmount = errors.New("recurring amount must be >= 0")
	ErrUnknownBackend = errors.New("unknown store backend")
)

// State is everything a simulation of the saved loan needs, apart from "now".
type State struct {
	Loan            model.LoanConfig
	Overpayments    []model.OverpaymentEvent
	RecurringAmount float64
	SheetURL        string
}

type Store interface {
	Load(ctx context.Context) (State, error)
	SaveLoan(ctx context.Context, loan model.LoanConfig) error
	// AddOverpayment stores ev, assigning a fresh id when ev.ID is empty,
	// and returns the stored event.
	AddOverpayment(ctx context.Context, ev model.OverpaymentEvent) (model.OverpaymentEvent, error)
	RemoveOverpayment(ctx context.Context, id string) error
	SetRecurring(ctx context.Context, amount float64) error
	SetSheetURL(ctx context.Context, url string) error
	Close() error
}

// Open returns the store for backend ("file" or "sqlite") at path.
func Open(backend, path string, logger *log.Logger) (Store, error) {
	switch backend {
	case "file":
		return NewFileStore(path, logger)
	case "sqlite":
		return NewSQLiteStore(path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// DefaultState is what a fresh store starts with.
func DefaultState() State {
	d := func(y int, m time.Month, day int) time.Time { return time.Date(y, m, day, 0, 0, 0, 0, time.UTC) }
	return State{
		Loan: model.LoanConfig{
			Amount:       65000,
			InterestRate: 12.5,
			Installment:  1005.06,
			StartDate:    d(2024, 8, 21),
		},
		Overpayments: []model.OverpaymentEvent{
			model.NewOneTime("1", d(2025, 4, 21), 10500),
			model.NewOneTime("2", d(2025, 5, 21), 1500),
			model.NewOneTime("3", d(2025, 10, 21), 1500),
			model.NewOneTime("4", d(2025, 11, 21), 5500),
		},
	}
}

// SortOverpayments orders events by date, dateless ones last. Ties keep
// insertion order.
func SortOverpayments(evs []model.OverpaymentEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		a, b := evs[i].Date, evs[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}

// prepareOverpayment assigns an id if needed and validates the result.
func prepareOverpayment(ev model.OverpaymentEvent) (model.OverpaymentEvent, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Kind == "" {
		ev.Kind = model.OneTime
	}
	if err := ev.Validate(); err != nil {
		return ev, err
	}
	return ev, nil
}
