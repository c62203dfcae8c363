package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"loan-overpay/internal/calendar"
	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
)

// fileState is the JSON document on disk.
type fileState struct {
	Loan            fileLoan                 `json:"loan"`
	Overpayments    []model.OverpaymentEvent `json:"overpayments"`
	RecurringAmount float64                  `json:"recurring_amount"`
	SheetURL        string                   `json:"sheet_url,omitempty"`
	UpdatedAt       string                   `json:"updated_at"` // RFC 3339
}

type fileLoan struct {
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interest_rate"`
	Installment  float64 `json:"installment"`
	StartDate    string  `json:"start_date"`
}

// FileStore keeps the state in a single JSON file, rewritten on every change.
type FileStore struct {
	path   string
	logger *log.Logger

	mu    sync.Mutex
	state State
}

// NewFileStore opens path, seeding it with DefaultState when it does not exist.
func NewFileStore(path string, logger *log.Logger) (*FileStore, error) {
	s := &FileStore{path: path, logger: logging.OrDiscard(logger)}

	st, err := loadStateFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.state = DefaultState()
		if err := s.persist(); err != nil {
			return nil, err
		}
		s.logger.Info("seeded state file", "path", path)
	case err != nil:
		return nil, err
	default:
		s.state = st
	}
	return s, nil
}

func loadStateFile(path string) (State, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return State{}, err
	}
	var fsState fileState
	if err := json.Unmarshal(raw, &fsState); err != nil {
		return State{}, fmt.Errorf("failed to parse state file: %w", err)
	}
	st := State{
		Loan: model.LoanConfig{
			Amount:       fsState.Loan.Amount,
			InterestRate: fsState.Loan.InterestRate,
			Installment:  fsState.Loan.Installment,
		},
		Overpayments:    fsState.Overpayments,
		RecurringAmount: fsState.RecurringAmount,
		SheetURL:        fsState.SheetURL,
	}
	if fsState.Loan.StartDate != "" {
		start, err := calendar.ParseDate(fsState.Loan.StartDate)
		if err != nil {
			return State{}, fmt.Errorf("failed to parse state file: loan start date: %w", err)
		}
		st.Loan.StartDate = start
	}
	SortOverpayments(st.Overpayments)
	return st, nil
}

// persist writes the current state. s.mu must be held (or s not yet shared).
func (s *FileStore) persist() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	doc := fileState{
		Loan: fileLoan{
			Amount:       s.state.Loan.Amount,
			InterestRate: s.state.Loan.InterestRate,
			Installment:  s.state.Loan.Installment,
			StartDate:    calendar.FormatDate(s.state.Loan.StartDate),
		},
		Overpayments:    s.state.Overpayments,
		RecurringAmount: s.state.RecurringAmount,
		SheetURL:        s.state.SheetURL,
		UpdatedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if doc.Overpayments == nil {
		doc.Overpayments = []model.OverpaymentEvent{}
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	// Write then rename so a crash never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// update applies fn to a copy of the state and persists it; on failure the
// in-memory state is left untouched.
func (s *FileStore) update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.state
	next := prev
	next.Overpayments = slices.Clone(prev.Overpayments)
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	if err := s.persist(); err != nil {
		s.state = prev
		return err
	}
	return nil
}

func (s *FileStore) Load(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	st.Overpayments = slices.Clone(s.state.Overpayments)
	return st, nil
}

func (s *FileStore) SaveLoan(ctx context.Context, loan model.LoanConfig) error {
	if err := loan.Validate(); err != nil {
		return err
	}
	return s.update(func(st *State) error {
		st.Loan = loan
		return nil
	})
}

func (s *FileStore) AddOverpayment(ctx context.Context, ev model.OverpaymentEvent) (model.OverpaymentEvent, error) {
	ev, err := prepareOverpayment(ev)
	if err != nil {
		return ev, err
	}
	err = s.update(func(st *State) error {
		for _, existing := range st.Overpayments {
			if existing.ID == ev.ID {
				return fmt.Errorf("%w: %s", ErrDuplicateID, ev.ID)
			}
		}
		st.Overpayments = append(st.Overpayments, ev)
		SortOverpayments(st.Overpayments)
		return nil
	})
	if err != nil {
		return ev, err
	}
	s.logger.Debug("added overpayment", "id", ev.ID, "date", ev.DateString(), "amount", ev.Amount)
	return ev, nil
}

func (s *FileStore) RemoveOverpayment(ctx context.Context, id string) error {
	return s.update(func(st *State) error {
		i := slices.IndexFunc(st.Overpayments, func(e model.OverpaymentEvent) bool { return e.ID == id })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		st.Overpayments = slices.Delete(st.Overpayments, i, i+1)
		return nil
	})
}

func (s *FileStore) SetRecurring(ctx context.Context, amount float64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	return s.update(func(st *State) error {
		st.RecurringAmount = amount
		return nil
	})
}

func (s *FileStore) SetSheetURL(ctx context.Context, url string) error {
	return s.update(func(st *State) error {
		st.SheetURL = url
		return nil
	})
}

func (s *FileStore) Close() error { return nil }
