package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"loan-overpay/internal/model"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "state.json"), nil)
			if err != nil {
				t.Fatalf("NewFileStore: %v", err)
			}
			return s
		},
		"sqlite": func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "loan.db"), nil)
			if err != nil {
				t.Fatalf("NewSQLiteStore: %v", err)
			}
			return s
		},
	}
}

func ids(evs []model.OverpaymentEvent) string {
	var out []string
	for _, e := range evs {
		out = append(out, e.ID)
	}
	return strings.Join(out, ",")
}

func TestStore_SeedsDefaults(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			st, err := s.Load(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			def := DefaultState()
			if st.Loan.Amount != def.Loan.Amount || st.Loan.Installment != def.Loan.Installment ||
				!st.Loan.StartDate.Equal(def.Loan.StartDate) {
				t.Errorf("loan = %+v", st.Loan)
			}
			if got := ids(st.Overpayments); got != "1,2,3,4" {
				t.Errorf("overpayments = %s", got)
			}
			if st.RecurringAmount != 0 || st.SheetURL != "" {
				t.Errorf("unexpected extras: %+v", st)
			}
		})
	}
}

func TestStore_Mutations(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			loan := model.LoanConfig{Amount: 300000, InterestRate: 7.1, Installment: 2400, StartDate: day(2023, 3, 10)}
			if err := s.SaveLoan(ctx, loan); err != nil {
				t.Fatalf("SaveLoan: %v", err)
			}
			if err := s.SaveLoan(ctx, model.LoanConfig{}); !errors.Is(err, model.ErrInvalidAmount) {
				t.Errorf("invalid loan accepted: %v", err)
			}

			added, err := s.AddOverpayment(ctx, model.OverpaymentEvent{Date: ptr(day(2025, 1, 5)), Amount: 999})
			if err != nil {
				t.Fatalf("AddOverpayment: %v", err)
			}
			if len(added.ID) != 36 || added.Kind != model.OneTime {
				t.Errorf("added = %+v", added)
			}
			if _, err := s.AddOverpayment(ctx, model.OverpaymentEvent{Date: ptr(day(2025, 1, 5))}); !errors.Is(err, model.ErrInvalidOverAmount) {
				t.Errorf("zero amount accepted: %v", err)
			}
			dup := model.OverpaymentEvent{ID: "1", Date: ptr(day(2026, 2, 1)), Amount: 10}
			if _, err := s.AddOverpayment(ctx, dup); !errors.Is(err, ErrDuplicateID) {
				t.Errorf("duplicate id: %v", err)
			}

			if err := s.RemoveOverpayment(ctx, "2"); err != nil {
				t.Fatalf("RemoveOverpayment: %v", err)
			}
			if err := s.RemoveOverpayment(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Errorf("remove missing: %v", err)
			}

			if err := s.SetRecurring(ctx, 250); err != nil {
				t.Fatal(err)
			}
			if err := s.SetRecurring(ctx, -1); !errors.Is(err, ErrNegativeAmount) {
				t.Errorf("negative recurring: %v", err)
			}
			if err := s.SetSheetURL(ctx, "https://example.test/exec"); err != nil {
				t.Fatal(err)
			}

			st, err := s.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if st.Loan.Amount != 300000 || !st.Loan.StartDate.Equal(loan.StartDate) {
				t.Errorf("loan = %+v", st.Loan)
			}
			if want := added.ID + ",1,3,4"; ids(st.Overpayments) != want {
				t.Errorf("overpayments = %s, want %s (sorted by date)", ids(st.Overpayments), want)
			}
			if st.RecurringAmount != 250 || st.SheetURL != "https://example.test/exec" {
				t.Errorf("state = %+v", st)
			}
		})
	}
}

func TestStore_Reopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cases := map[string]func() (Store, error){
		"file":   func() (Store, error) { return NewFileStore(filepath.Join(dir, "state.json"), nil) },
		"sqlite": func() (Store, error) { return NewSQLiteStore(filepath.Join(dir, "loan.db"), nil) },
	}
	for name, open := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := open()
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.AddOverpayment(ctx, model.NewOneTime("keep", day(2026, 2, 1), 42)); err != nil {
				t.Fatal(err)
			}
			if err := s.SetRecurring(ctx, 75); err != nil {
				t.Fatal(err)
			}
			s.Close()

			again, err := open()
			if err != nil {
				t.Fatal(err)
			}
			defer again.Close()
			st, err := again.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if ids(st.Overpayments) != "1,2,3,4,keep" || st.RecurringAmount != 75 {
				t.Errorf("after reopen: %s / %v", ids(st.Overpayments), st.RecurringAmount)
			}
		})
	}
}

func TestStore_ConcurrentAdds(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			defer s.Close()

			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					if _, err := s.AddOverpayment(ctx, model.NewOneTime("", day(2027, time.Month(i%12+1), 1), 10)); err != nil {
						t.Error(err)
					}
				}(i)
			}
			wg.Wait()

			st, err := s.Load(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(st.Overpayments) != 14 {
				t.Errorf("overpayments = %d, want 14", len(st.Overpayments))
			}
		})
	}
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStore(path, nil); err == nil || !strings.Contains(err.Error(), "parse state file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestSortOverpayments(t *testing.T) {
	evs := []model.OverpaymentEvent{
		{ID: "nodate", Amount: 1},
		model.NewOneTime("late", day(2026, 1, 1), 1),
		model.NewOneTime("early", day(2025, 1, 1), 1),
		{ID: "bad", RawDate: "yesterday", Amount: 1},
		model.NewOneTime("early2", day(2025, 1, 1), 1),
	}
	SortOverpayments(evs)
	if got := ids(evs); got != "early,early2,late,nodate,bad" {
		t.Errorf("order = %s", got)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := Open("mongo", "x", nil); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("got %v", err)
	}
}

func ptr(t time.Time) *time.Time { return &t }
