package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loan-overpay/internal/calendar"
	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore keeps the loan in a single-row table and overpayments in
// their own table.
type SQLiteStore struct {
	db     *sql.DB
	logger *log.Logger
}

func NewSQLiteStore(dbPath string, logger *log.Logger) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logging.OrDiscard(logger)}
	if err := s.seed(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// seed inserts DefaultState into an empty database.
func (s *SQLiteStore) seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM loan`).Scan(&n); err != nil {
		return fmt.Errorf("count loan rows: %w", err)
	}
	if n > 0 {
		return nil
	}

	def := DefaultState()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	now := nowText()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO loan (id, amount, interest_rate, installment, start_date, recurring_amount, sheet_url, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)`,
		def.Loan.Amount, def.Loan.InterestRate, def.Loan.Installment,
		calendar.FormatDate(def.Loan.StartDate), def.RecurringAmount, def.SheetURL, now)
	if err != nil {
		return fmt.Errorf("seed loan: %w", err)
	}
	for _, ev := range def.Overpayments {
		if err := insertOverpayment(ctx, tx, ev); err != nil {
			return fmt.Errorf("seed overpayments: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	s.logger.Info("seeded database with default loan")
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertOverpayment(ctx context.Context, db execer, ev model.OverpaymentEvent) error {
	var date sql.NullString
	if ev.Date != nil {
		date = sql.NullString{String: calendar.FormatDate(*ev.Date), Valid: true}
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO overpayments (id, kind, date, amount, interval_months, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), date, ev.Amount, ev.IntervalMonths, nowText())
	return err
}

func nowText() string { return time.Now().UTC().Format(time.RFC3339Nano) }

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (State, error) {
	var (
		st    State
		start string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT amount, interest_rate, installment, start_date, recurring_amount, sheet_url
		FROM loan WHERE id = 1`).
		Scan(&st.Loan.Amount, &st.Loan.InterestRate, &st.Loan.Installment, &start, &st.RecurringAmount, &st.SheetURL)
	if err != nil {
		return State{}, fmt.Errorf("load loan: %w", err)
	}
	if st.Loan.StartDate, err = calendar.ParseDate(start); err != nil {
		return State{}, fmt.Errorf("load loan: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, date, amount, interval_months
		FROM overpayments
		ORDER BY date IS NULL, date, seq`)
	if err != nil {
		return State{}, fmt.Errorf("list overpayments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			ev   model.OverpaymentEvent
			kind string
			date sql.NullString
		)
		if err := rows.Scan(&ev.ID, &kind, &date, &ev.Amount, &ev.IntervalMonths); err != nil {
			return State{}, fmt.Errorf("scan overpayment: %w", err)
		}
		ev.Kind = model.OverpaymentKind(kind)
		if date.Valid {
			if t, err := calendar.ParseDate(date.String); err == nil {
				ev.Date = &t
			} else {
				ev.RawDate = date.String
			}
		}
		st.Overpayments = append(st.Overpayments, ev)
	}
	if err := rows.Err(); err != nil {
		return State{}, fmt.Errorf("list overpayments: %w", err)
	}
	return st, nil
}

func (s *SQLiteStore) SaveLoan(ctx context.Context, loan model.LoanConfig) error {
	if err := loan.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		UPDATE loan SET amount = ?, interest_rate = ?, installment = ?, start_date = ?, updated_at = ?
		WHERE id = 1`,
		loan.Amount, loan.InterestRate, loan.Installment, calendar.FormatDate(loan.StartDate), nowText())
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddOverpayment(ctx context.Context, ev model.OverpaymentEvent) (model.OverpaymentEvent, error) {
	ev, err := prepareOverpayment(ev)
	if err != nil {
		return ev, err
	}
	if err := insertOverpayment(ctx, s.db, ev); err != nil {
		var se *sqlite.Error
		if errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return ev, fmt.Errorf("%w: %s", ErrDuplicateID, ev.ID)
		}
		return ev, fmt.Errorf("insert overpayment: %w", err)
	}
	s.logger.Debug("added overpayment", "id", ev.ID, "date", ev.DateString(), "amount", ev.Amount)
	return ev, nil
}

func (s *SQLiteStore) RemoveOverpayment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM overpayments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete overpayment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete overpayment: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *SQLiteStore) SetRecurring(ctx context.Context, amount float64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	return s.updateLoanColumn(ctx, "recurring_amount", amount)
}

func (s *SQLiteStore) SetSheetURL(ctx context.Context, url string) error {
	return s.updateLoanColumn(ctx, "sheet_url", url)
}

// updateLoanColumn sets one column of the loan row. column is never user input.
func (s *SQLiteStore) updateLoanColumn(ctx context.Context, column string, value any) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE loan SET `+column+` = ?, updated_at = ? WHERE id = 1`, value, nowText())
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New("loan row missing")
	}
	return nil
}
