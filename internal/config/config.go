package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loan-overpay/internal/calendar"
	"loan-overpay/internal/model"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk scenario shape (YAML).
type Config struct {
	// Optional: load loan terms from a separate YAML (e.g. examples/loans/*.yaml).
	// If both LoanFile and Loan are provided, Loan overrides LoanFile field by field.
	LoanFile string     `yaml:"loan_file,omitempty"`
	Loan     LoanConfig `yaml:"loan"`

	Overpayments           []model.OverpaymentEvent `yaml:"overpayments,omitempty"`
	RecurringMonthlyAmount float64                  `yaml:"recurring_monthly_amount,omitempty"`

	// Now pins the reference month for the recurring amount (YYYY-MM-DD).
	// Empty means the wall clock at simulation time.
	Now      string `yaml:"now,omitempty"`
	SheetURL string `yaml:"sheet_url,omitempty"`
}

type LoanConfig struct {
	Amount       float64 `yaml:"amount"`
	InterestRate float64 `yaml:"interest_rate"`
	Installment  float64 `yaml:"installment"`
	StartDate    string  `yaml:"start_date"`
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	// Events written by hand often omit the id; number them in file order.
	for i := range c.Overpayments {
		if c.Overpayments[i].ID == "" {
			c.Overpayments[i].ID = fmt.Sprintf("%d", i+1)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if c.LoanFile != "" {
		loanPath := c.LoanFile
		if !filepath.IsAbs(loanPath) {
			// Relative to the scenario file first, then to the working directory.
			cand := filepath.Join(filepath.Dir(path), loanPath)
			if _, err := os.Stat(cand); err == nil {
				loanPath = cand
			}
		}
		loaded, err := loadLoanFile(loanPath)
		if err != nil {
			return nil, err
		}
		c.Loan = MergeLoan(loaded, c.Loan)
	}
	return &c, nil
}

// Save writes c to path as YAML, creating parent directories.
func Save(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, raw, 0644)
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	loan, err := c.Loan.ToModel()
	if err != nil {
		return err
	}
	if err := loan.Validate(); err != nil {
		return fmt.Errorf("loan config invalid: %w", err)
	}
	if c.RecurringMonthlyAmount < 0 {
		return errors.New("recurring_monthly_amount must be >= 0")
	}
	for _, ev := range c.Overpayments {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("overpayments: %w", err)
		}
	}
	if c.Now != "" {
		if _, err := calendar.ParseDate(c.Now); err != nil {
			return fmt.Errorf("now: %w", err)
		}
	}
	return nil
}

func (l LoanConfig) ToModel() (model.LoanConfig, error) {
	out := model.LoanConfig{
		Amount:       l.Amount,
		InterestRate: l.InterestRate,
		Installment:  l.Installment,
	}
	if l.StartDate == "" {
		return out, nil
	}
	start, err := calendar.ParseDate(l.StartDate)
	if err != nil {
		return out, fmt.Errorf("loan.start_date: %w", err)
	}
	out.StartDate = start
	return out, nil
}

// FromModel is the inverse of ToModel.
func FromModel(l model.LoanConfig) LoanConfig {
	return LoanConfig{
		Amount:       l.Amount,
		InterestRate: l.InterestRate,
		Installment:  l.Installment,
		StartDate:    calendar.FormatDate(l.StartDate),
	}
}

// NowOr returns the pinned reference date, or fallback when none is set.
// Call after Validate; an unparsable value also yields fallback.
func (c *Config) NowOr(fallback time.Time) time.Time {
	if c.Now == "" {
		return fallback
	}
	t, err := calendar.ParseDate(c.Now)
	if err != nil {
		return fallback
	}
	return t
}

type loanFileWrapper struct {
	Loan LoanConfig `yaml:"loan"`
}

func loadLoanFile(path string) (LoanConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return LoanConfig{}, err
	}
	var w loanFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return LoanConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Loan, nil
}

// MergeLoan overlays non-zero fields from override onto base.
func MergeLoan(base, override LoanConfig) LoanConfig {
	out := base
	if override.Amount != 0 {
		out.Amount = override.Amount
	}
	// A 0% rate cannot be expressed as an override; put it in the loan file.
	if override.InterestRate != 0 {
		out.InterestRate = override.InterestRate
	}
	if override.Installment != 0 {
		out.Installment = override.Installment
	}
	if override.StartDate != "" {
		out.StartDate = override.StartDate
	}
	return out
}
