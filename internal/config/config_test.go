package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"loan-overpay/internal/model"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const scenarioYAML = `
loan:
  amount: 65000
  interest_rate: 12.5
  installment: 1005.06
  start_date: "2024-08-21"
overpayments:
  - type: one-time
    date: "2025-04-21"
    amount: 10500
  - id: quarterly
    type: recurring
    date: "2025-06-01"
    amount: 300
    interval_months: 3
recurring_monthly_amount: 200
now: "2025-01-01"
`

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scenario.yaml", scenarioYAML)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(c.Overpayments) != 2 {
		t.Fatalf("overpayments = %d", len(c.Overpayments))
	}
	if c.Overpayments[0].ID != "1" {
		t.Errorf("missing id should default to position, got %q", c.Overpayments[0].ID)
	}
	if ev := c.Overpayments[1]; ev.Kind != model.Recurring || ev.IntervalMonths != 3 {
		t.Errorf("recurring event decoded as %+v", ev)
	}
	loan, err := c.Loan.ToModel()
	if err != nil {
		t.Fatal(err)
	}
	if loan.StartDate.Format("2006-01-02") != "2024-08-21" || loan.Installment != 1005.06 {
		t.Errorf("loan = %+v", loan)
	}
	fallback := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := c.NowOr(fallback); got.Format("2006-01-02") != "2025-01-01" {
		t.Errorf("NowOr = %v", got)
	}
}

func TestLoad_LoanFileMerge(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "loans/car.yaml", `
loan:
  amount: 20000
  interest_rate: 9
  installment: 500
  start_date: "2024-01-15"
`)
	path := writeFile(t, dir, "scenario.yaml", `
loan_file: loans/car.yaml
loan:
  installment: 650
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := LoanConfig{Amount: 20000, InterestRate: 9, Installment: 650, StartDate: "2024-01-15"}
	if c.Loan != want {
		t.Errorf("merged loan = %+v, want %+v", c.Loan, want)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		errText string
	}{
		{
			name:    "missing amount",
			body:    "loan:\n  interest_rate: 5\n  installment: 100\n  start_date: \"2024-01-01\"\n",
			wantErr: model.ErrInvalidAmount,
		},
		{
			name:    "bad start date",
			body:    "loan:\n  amount: 100\n  installment: 10\n  start_date: \"01/02/2024\"\n",
			errText: "loan.start_date",
		},
		{
			name:    "negative recurring",
			body:    "loan:\n  amount: 100\n  installment: 10\n  start_date: \"2024-01-01\"\nrecurring_monthly_amount: -5\n",
			errText: "recurring_monthly_amount",
		},
		{
			name:    "overpayment without amount",
			body:    "loan:\n  amount: 100\n  installment: 10\n  start_date: \"2024-01-01\"\noverpayments:\n  - date: \"2024-05-01\"\n",
			wantErr: model.ErrInvalidOverAmount,
		},
		{
			name:    "bad now",
			body:    "loan:\n  amount: 100\n  installment: 10\n  start_date: \"2024-01-01\"\nnow: tomorrow\n",
			errText: "now",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "s.yaml", tt.body)
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error %v is not %v", err, tt.wantErr)
			}
			if tt.errText != "" && !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error %q does not mention %q", err, tt.errText)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(writeFile(t, dir, "scenario.yaml", scenarioYAML))
	if err != nil {
		t.Fatal(err)
	}
	c.Overpayments = append(c.Overpayments,
		model.NewOneTime("extra", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 750))

	out := filepath.Join(dir, "nested", "saved.yaml")
	if err := Save(c, out); err != nil {
		t.Fatalf("Save: %v", err)
	}
	back, err := Load(out)
	if err != nil {
		t.Fatalf("Load saved: %v", err)
	}
	if len(back.Overpayments) != 3 {
		t.Fatalf("overpayments = %d", len(back.Overpayments))
	}
	last := back.Overpayments[2]
	if last.ID != "extra" || last.DateString() != "2026-03-10" || last.Amount != 750 {
		t.Errorf("last = %+v", last)
	}
	if back.RecurringMonthlyAmount != 200 || back.Now != "2025-01-01" {
		t.Errorf("scalar fields lost: %+v", back)
	}
}

func TestSettings_Validate(t *testing.T) {
	valid := func() Settings {
		return Settings{
			Port:          "8080",
			StoreBackend:  "file",
			StorePath:     "./data/state.json",
			CacheBackend:  "memory",
			CacheTTL:      time.Minute,
			NotifyBackend: "webhook",
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Settings)
		errText string
	}{
		{name: "valid", mutate: func(*Settings) {}},
		{name: "non-numeric port", mutate: func(s *Settings) { s.Port = "abc" }, errText: "invalid port 'abc'"},
		{name: "port out of range", mutate: func(s *Settings) { s.Port = "70000" }, errText: "invalid port 70000"},
		{name: "unknown store", mutate: func(s *Settings) { s.StoreBackend = "mongo" }, errText: "invalid store backend"},
		{name: "unknown cache", mutate: func(s *Settings) { s.CacheBackend = "disk" }, errText: "invalid cache backend"},
		{name: "zero ttl", mutate: func(s *Settings) { s.CacheTTL = 0 }, errText: "invalid cache ttl"},
		{name: "no cache ignores ttl", mutate: func(s *Settings) { s.CacheBackend = "none"; s.CacheTTL = 0 }},
		{name: "bad sheet url", mutate: func(s *Settings) { s.SheetURL = "ftp://example.com" }, errText: "invalid sheet url"},
		{
			name: "amqp scheme",
			mutate: func(s *Settings) {
				s.NotifyBackend = "amqp"
				s.AMQPURL = "http://localhost"
				s.AMQPExchange = "x"
				s.AMQPQueue = "q"
			},
			errText: "invalid AMQP URL scheme 'http'",
		},
		{name: "unknown notify", mutate: func(s *Settings) { s.NotifyBackend = "smtp" }, errText: "invalid notify backend"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.errText == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errText) {
				t.Errorf("error = %v, want mention of %q", err, tt.errText)
			}
		})
	}
}

func TestSettings_ValidateAggregates(t *testing.T) {
	s := Settings{Port: "x", StoreBackend: "y", CacheBackend: "z", NotifyBackend: "w"}
	err := s.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if n := strings.Count(err.Error(), "\n- "); n < 4 {
		t.Errorf("expected at least 4 problems, got %d: %v", n, err)
	}
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("API_PORT", "9090")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("STORE_PATH", "")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test ,")

	s := SettingsFromEnv()
	if s.Port != "9090" || s.StorePath != "./data/loan.db" || s.CacheTTL != 90*time.Second {
		t.Errorf("settings = %+v", s)
	}
	if len(s.CORSOrigins) != 2 || s.CORSOrigins[1] != "http://b.test" {
		t.Errorf("cors origins = %v", s.CORSOrigins)
	}
}

func TestIsHTTPURL(t *testing.T) {
	cases := map[string]bool{
		"https://script.google.com/macros/s/abc/exec": true,
		"http://localhost:8080/hook":                  true,
		"ftp://example.com":                           false,
		"not a url":                                   false,
		"https://":                                    false,
	}
	for in, want := range cases {
		if got := IsHTTPURL(in); got != want {
			t.Errorf("IsHTTPURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoad_ExampleScenario(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "examples", "scenario.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Loan.Amount != 65000 || c.Loan.Installment != 1005.06 || c.Loan.StartDate != "2024-08-21" {
		t.Errorf("loan not merged from loan_file: %+v", c.Loan)
	}
	if len(c.Overpayments) != 4 {
		t.Fatalf("expected 4 overpayments, got %d", len(c.Overpayments))
	}
	for i, ev := range c.Overpayments {
		if want := string(rune('1' + i)); ev.ID != want {
			t.Errorf("overpayment %d id = %q, want %q", i, ev.ID, want)
		}
	}
	if got := c.NowOr(time.Time{}); !got.Equal(time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("now = %v", got)
	}
}
