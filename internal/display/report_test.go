package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/analysis"
	"loan-overpay/internal/model"
)

var (
	loan = model.LoanConfig{
		Amount:       65000,
		InterestRate: 12.5,
		Installment:  1005.06,
		StartDate:    time.Date(2024, 8, 21, 0, 0, 0, 0, time.UTC),
	}
	now = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
)

func TestWriteSummary(t *testing.T) {
	ev := model.NewOneTime("1", time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC), 10500)
	res := amortization.Simulate(loan, []model.OverpaymentEvent{ev}, 0, now)

	var buf bytes.Buffer
	WriteSummary(&buf, res)
	out := buf.String()

	for _, want := range []string{"months:            83 (baseline 109)", "21.08.2033", "saved:             26 months"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummary_Warnings(t *testing.T) {
	bad := loan
	bad.Installment = 500
	res := amortization.Simulate(bad, nil, 0, now)

	var buf bytes.Buffer
	WriteSummary(&buf, res)
	if got := strings.Count(buf.String(), "warning:"); got != 2 {
		t.Errorf("expected 2 warnings, got %d:\n%s", got, buf.String())
	}
}

func TestWriteYearly(t *testing.T) {
	res := amortization.Simulate(loan, nil, 0, now)
	years := analysis.YearlyTotals(res.Schedule)

	var buf bytes.Buffer
	WriteYearly(&buf, years)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(years)+1 {
		t.Fatalf("expected %d lines, got %d", len(years)+1, len(lines))
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "2024") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestWriteComparison(t *testing.T) {
	v, err := analysis.ParseVariation("extra=recurring:500")
	if err != nil {
		t.Fatal(err)
	}
	ranked := analysis.CompareScenarios(
		analysis.Inputs{Loan: loan},
		[]analysis.Variation{v},
		func(in analysis.Inputs) amortization.SimulationResult {
			return amortization.Simulate(in.Loan, in.Overpayments, in.Recurring, now)
		},
	)

	var buf bytes.Buffer
	WriteComparison(&buf, ranked)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "extra") || !strings.Contains(lines[2], "base") {
		t.Errorf("unexpected order:\n%s", buf.String())
	}
}
