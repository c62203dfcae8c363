package analysis

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/model"
)

// Inputs is a what-if scenario before it is simulated.
type Inputs struct {
	Loan         model.LoanConfig
	Overpayments []model.OverpaymentEvent
	Recurring    float64
}

type VariationKind string

const (
	// AddRecurring raises the flat monthly overpayment by Amount.
	AddRecurring VariationKind = "recurring"
	// AddOnce adds a one-time overpayment of Amount on Date.
	AddOnce VariationKind = "once"
	// SetInstallment replaces the installment with Amount.
	SetInstallment VariationKind = "installment"
)

// Variation is a named change applied to a base scenario.
type Variation struct {
	Name   string
	Kind   VariationKind
	Amount float64
	Date   time.Time
}

var ErrBadVariation = errors.New("variation must look like name=recurring:500, name=once:2025-06-01:5000 or name=installment:1200")

// ParseVariation reads the compact command-line form.
func ParseVariation(s string) (Variation, error) {
	name, def, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Variation{}, fmt.Errorf("%w: %q", ErrBadVariation, s)
	}
	parts := strings.Split(def, ":")
	v := Variation{Name: name, Kind: VariationKind(strings.TrimSpace(parts[0]))}

	var amount string
	switch {
	case v.Kind == AddOnce && len(parts) == 3:
		d, err := calendar.ParseDate(strings.TrimSpace(parts[1]))
		if err != nil {
			return Variation{}, fmt.Errorf("variation %s: %w", name, err)
		}
		v.Date = d
		amount = parts[2]
	case (v.Kind == AddRecurring || v.Kind == SetInstallment) && len(parts) == 2:
		amount = parts[1]
	default:
		return Variation{}, fmt.Errorf("%w: %q", ErrBadVariation, s)
	}

	a, err := model.ParseAmount(amount)
	if err != nil {
		return Variation{}, fmt.Errorf("variation %s: %w", name, err)
	}
	if a <= 0 {
		return Variation{}, fmt.Errorf("variation %s: amount must be > 0", name)
	}
	v.Amount = a
	return v, nil
}

// Apply returns a copy of in with v applied. in is not modified.
func (v Variation) Apply(in Inputs) Inputs {
	out := in
	out.Overpayments = append([]model.OverpaymentEvent(nil), in.Overpayments...)
	switch v.Kind {
	case AddRecurring:
		out.Recurring += v.Amount
	case AddOnce:
		out.Overpayments = append(out.Overpayments, model.NewOneTime("variation:"+v.Name, v.Date, v.Amount))
	case SetInstallment:
		out.Loan.Installment = v.Amount
	}
	return out
}

// RankedScenario is one simulated variant with its position.
// InterestVsBase and MonthsVsBase are savings relative to the base scenario;
// they differ from Result's own savings when a variation changes the loan
// itself (its baseline moves with it).
type RankedScenario struct {
	Rank           int
	Name           string
	Result         amortization.SimulationResult
	Impact         OverpaymentImpact
	InterestVsBase float64
	MonthsVsBase   int
}

// BaseScenario is the name of the unmodified inputs in a comparison.
const BaseScenario = "base"

// CompareScenarios simulates the base inputs and every variation, then ranks
// them. simulate is usually amortization.Simulate bound to a fixed "now", or
// a memoized equivalent.
func CompareScenarios(base Inputs, vars []Variation, simulate func(Inputs) amortization.SimulationResult) []RankedScenario {
	out := make([]RankedScenario, 0, len(vars)+1)
	add := func(name string, in Inputs) {
		res := simulate(in)
		out = append(out, RankedScenario{Name: name, Result: res, Impact: ComputeImpact(res)})
	}
	add(BaseScenario, base)
	for _, v := range vars {
		add(v.Name, v.Apply(base))
	}
	ref := out[0].Result
	for i := range out {
		out[i].InterestVsBase = ref.TotalInterest - out[i].Result.TotalInterest
		out[i].MonthsVsBase = len(ref.Schedule) - len(out[i].Result.Schedule)
	}
	RankScenarios(out)
	return out
}

// RankScenarios sorts by total interest, then term length (both ascending),
// then name, and assigns 1-based ranks. Against a shared baseline this is
// the same as most interest saved first. Scenarios that do not converge
// always rank last.
func RankScenarios(s []RankedScenario) {
	sort.SliceStable(s, func(i, j int) bool {
		a, b := s[i].Result, s[j].Result
		if a.Converged != b.Converged {
			return a.Converged
		}
		if a.TotalInterest != b.TotalInterest {
			return a.TotalInterest < b.TotalInterest
		}
		if len(a.Schedule) != len(b.Schedule) {
			return len(a.Schedule) < len(b.Schedule)
		}
		return s[i].Name < s[j].Name
	})
	for i := range s {
		s[i].Rank = i + 1
	}
}
