package analysis

import (
	"math"
	"sort"

	"loan-overpay/internal/amortization"
)

// OverpaymentImpact summarizes how much each unit of extra principal paid
// back, for ranking what-if scenarios.
type OverpaymentImpact struct {
	TotalOverpaid   float64
	OverpaidMonths  int
	LargestPayment  float64
	MedianPayment   float64
	InterestPerUnit float64 // interest saved per currency unit overpaid
}

func ComputeImpact(res amortization.SimulationResult) OverpaymentImpact {
	var (
		p    OverpaymentImpact
		vals []float64
	)
	for _, e := range res.Schedule {
		if !e.IsOverpaid {
			continue
		}
		p.OverpaidMonths++
		p.TotalOverpaid += e.Overpayment
		vals = append(vals, e.Overpayment)
	}
	if len(vals) == 0 {
		return p
	}
	sort.Float64s(vals)
	p.LargestPayment = vals[len(vals)-1]
	p.MedianPayment = percentileSorted(vals, 0.5)
	p.InterestPerUnit = res.InterestSaved / p.TotalOverpaid
	return p
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
