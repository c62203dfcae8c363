package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/analysis"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/config"
	"loan-overpay/internal/display"
	"loan-overpay/internal/store"
)

// Demo:
// - Start from the built-in loan and its four overpayments (or a --config scenario)
// - Run the baseline and the overpaid schedule side by side
// - Print the first few months, the yearly breakdown and the savings
func main() {
	cfgPath := flag.String("config", "", "Path to scenario YAML (optional)")
	n := flag.Int("n", 12, "Number of months to print")
	nowStr := flag.String("now", "2024-08-01", "Reference date YYYY-MM-DD for the recurring amount")
	recurring := flag.Float64("recurring", 0, "Flat monthly overpayment added from --now on")
	outCSV := flag.String("out", "", "Optional path to write the schedule CSV (e.g. results/schedule.csv)")
	flag.Parse()

	now, err := calendar.ParseDate(*nowStr)
	if err != nil {
		panic(err)
	}

	st := store.DefaultState()
	if *cfgPath != "" {
		cfg, err := config.Load(*cfgPath)
		if err != nil {
			panic(err)
		}
		if st.Loan, err = cfg.Loan.ToModel(); err != nil {
			panic(err)
		}
		st.Overpayments = cfg.Overpayments
		st.RecurringAmount = cfg.RecurringMonthlyAmount
		now = cfg.NowOr(now)
	}
	if *recurring > 0 {
		st.RecurringAmount = *recurring
	}

	fmt.Printf("Loan: %s at %.2f%%, installment %s, first payment %s\n",
		display.Currency(st.Loan.Amount), st.Loan.InterestRate,
		display.Currency(st.Loan.Installment), display.Date(calendar.FormatDate(st.Loan.StartDate)))
	for _, ev := range st.Overpayments {
		fmt.Printf("  overpayment %-3s %-9s %s %s\n", ev.ID, ev.Kind, display.Date(ev.DateString()), display.Currency(ev.Amount))
	}
	if st.RecurringAmount > 0 {
		fmt.Printf("  plus %s every month from %s\n", display.Currency(st.RecurringAmount), now.Format("01.2006"))
	}
	fmt.Println()

	start := time.Now()
	res := amortization.Simulate(st.Loan, st.Overpayments, st.RecurringAmount, now)
	elapsed := time.Since(start)

	for i, e := range res.Schedule {
		if i >= *n {
			break
		}
		mark := ""
		if e.IsOverpaid {
			mark = " *"
		}
		fmt.Printf("#%03d %s start=%12s interest=%9s principal=%9s over=%10s end=%12s%s\n",
			e.Index,
			display.Date(calendar.FormatDate(e.Date)),
			display.Number(e.PrincipalStart),
			display.Number(e.Interest),
			display.Number(e.PrincipalPart),
			display.Number(e.Overpayment),
			display.Number(e.PrincipalEnd),
			mark,
		)
	}
	fmt.Println()

	display.WriteYearly(os.Stdout, analysis.YearlyTotals(res.Schedule))
	fmt.Println()
	display.WriteSummary(os.Stdout, res)

	impact := analysis.ComputeImpact(res)
	if impact.TotalOverpaid > 0 {
		fmt.Printf("  every 1 zł overpaid saved %.2f zł of interest\n", impact.InterestPerUnit)
	}
	fmt.Printf("  simulated %d+%d months in %s\n", res.Baseline.Months, len(res.Schedule), elapsed)

	if *outCSV != "" {
		if err := amortization.WriteScheduleCSVFile(*outCSV, res.Schedule); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote %d rows to %s\n", len(res.Schedule), *outCSV)
	}
}
