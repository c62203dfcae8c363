package display

import (
	"fmt"
	"io"
	"strings"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/analysis"
	"loan-overpay/internal/calendar"

	"github.com/charmbracelet/lipgloss"
)

var (
	headStyle  = lipgloss.NewStyle().Bold(true)
	savedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // gray
)

// WriteSummary prints the headline numbers of a simulation.
func WriteSummary(w io.Writer, res amortization.SimulationResult) {
	fmt.Fprintln(w, headStyle.Render("Loan summary"))
	fmt.Fprintf(w, "  months:            %d (baseline %d)\n", len(res.Schedule), res.Baseline.Months)
	fmt.Fprintf(w, "  end date:          %s (baseline %s)\n",
		Date(calendar.FormatDate(res.EndDate)), Date(calendar.FormatDate(res.OriginalEndDate)))
	fmt.Fprintf(w, "  total interest:    %s\n", Currency(res.TotalInterest))
	fmt.Fprintf(w, "  total cost:        %s\n", Currency(res.TotalCost))
	fmt.Fprintln(w, savedStyle.Render(fmt.Sprintf("  saved:             %d months, %s", res.MonthsSaved, Currency(res.InterestSaved))))
	for _, warn := range res.Warnings {
		fmt.Fprintln(w, warnStyle.Render("  warning: "+warn))
	}
}

// WriteYearly prints one row per calendar year.
func WriteYearly(w io.Writer, years []analysis.YearTotal) {
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%-6s %-6s %16s %16s %16s %16s", "year", "months", "paid", "interest", "overpaid", "balance")))
	for _, y := range years {
		line := fmt.Sprintf("%-6d %-6d %16s %16s %16s %16s",
			y.Year, y.Months, Number(y.Paid), Number(y.Interest), Number(y.Overpayment), Number(y.EndBalance))
		if y.Overpayment == 0 {
			line = mutedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
}

// WriteComparison prints ranked scenarios, best first.
func WriteComparison(w io.Writer, ranked []analysis.RankedScenario) {
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%-4s %-16s %-7s %16s %16s %14s %s", "rank", "scenario", "months", "interest", "vs base", "overpaid", "end")))
	for _, r := range ranked {
		name := r.Name
		if !r.Result.Converged {
			name += "*"
		}
		line := fmt.Sprintf("%-4d %-16s %-7d %16s %16s %14s %s",
			r.Rank,
			name,
			len(r.Result.Schedule),
			Number(r.Result.TotalInterest),
			Number(r.InterestVsBase),
			Number(r.Impact.TotalOverpaid),
			Date(calendar.FormatDate(r.Result.EndDate)),
		)
		if r.InterestVsBase > 0 {
			line = savedStyle.Render(line)
		}
		fmt.Fprintln(w, line)
	}
	for _, r := range ranked {
		if !r.Result.Converged {
			fmt.Fprintln(w, warnStyle.Render("* "+strings.Join(r.Result.Warnings, "; ")))
			break
		}
	}
}
