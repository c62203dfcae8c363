package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/analysis"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/config"
	"loan-overpay/internal/display"
	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"
	"loan-overpay/internal/sheets"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	nowFlag  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "loan-cli",
	Short: "Simulate loan overpayments from a YAML scenario",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Print the summary of a scenario and optionally write its schedule as CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, loan, now, err := loadScenario()
		if err != nil {
			return err
		}
		res := amortization.Simulate(loan, cfg.Overpayments, cfg.RecurringMonthlyAmount, now)

		out := cmd.OutOrStdout()
		display.WriteSummary(out, res)

		if yearly, _ := cmd.Flags().GetBool("yearly"); yearly {
			fmt.Fprintln(out)
			display.WriteYearly(out, analysis.YearlyTotals(res.Schedule))
		}

		outPath, _ := cmd.Flags().GetString("out")
		if outPath == "" {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := amortization.WriteScheduleCSVFile(outPath, res.Schedule); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %d rows to %s\n", len(res.Schedule), outPath)
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Rank what-if variations of a scenario by total interest",
	Example: `  loan-cli compare -c scenario.yaml \
    --variation extra=recurring:500 \
    --variation bonus=once:2025-06-01:5000 \
    --variation bigger=installment:1500`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, loan, now, err := loadScenario()
		if err != nil {
			return err
		}
		raw, _ := cmd.Flags().GetStringArray("variation")
		if len(raw) == 0 {
			return fmt.Errorf("at least one --variation is required")
		}
		vars := make([]analysis.Variation, 0, len(raw))
		for _, s := range raw {
			v, err := analysis.ParseVariation(s)
			if err != nil {
				return err
			}
			vars = append(vars, v)
		}

		base := analysis.Inputs{Loan: loan, Overpayments: cfg.Overpayments, Recurring: cfg.RecurringMonthlyAmount}
		ranked := analysis.CompareScenarios(base, vars, func(in analysis.Inputs) amortization.SimulationResult {
			return amortization.Simulate(in.Loan, in.Overpayments, in.Recurring, now)
		})
		display.WriteComparison(cmd.OutOrStdout(), ranked)
		return nil
	},
}

var overpayCmd = &cobra.Command{
	Use:   "overpay",
	Short: "Manage the overpayments of a scenario file",
}

var overpayListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the overpayments of a scenario",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-38s %-10s %-12s %14s\n", "id", "type", "date", "amount")
		for _, ev := range cfg.Overpayments {
			fmt.Fprintf(out, "%-38s %-10s %-12s %14s\n", ev.ID, ev.Kind, display.Date(ev.DateString()), display.Number(ev.Amount))
		}
		if cfg.RecurringMonthlyAmount > 0 {
			fmt.Fprintf(out, "recurring monthly: %s\n", display.Currency(cfg.RecurringMonthlyAmount))
		}
		return nil
	},
}

var overpayAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append an overpayment to a scenario and optionally push it to the sheet",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := logging.New("loan-cli", logLevel)

		dateStr, _ := cmd.Flags().GetString("date")
		amountStr, _ := cmd.Flags().GetString("amount")
		kind, _ := cmd.Flags().GetString("type")
		interval, _ := cmd.Flags().GetInt("interval")

		date, err := calendar.ParseDate(dateStr)
		if err != nil {
			return err
		}
		amount, err := model.ParseAmount(amountStr)
		if err != nil {
			return err
		}
		ev := model.OverpaymentEvent{
			ID:             uuid.NewString(),
			Kind:           model.OverpaymentKind(kind),
			Date:           &date,
			Amount:         amount,
			IntervalMonths: interval,
		}
		if err := ev.Validate(); err != nil {
			return err
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg.Overpayments = append(cfg.Overpayments, ev)
		if err := config.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s on %s to %s\n", ev.Kind, display.Currency(ev.Amount), display.Date(ev.DateString()), cfgFile)

		push, _ := cmd.Flags().GetBool("push")
		if !push {
			return nil
		}
		url, _ := cmd.Flags().GetString("sheet-url")
		if url == "" {
			url = cfg.SheetURL
		}
		return pushOverpayment(cmd.Context(), url, ev, logger)
	},
}

func pushOverpayment(ctx context.Context, url string, ev model.OverpaymentEvent, logger *log.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	client := sheets.NewClient(url, logger)
	if !client.Configured() {
		return fmt.Errorf("--push needs --sheet-url or sheet_url in the scenario")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := client.PushOverpayment(ctx, ev); err != nil {
		return fmt.Errorf("push overpayment: %w", err)
	}
	return nil
}

// loadScenario reads --config and resolves "now" from --now, the scenario,
// or the wall clock, in that order.
func loadScenario() (*config.Config, model.LoanConfig, time.Time, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, model.LoanConfig{}, time.Time{}, err
	}
	loan, err := cfg.Loan.ToModel()
	if err != nil {
		return nil, model.LoanConfig{}, time.Time{}, err
	}
	now := cfg.NowOr(time.Now())
	if nowFlag != "" {
		if now, err = calendar.ParseDate(nowFlag); err != nil {
			return nil, model.LoanConfig{}, time.Time{}, fmt.Errorf("--now: %w", err)
		}
	}
	return cfg, loan, now, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "scenario.yaml", "Scenario YAML file")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "Reference date YYYY-MM-DD for the recurring amount (default: scenario now, then today)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	simulateCmd.Flags().String("out", "", "Write the schedule CSV to this path")
	simulateCmd.Flags().Bool("yearly", false, "Also print yearly totals")

	compareCmd.Flags().StringArray("variation", nil, "name=recurring:AMOUNT | name=once:YYYY-MM-DD:AMOUNT | name=installment:AMOUNT (repeatable)")

	overpayAddCmd.Flags().String("date", "", "Overpayment date YYYY-MM-DD")
	overpayAddCmd.Flags().String("amount", "", `Amount, e.g. "10500" or "10 500,00"`)
	overpayAddCmd.Flags().String("type", string(model.OneTime), "one-time or recurring")
	overpayAddCmd.Flags().Int("interval", 0, "Months between repeats for type=recurring (0 = monthly)")
	overpayAddCmd.Flags().Bool("push", false, "Also push the overpayment to the sheet webhook")
	overpayAddCmd.Flags().String("sheet-url", "", "Sheet webhook URL (default: sheet_url from the scenario)")
	_ = overpayAddCmd.MarkFlagRequired("date")
	_ = overpayAddCmd.MarkFlagRequired("amount")

	overpayCmd.AddCommand(overpayListCmd, overpayAddCmd)
	rootCmd.AddCommand(simulateCmd, compareCmd, overpayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
