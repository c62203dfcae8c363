package models

import (
	"loan-overpay/internal/amortization"
	"loan-overpay/internal/analysis"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/display"
	"loan-overpay/internal/model"
	"loan-overpay/internal/notify"
	"loan-overpay/internal/store"
)

// SimulationResponse is the result of a simulation. Dates are YYYY-MM-DD.
type SimulationResponse struct {
	Schedule        []ScheduleRow   `json:"schedule,omitempty"`
	TotalInterest   float64         `json:"totalInterest"`
	TotalCost       float64         `json:"totalCost"`
	EndDate         string          `json:"endDate"`
	MonthsSaved     int             `json:"monthsSaved"`
	InterestSaved   float64         `json:"interestSaved"`
	OriginalEndDate string          `json:"originalEndDate"`
	Baseline        BaselineSummary `json:"baseline"`
	Converged       bool            `json:"converged"`
	Warnings        []string        `json:"warnings,omitempty"`
	Display         DisplaySummary  `json:"display"`
}

// ScheduleRow represents one month of the schedule
type ScheduleRow struct {
	Index          int     `json:"index"`
	Date           string  `json:"date"`
	PrincipalStart float64 `json:"principalStart"`
	Installment    float64 `json:"installment"`
	Interest       float64 `json:"interest"`
	PrincipalPart  float64 `json:"principalPart"`
	Overpayment    float64 `json:"overpayment"`
	PrincipalEnd   float64 `json:"principalEnd"`
	IsOverpaid     bool    `json:"isOverpaid"`
}

type BaselineSummary struct {
	Months        int     `json:"months"`
	TotalInterest float64 `json:"totalInterest"`
	EndDate       string  `json:"endDate"`
	Converged     bool    `json:"converged"`
}

// DisplaySummary carries the headline numbers pre-formatted for pl-PL.
type DisplaySummary struct {
	TotalInterest   string `json:"totalInterest"`
	TotalCost       string `json:"totalCost"`
	InterestSaved   string `json:"interestSaved"`
	EndDate         string `json:"endDate"`
	OriginalEndDate string `json:"originalEndDate"`
}

func NewSimulationResponse(res amortization.SimulationResult, withSchedule bool) SimulationResponse {
	out := SimulationResponse{
		TotalInterest:   res.TotalInterest,
		TotalCost:       res.TotalCost,
		EndDate:         calendar.FormatDate(res.EndDate),
		MonthsSaved:     res.MonthsSaved,
		InterestSaved:   res.InterestSaved,
		OriginalEndDate: calendar.FormatDate(res.OriginalEndDate),
		Baseline: BaselineSummary{
			Months:        res.Baseline.Months,
			TotalInterest: res.Baseline.TotalInterest,
			EndDate:       calendar.FormatDate(res.Baseline.EndDate),
			Converged:     res.Baseline.Converged,
		},
		Converged: res.Converged,
		Warnings:  res.Warnings,
	}
	out.Display = DisplaySummary{
		TotalInterest:   display.Currency(res.TotalInterest),
		TotalCost:       display.Currency(res.TotalCost),
		InterestSaved:   display.Currency(res.InterestSaved),
		EndDate:         display.Date(out.EndDate),
		OriginalEndDate: display.Date(out.OriginalEndDate),
	}
	if withSchedule {
		out.Schedule = make([]ScheduleRow, 0, len(res.Schedule))
		for _, e := range res.Schedule {
			out.Schedule = append(out.Schedule, ScheduleRow{
				Index:          e.Index,
				Date:           calendar.FormatDate(e.Date),
				PrincipalStart: e.PrincipalStart,
				Installment:    e.Installment,
				Interest:       e.Interest,
				PrincipalPart:  e.PrincipalPart,
				Overpayment:    e.Overpayment,
				PrincipalEnd:   e.PrincipalEnd,
				IsOverpaid:     e.IsOverpaid,
			})
		}
	}
	return out
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Rank           int                `json:"rank"`
	Name           string             `json:"name"`
	InterestVsBase float64            `json:"interestVsBase"`
	MonthsVsBase   int                `json:"monthsVsBase"`
	TotalOverpaid  float64            `json:"totalOverpaid"`
	Summary        SimulationResponse `json:"summary"`
}

func NewCompareResponse(ranked []analysis.RankedScenario) CompareResponse {
	out := CompareResponse{Comparison: make([]ComparisonResult, 0, len(ranked))}
	for _, r := range ranked {
		out.Comparison = append(out.Comparison, ComparisonResult{
			Rank:           r.Rank,
			Name:           r.Name,
			InterestVsBase: r.InterestVsBase,
			MonthsVsBase:   r.MonthsVsBase,
			TotalOverpaid:  r.Impact.TotalOverpaid,
			Summary:        NewSimulationResponse(r.Result, false),
		})
	}
	return out
}

// ChartResponse feeds the balance chart and the yearly breakdown.
type ChartResponse struct {
	Balance []ChartPoint `json:"balance"`
	Yearly  []YearRow    `json:"yearly"`
}

type ChartPoint struct {
	Index   int     `json:"index"`
	Date    string  `json:"date"`
	Balance float64 `json:"balance"`
}

type YearRow struct {
	Year        int     `json:"year"`
	Months      int     `json:"months"`
	Paid        float64 `json:"paid"`
	Interest    float64 `json:"interest"`
	Principal   float64 `json:"principal"`
	Overpayment float64 `json:"overpayment"`
	EndBalance  float64 `json:"endBalance"`
}

func NewChartResponse(points []analysis.BalancePoint, years []analysis.YearTotal) ChartResponse {
	out := ChartResponse{
		Balance: make([]ChartPoint, 0, len(points)),
		Yearly:  make([]YearRow, 0, len(years)),
	}
	for _, p := range points {
		out.Balance = append(out.Balance, ChartPoint{Index: p.Index, Date: calendar.FormatDate(p.Date), Balance: p.Balance})
	}
	for _, y := range years {
		out.Yearly = append(out.Yearly, YearRow(y))
	}
	return out
}

// StateResponse is the persisted user input.
type StateResponse struct {
	Loan            LoanRequest              `json:"loan"`
	Overpayments    []model.OverpaymentEvent `json:"overpayments"`
	RecurringAmount float64                  `json:"recurringAmount"`
	SheetURL        string                   `json:"sheetUrl"`
}

func NewStateResponse(st store.State) StateResponse {
	out := StateResponse{
		Loan: LoanRequest{
			Amount:       Amount(st.Loan.Amount),
			InterestRate: st.Loan.InterestRate,
			Installment:  Amount(st.Loan.Installment),
			StartDate:    calendar.FormatDate(st.Loan.StartDate),
		},
		Overpayments:    st.Overpayments,
		RecurringAmount: st.RecurringAmount,
		SheetURL:        st.SheetURL,
	}
	if out.Overpayments == nil {
		out.Overpayments = []model.OverpaymentEvent{}
	}
	return out
}

// OverpaymentCreated is returned by POST /overpayments. Pushed reports
// whether a background push to the configured sink was started.
type OverpaymentCreated struct {
	Overpayment model.OverpaymentEvent `json:"overpayment"`
	Pushed      bool                   `json:"pushed"`
}

// PushStatusResponse reports the latest push attempt.
type PushStatusResponse struct {
	Status notify.Status `json:"status"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
