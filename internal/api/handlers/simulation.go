package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/analysis"
	"loan-overpay/internal/api/models"
	"loan-overpay/internal/cache"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// SimulationHandler runs simulations, either for posted inputs or for the
// saved state.
type SimulationHandler struct {
	memo   *cache.Memo
	store  store.Store
	now    func() time.Time
	logger *log.Logger
}

func NewSimulationHandler(memo *cache.Memo, st store.Store, now func() time.Time, logger *log.Logger) *SimulationHandler {
	return &SimulationHandler{memo: memo, store: st, now: now, logger: logger}
}

// Simulate handles POST /api/v1/simulate
func (h *SimulationHandler) Simulate(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	in, ok := h.inputFromRequest(c, req)
	if !ok {
		return
	}
	res := h.memo.Simulate(c.Request.Context(), in)
	c.JSON(http.StatusOK, models.NewSimulationResponse(res, !req.Options.OmitSchedule))
}

// Compare handles POST /api/v1/simulate/compare
func (h *SimulationHandler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	base, ok := h.inputFromRequest(c, req.Base)
	if !ok {
		return
	}

	vars := make([]analysis.Variation, 0, len(req.Variations))
	for _, v := range req.Variations {
		av := analysis.Variation{Name: v.Name, Kind: analysis.VariationKind(v.Kind), Amount: float64(v.Amount)}
		if av.Kind == analysis.AddOnce {
			d, err := calendar.ParseDate(v.Date)
			if err != nil {
				respondError(c, http.StatusBadRequest, "INVALID_VARIATION", err.Error(), map[string]any{"name": v.Name})
				return
			}
			av.Date = d
		}
		vars = append(vars, av)
	}

	ranked := analysis.CompareScenarios(
		analysis.Inputs{Loan: base.Loan, Overpayments: base.Overpayments, Recurring: base.Recurring},
		vars,
		h.simulator(c.Request.Context(), base.Now),
	)
	c.JSON(http.StatusOK, models.NewCompareResponse(ranked))
}

// GetSimulation handles GET /api/v1/simulation
// ?format=csv streams the schedule as CSV instead of JSON.
func (h *SimulationHandler) GetSimulation(c *gin.Context) {
	res, ok := h.simulateState(c)
	if !ok {
		return
	}
	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		c.Header("Content-Disposition", `attachment; filename="schedule.csv"`)
		c.Status(http.StatusOK)
		if err := amortization.WriteScheduleCSV(c.Writer, res.Schedule); err != nil {
			h.logger.Error("failed to write csv", "err", err)
			_ = c.Error(err)
		}
		return
	}
	c.JSON(http.StatusOK, models.NewSimulationResponse(res, c.Query("schedule") != "false"))
}

// Chart handles GET /api/v1/simulation/chart
func (h *SimulationHandler) Chart(c *gin.Context) {
	points := analysis.DefaultMaxPoints
	if s := c.Query("points"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "points must be a positive integer", nil)
			return
		}
		points = n
	}
	res, ok := h.simulateState(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewChartResponse(
		analysis.BalanceSeries(res.Schedule, points),
		analysis.YearlyTotals(res.Schedule),
	))
}

func (h *SimulationHandler) simulateState(c *gin.Context) (amortization.SimulationResult, bool) {
	now, err := resolveNow(c.Query("now"), h.now)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), map[string]any{"field": "now"})
		return amortization.SimulationResult{}, false
	}
	st, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load state", "err", err)
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to load saved state", nil)
		return amortization.SimulationResult{}, false
	}
	res := h.memo.Simulate(c.Request.Context(), cache.Input{
		Loan:         st.Loan,
		Overpayments: st.Overpayments,
		Recurring:    st.RecurringAmount,
		Now:          now,
	})
	return res, true
}

func (h *SimulationHandler) inputFromRequest(c *gin.Context, req models.SimulateRequest) (cache.Input, bool) {
	loan, err := loanFromRequest(req.Loan)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_LOAN", err.Error(), nil)
		return cache.Input{}, false
	}
	now, err := resolveNow(req.Now, h.now)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), map[string]any{"field": "now"})
		return cache.Input{}, false
	}
	return cache.Input{
		Loan:         loan,
		Overpayments: req.Overpayments,
		Recurring:    float64(req.RecurringMonthlyAmount),
		Now:          now,
	}, true
}

func (h *SimulationHandler) simulator(ctx context.Context, now time.Time) func(analysis.Inputs) amortization.SimulationResult {
	return func(in analysis.Inputs) amortization.SimulationResult {
		return h.memo.Simulate(ctx, cache.Input{
			Loan:         in.Loan,
			Overpayments: in.Overpayments,
			Recurring:    in.Recurring,
			Now:          now,
		})
	}
}
