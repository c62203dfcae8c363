package handlers

import (
	"net/http"

	"loan-overpay/internal/api/models"
	"loan-overpay/internal/config"
	"loan-overpay/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// StateHandler reads and edits the saved loan inputs.
type StateHandler struct {
	store  store.Store
	logger *log.Logger
}

func NewStateHandler(st store.Store, logger *log.Logger) *StateHandler {
	return &StateHandler{store: st, logger: logger}
}

// GetState handles GET /api/v1/state
func (h *StateHandler) GetState(c *gin.Context) {
	h.respondState(c)
}

// PutLoan handles PUT /api/v1/state/loan
func (h *StateHandler) PutLoan(c *gin.Context) {
	var req models.LoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	loan, err := loanFromRequest(req)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_LOAN", err.Error(), nil)
		return
	}
	if err := h.store.SaveLoan(c.Request.Context(), loan); err != nil {
		h.storeFailed(c, "save loan", err)
		return
	}
	h.respondState(c)
}

// PutRecurring handles PUT /api/v1/state/recurring
func (h *StateHandler) PutRecurring(c *gin.Context) {
	var req models.RecurringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.Amount < 0 {
		respondError(c, http.StatusBadRequest, "INVALID_AMOUNT", store.ErrNegativeAmount.Error(), nil)
		return
	}
	if err := h.store.SetRecurring(c.Request.Context(), float64(req.Amount)); err != nil {
		h.storeFailed(c, "set recurring", err)
		return
	}
	h.respondState(c)
}

// PutSheetURL handles PUT /api/v1/state/sheet-url
func (h *StateHandler) PutSheetURL(c *gin.Context) {
	var req models.SheetURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if req.URL != "" && !config.IsHTTPURL(req.URL) {
		respondError(c, http.StatusBadRequest, "INVALID_URL", "sheet url must be an http or https url", nil)
		return
	}
	if err := h.store.SetSheetURL(c.Request.Context(), req.URL); err != nil {
		h.storeFailed(c, "set sheet url", err)
		return
	}
	h.respondState(c)
}

func (h *StateHandler) respondState(c *gin.Context) {
	st, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.storeFailed(c, "load state", err)
		return
	}
	c.JSON(http.StatusOK, models.NewStateResponse(st))
}

func (h *StateHandler) storeFailed(c *gin.Context, op string, err error) {
	h.logger.Error("store operation failed", "op", op, "err", err)
	respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to "+op, nil)
}
