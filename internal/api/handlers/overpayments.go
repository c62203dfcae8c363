package handlers

import (
	"context"
	"errors"
	"net/http"

	"loan-overpay/internal/api/models"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/model"
	"loan-overpay/internal/notify"
	"loan-overpay/internal/store"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// OverpaymentHandler records overpayments and forwards new ones to the
// configured sink in the background.
type OverpaymentHandler struct {
	store       store.Store
	push        *notify.Dispatcher
	pushEnabled func(context.Context) bool
	logger      *log.Logger
}

// NewOverpaymentHandler wires the handler. push may be nil; pushEnabled nil
// means "push whenever a dispatcher is set".
func NewOverpaymentHandler(st store.Store, push *notify.Dispatcher, pushEnabled func(context.Context) bool, logger *log.Logger) *OverpaymentHandler {
	if pushEnabled == nil {
		pushEnabled = func(context.Context) bool { return true }
	}
	return &OverpaymentHandler{store: st, push: push, pushEnabled: pushEnabled, logger: logger}
}

// List handles GET /api/v1/overpayments
func (h *OverpaymentHandler) List(c *gin.Context) {
	st, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to load state", "err", err)
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to load overpayments", nil)
		return
	}
	c.JSON(http.StatusOK, models.NewStateResponse(st).Overpayments)
}

// Add handles POST /api/v1/overpayments
func (h *OverpaymentHandler) Add(c *gin.Context) {
	var req models.OverpaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_DATE", err.Error(), map[string]any{"field": "date"})
		return
	}
	ev := model.OverpaymentEvent{
		ID:             req.ID,
		Kind:           model.OverpaymentKind(req.Type),
		Date:           &date,
		Amount:         float64(req.Amount),
		IntervalMonths: req.IntervalMonths,
	}

	stored, err := h.store.AddOverpayment(c.Request.Context(), ev)
	if err != nil {
		if errors.Is(err, model.ErrInvalidOverAmount) || errors.Is(err, model.ErrUnknownKind) {
			respondError(c, http.StatusBadRequest, "INVALID_OVERPAYMENT", err.Error(), nil)
			return
		}
		if errors.Is(err, store.ErrDuplicateID) {
			respondError(c, http.StatusConflict, "DUPLICATE_ID", err.Error(), map[string]any{"id": ev.ID})
			return
		}
		h.logger.Error("failed to add overpayment", "err", err)
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to add overpayment", nil)
		return
	}

	pushed := false
	if h.push != nil && h.pushEnabled(c.Request.Context()) {
		pushed = h.push.Submit(stored)
	}
	c.JSON(http.StatusCreated, models.OverpaymentCreated{Overpayment: stored, Pushed: pushed})
}

// Remove handles DELETE /api/v1/overpayments/:id
func (h *OverpaymentHandler) Remove(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.RemoveOverpayment(c.Request.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(c, http.StatusNotFound, "NOT_FOUND", err.Error(), map[string]any{"id": id})
			return
		}
		h.logger.Error("failed to remove overpayment", "id", id, "err", err)
		respondError(c, http.StatusInternalServerError, "STORE_ERROR", "failed to remove overpayment", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

// PushStatus handles GET /api/v1/overpayments/push-status
func (h *OverpaymentHandler) PushStatus(c *gin.Context) {
	status := notify.Status{State: notify.StateIdle}
	if h.push != nil {
		status = h.push.Last()
	}
	c.JSON(http.StatusOK, models.PushStatusResponse{Status: status})
}
