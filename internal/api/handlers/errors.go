package handlers

import (
	"net/http"
	"time"

	"loan-overpay/internal/api/models"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/model"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
}

// loanFromRequest parses and validates a loan from the API shape.
func loanFromRequest(req models.LoanRequest) (model.LoanConfig, error) {
	start, err := calendar.ParseDate(req.StartDate)
	if err != nil {
		return model.LoanConfig{}, err
	}
	loan := model.LoanConfig{
		Amount:       float64(req.Amount),
		InterestRate: req.InterestRate,
		Installment:  float64(req.Installment),
		StartDate:    start,
	}
	if err := loan.Validate(); err != nil {
		return model.LoanConfig{}, err
	}
	return loan, nil
}

// resolveNow returns the parsed override, or clock() when s is empty.
func resolveNow(s string, clock func() time.Time) (time.Time, error) {
	if s == "" {
		return clock(), nil
	}
	return calendar.ParseDate(s)
}
