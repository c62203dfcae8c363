package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
)

// Client pushes recorded overpayments to a spreadsheet web-app endpoint
// (typically a Google Apps Script deployment accepting a JSON POST).
type Client struct {
	URL    string
	Client *http.Client
	Logger *log.Logger
}

// NewClient creates a client for url with a 30s timeout.
func NewClient(url string, logger *log.Logger) *Client {
	return &Client{
		URL: strings.TrimSpace(url),
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		Logger: logging.OrDiscard(logger),
	}
}

// PushError represents a failed push.
type PushError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *PushError) Error() string {
	return e.Message
}

// Configured reports whether the URL looks like something we can POST to.
// Anything else is treated as "integration off", not as an error.
func (c *Client) Configured() bool {
	return c != nil && (strings.HasPrefix(c.URL, "http://") || strings.HasPrefix(c.URL, "https://"))
}

func (c *Client) Name() string { return "sheets" }

// Send implements notify.Sink.
func (c *Client) Send(ctx context.Context, ev model.OverpaymentEvent) error {
	return c.PushOverpayment(ctx, ev)
}

// PushOverpayment POSTs one event as JSON. The response body is ignored;
// only the status code decides success.
func (c *Client) PushOverpayment(ctx context.Context, ev model.OverpaymentEvent) error {
	if !c.Configured() {
		return &PushError{
			Code:    "NOT_CONFIGURED",
			Message: fmt.Sprintf("sheet url %q is not an http(s) url", c.URL),
		}
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode overpayment: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.Logger.Debug("request", "method", req.Method, "id", ev.ID, "date", ev.DateString(), "amount", ev.Amount)

	start := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.Logger.Warn("request failed", "id", ev.ID, "err", err, "duration", duration)
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	c.Logger.Debug("response", "status", resp.StatusCode, "id", ev.ID, "duration", duration)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &PushError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "sheet endpoint rejected the request; check the web app access settings",
		}
	case resp.StatusCode == http.StatusNotFound:
		return &PushError{
			StatusCode: resp.StatusCode,
			Code:       "NOT_FOUND",
			Message:    "sheet endpoint not found; check the deployment url",
		}
	default:
		return &PushError{
			StatusCode: resp.StatusCode,
			Code:       "PUSH_FAILED",
			Message:    fmt.Sprintf("sheet endpoint returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}
}
