package sheets

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
)

// ResolvingClient looks the URL up on every push, so a URL saved after
// startup takes effect without a restart.
type ResolvingClient struct {
	Resolve func(ctx context.Context) (string, error)
	HTTP    *http.Client
	Logger  *log.Logger
}

func NewResolvingClient(resolve func(ctx context.Context) (string, error), logger *log.Logger) *ResolvingClient {
	return &ResolvingClient{
		Resolve: resolve,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Logger:  logging.OrDiscard(logger),
	}
}

func (c *ResolvingClient) Name() string { return "sheets" }

// Configured reports whether the URL currently resolves to an http(s) URL.
func (c *ResolvingClient) Configured(ctx context.Context) bool {
	url, err := c.Resolve(ctx)
	if err != nil {
		return false
	}
	return (&Client{URL: url}).Configured()
}

func (c *ResolvingClient) Send(ctx context.Context, ev model.OverpaymentEvent) error {
	url, err := c.Resolve(ctx)
	if err != nil {
		return fmt.Errorf("resolve sheet url: %w", err)
	}
	client := &Client{URL: url, Client: c.HTTP, Logger: c.Logger}
	return client.PushOverpayment(ctx, ev)
}
