package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loan-overpay/internal/model"
)

func event() model.OverpaymentEvent {
	return model.NewOneTime("1735689600000", time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC), 10500)
}

func TestPushOverpayment_Success(t *testing.T) {
	var gotBody map[string]any
	var gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		gotType = r.Header.Get("Content-Type")
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &gotBody); err != nil {
			t.Errorf("body is not json: %s", raw)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if err := c.PushOverpayment(context.Background(), event()); err != nil {
		t.Fatalf("PushOverpayment: %v", err)
	}
	if gotType != "application/json" {
		t.Errorf("content type = %q", gotType)
	}
	want := map[string]any{"id": "1735689600000", "type": "one-time", "date": "2025-04-21", "amount": 10500.0}
	for k, v := range want {
		if gotBody[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, gotBody[k], v)
		}
	}
}

func TestPushOverpayment_StatusErrors(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusForbidden, "UNAUTHORIZED"},
		{http.StatusNotFound, "NOT_FOUND"},
		{http.StatusInternalServerError, "PUSH_FAILED"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			err := NewClient(srv.URL, nil).PushOverpayment(context.Background(), event())
			var pe *PushError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *PushError, got %v", err)
			}
			if pe.StatusCode != tt.status || pe.Code != tt.code {
				t.Errorf("got %+v", pe)
			}
		})
	}
}

func TestPushOverpayment_NotConfigured(t *testing.T) {
	for _, url := range []string{"", "  ", "script.google.com/exec", "ftp://x"} {
		c := NewClient(url, nil)
		if c.Configured() {
			t.Errorf("%q should not be configured", url)
		}
		var pe *PushError
		if err := c.PushOverpayment(context.Background(), event()); !errors.As(err, &pe) || pe.Code != "NOT_CONFIGURED" {
			t.Errorf("%q: got %v", url, err)
		}
	}
}

func TestPushOverpayment_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := NewClient(srv.URL, nil).PushOverpayment(ctx, event())
	if err == nil || !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestResolvingClient(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	url := ""
	c := NewResolvingClient(func(context.Context) (string, error) { return url, nil }, nil)
	ctx := context.Background()

	if c.Configured(ctx) {
		t.Error("empty url should not be configured")
	}
	if err := c.Send(ctx, event()); err == nil {
		t.Error("expected error without url")
	}

	url = srv.URL
	if !c.Configured(ctx) {
		t.Error("url should now be configured")
	}
	if err := c.Send(ctx, event()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if hits != 1 {
		t.Errorf("hits = %d", hits)
	}

	failing := NewResolvingClient(func(context.Context) (string, error) { return "", errors.New("db down") }, nil)
	if failing.Configured(ctx) {
		t.Error("resolve error should mean not configured")
	}
	if err := failing.Send(ctx, event()); err == nil || !strings.Contains(err.Error(), "db down") {
		t.Errorf("got %v", err)
	}
}
