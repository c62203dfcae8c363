package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"loan-overpay/internal/model"

	"github.com/rabbitmq/amqp091-go"
)

type fakeSink struct {
	mu    sync.Mutex
	got   []model.OverpaymentEvent
	err   error
	delay time.Duration
}

func (f *fakeSink) Name() string { return "fake" }

func (f *fakeSink) Send(ctx context.Context, ev model.OverpaymentEvent) error {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, ev)
	return f.err
}

func (f *fakeSink) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.got)
}

func ev(id string) model.OverpaymentEvent {
	return model.NewOneTime(id, time.Date(2025, 4, 21, 0, 0, 0, 0, time.UTC), 1000)
}

func collect(ch <-chan Status) []Status {
	var out []Status
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestDispatcher_Success(t *testing.T) {
	sink := &fakeSink{}
	d := NewDispatcher(sink, nil, WithResetAfter(time.Hour))

	if !d.Submit(ev("a")) {
		t.Fatal("Submit returned false")
	}
	d.Close()

	if sink.count() != 1 {
		t.Fatalf("sink received %d events", sink.count())
	}
	states := collect(d.Statuses())
	if len(states) != 2 || states[0].State != StateSending || states[1].State != StateSuccess {
		t.Fatalf("states = %+v", states)
	}
	if states[1].EventID != "a" || states[1].Sink != "fake" {
		t.Errorf("final status = %+v", states[1])
	}
	if d.Last().State != StateSuccess {
		t.Errorf("last = %+v", d.Last())
	}
}

func TestDispatcher_Error(t *testing.T) {
	sink := &fakeSink{err: errors.New("boom")}
	d := NewDispatcher(sink, nil)
	d.Submit(ev("a"))
	d.Close()

	last := d.Last()
	if last.State != StateError || last.Err != "boom" {
		t.Errorf("last = %+v", last)
	}
}

func TestDispatcher_SubmitDoesNotBlock(t *testing.T) {
	sink := &fakeSink{delay: 200 * time.Millisecond}
	d := NewDispatcher(sink, nil)

	start := time.Now()
	d.Submit(ev("slow"))
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("Submit blocked for %v", elapsed)
	}
	if d.Last().State != StateSending {
		t.Errorf("expected sending, got %+v", d.Last())
	}
	d.Close()
	if sink.count() != 1 {
		t.Error("Close returned before the send finished")
	}
}

func TestDispatcher_SuccessResetsToIdle(t *testing.T) {
	d := NewDispatcher(&fakeSink{}, nil, WithResetAfter(20*time.Millisecond))
	defer d.Close()
	d.Submit(ev("a"))

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d.Last().State == StateIdle {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status never returned to idle: %+v", d.Last())
}

func TestDispatcher_Timeout(t *testing.T) {
	d := NewDispatcher(&fakeSink{delay: time.Second}, nil, WithTimeout(10*time.Millisecond))
	d.Submit(ev("a"))
	d.Close()
	if last := d.Last(); last.State != StateError {
		t.Errorf("expected timeout error, got %+v", last)
	}
}

func TestDispatcher_ClosedAndNil(t *testing.T) {
	d := NewDispatcher(&fakeSink{}, nil)
	d.Close()
	d.Close()
	if d.Submit(ev("late")) {
		t.Error("Submit after Close should report false")
	}

	noSink := NewDispatcher(nil, nil)
	if noSink.Submit(ev("x")) {
		t.Error("Submit without sink should report false")
	}
}

type fakePublisher struct {
	exchange, key string
	msg           amqp091.Publishing
	err           error
}

func (p *fakePublisher) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp091.Publishing) error {
	p.exchange, p.key, p.msg = exchange, key, msg
	return p.err
}

func TestAMQPSink_Send(t *testing.T) {
	pub := &fakePublisher{}
	s := &AMQPSink{pub: pub, exchange: "loan-overpay", queue: "overpayments"}

	if err := s.Send(context.Background(), ev("42")); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if pub.exchange != "loan-overpay" || pub.key != "overpayments" {
		t.Errorf("routed to %s/%s", pub.exchange, pub.key)
	}
	if pub.msg.ContentType != "application/json" || pub.msg.DeliveryMode != amqp091.Persistent || pub.msg.MessageId != "42" {
		t.Errorf("publishing = %+v", pub.msg)
	}
	var body map[string]any
	if err := json.Unmarshal(pub.msg.Body, &body); err != nil {
		t.Fatal(err)
	}
	if body["id"] != "42" || body["date"] != "2025-04-21" || body["type"] != "one-time" {
		t.Errorf("body = %v", body)
	}

	pub.err = errors.New("channel closed")
	if err := s.Send(context.Background(), ev("43")); err == nil {
		t.Error("expected publish error")
	}
}
