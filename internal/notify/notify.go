// Package notify forwards newly recorded overpayments to external sinks
// without making the caller wait for them.
package notify

import (
	"context"
	"sync"
	"time"

	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
)

// Sink receives one overpayment event.
type Sink interface {
	Name() string
	Send(ctx context.Context, ev model.OverpaymentEvent) error
}

type State string

const (
	StateIdle    State = "idle"
	StateSending State = "sending"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Status describes the latest push attempt.
type Status struct {
	EventID string    `json:"eventId,omitempty"`
	Sink    string    `json:"sink,omitempty"`
	State   State     `json:"state"`
	Err     string    `json:"error,omitempty"`
	At      time.Time `json:"at"`
}

const (
	DefaultTimeout    = 30 * time.Second
	DefaultResetAfter = 3 * time.Second
)

type Option func(*Dispatcher)

// WithTimeout bounds each send.
func WithTimeout(d time.Duration) Option { return func(x *Dispatcher) { x.timeout = d } }

// WithResetAfter sets how long a success stays visible before going idle.
func WithResetAfter(d time.Duration) Option { return func(x *Dispatcher) { x.resetAfter = d } }

// Dispatcher runs sends in the background and tracks their outcome.
// Status updates are also published on Statuses(); slow readers miss updates
// rather than blocking the sender.
type Dispatcher struct {
	sink       Sink
	logger     *log.Logger
	timeout    time.Duration
	resetAfter time.Duration

	mu       sync.Mutex
	last     Status
	closing  bool // no new submissions
	done     bool // statuses closed
	timer    *time.Timer
	statuses chan Status

	wg sync.WaitGroup
}

func NewDispatcher(sink Sink, logger *log.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		sink:       sink,
		logger:     logging.OrDiscard(logger),
		timeout:    DefaultTimeout,
		resetAfter: DefaultResetAfter,
		last:       Status{State: StateIdle, At: time.Now()},
		statuses:   make(chan Status, 16),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Submit starts sending ev and returns immediately. It reports false when
// there is nothing to send to or the dispatcher is closed.
func (d *Dispatcher) Submit(ev model.OverpaymentEvent) bool {
	if d == nil || d.sink == nil {
		return false
	}
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return false
	}
	d.wg.Add(1)
	d.setLocked(Status{EventID: ev.ID, Sink: d.sink.Name(), State: StateSending})
	d.mu.Unlock()

	go d.send(ev)
	return true
}

func (d *Dispatcher) send(ev model.OverpaymentEvent) {
	defer d.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.sink.Send(ctx, ev)

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.logger.Error("failed to push overpayment", "sink", d.sink.Name(), "id", ev.ID, "err", err)
		d.setLocked(Status{EventID: ev.ID, Sink: d.sink.Name(), State: StateError, Err: err.Error()})
		return
	}
	d.logger.Info("pushed overpayment", "sink", d.sink.Name(), "id", ev.ID, "date", ev.DateString(), "amount", ev.Amount)
	d.setLocked(Status{EventID: ev.ID, Sink: d.sink.Name(), State: StateSuccess})

	if d.closing {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.resetAfter, func() { d.resetIfSuccess(ev.ID) })
}

func (d *Dispatcher) resetIfSuccess(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.done || d.last.State != StateSuccess || d.last.EventID != id {
		return
	}
	d.setLocked(Status{State: StateIdle})
}

// setLocked records s and offers it to Statuses. d.mu must be held.
func (d *Dispatcher) setLocked(s Status) {
	s.At = time.Now()
	d.last = s
	if d.done {
		return
	}
	select {
	case d.statuses <- s:
	default:
	}
}

// Last returns the most recent status.
func (d *Dispatcher) Last() Status {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *Dispatcher) Statuses() <-chan Status { return d.statuses }

// Close waits for in-flight sends, then closes the status channel.
// Sends already submitted still publish their final status.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closing {
		d.mu.Unlock()
		return
	}
	d.closing = true
	d.mu.Unlock()

	d.wg.Wait()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.done = true
	close(d.statuses)
}
