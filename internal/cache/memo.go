package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync/atomic"
	"time"

	"loan-overpay/internal/amortization"
	"loan-overpay/internal/calendar"
	"loan-overpay/internal/logging"
	"loan-overpay/internal/model"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Input is everything a simulation depends on.
type Input struct {
	Loan         model.LoanConfig
	Overpayments []model.OverpaymentEvent
	Recurring    float64
	Now          time.Time
}

type keyLoan struct {
	Amount       float64 `json:"amount"`
	InterestRate float64 `json:"interestRate"`
	Installment  float64 `json:"installment"`
	StartDate    string  `json:"startDate"`
}

type keyDoc struct {
	Loan         keyLoan                  `json:"loan"`
	Overpayments []model.OverpaymentEvent `json:"overpayments"`
	Recurring    float64                  `json:"recurring"`
	NowMonth     string                   `json:"nowMonth"`
}

// Key hashes the canonical JSON of in. Only the month of Now takes part:
// the recurring amount is matched by month, so any day in it gives the
// same result. Inputs that cannot be encoded (NaN or Inf amounts) have no
// key and return "".
func Key(in Input) string {
	doc := keyDoc{
		Loan: keyLoan{
			Amount:       in.Loan.Amount,
			InterestRate: in.Loan.InterestRate,
			Installment:  in.Loan.Installment,
			StartDate:    calendar.FormatDate(in.Loan.StartDate),
		},
		Overpayments: in.Overpayments,
		Recurring:    in.Recurring,
		NowMonth:     in.Now.Format("2006-01"),
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// Memo runs simulations through a cache, collapsing concurrent identical
// requests into one computation. A nil Cache disables storage but keeps
// the deduplication.
type Memo struct {
	cache  Cache
	engine *amortization.Engine
	logger *log.Logger
	group  singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

func NewMemo(c Cache, logger *log.Logger) *Memo {
	return &Memo{cache: c, engine: amortization.New(), logger: logging.OrDiscard(logger)}
}

// Simulate returns the cached result for in, computing and storing it on a
// miss. Cache failures are logged and never fail the call.
func (m *Memo) Simulate(ctx context.Context, in Input) amortization.SimulationResult {
	key := Key(in)
	if key == "" {
		m.misses.Add(1)
		return m.engine.Simulate(in.Loan, in.Overpayments, in.Recurring, in.Now)
	}

	if m.cache != nil {
		if raw, ok, err := m.cache.Get(ctx, key); err != nil {
			m.logger.Warn("cache get failed", "err", err)
		} else if ok {
			var res amortization.SimulationResult
			if err := json.Unmarshal(raw, &res); err == nil {
				m.hits.Add(1)
				m.logger.Debug("cache hit", "key", key[:12])
				return res
			}
			m.logger.Warn("discarding undecodable cache entry", "key", key[:12])
		}
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		m.misses.Add(1)
		res := m.engine.Simulate(in.Loan, in.Overpayments, in.Recurring, in.Now)
		if m.cache != nil {
			if raw, err := json.Marshal(res); err != nil {
				m.logger.Warn("cache encode failed", "err", err)
			} else if err := m.cache.Set(ctx, key, raw); err != nil {
				m.logger.Warn("cache set failed", "err", err)
			}
		}
		return res, nil
	})
	res, ok := v.(amortization.SimulationResult)
	if err != nil || !ok {
		m.logger.Warn("shared simulation unavailable, computing directly", "key", key[:12], "err", err)
		return m.engine.Simulate(in.Loan, in.Overpayments, in.Recurring, in.Now)
	}
	return res
}

// Stats reports cache hits and computed misses so far.
func (m *Memo) Stats() (hits, misses int64) {
	return m.hits.Load(), m.misses.Load()
}
