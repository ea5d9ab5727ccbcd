package algo

import (
	"time"

	"github.com/arrowlane/hft-engine/types"
)

// Momentum is a dual-EMA-crossover alpha strategy: a fast EMA crossing
// above a slow EMA signals BUY, crossing below signals SELL. Grounded on
// the teacher's internal/indicators.EMA plus strategy.Strategy's
// OnTick-driven signal shape.
type Momentum struct {
	base
	fastPeriod, slowPeriod int
	quantity               int64
	prices                 []int64
	lastFast, lastSlow     int64
	haveLast               bool
	risk                   RiskApprover
	submit                 OrderSubmitter
}

// NewMomentum creates a dual-EMA momentum algorithm on symbol, sizing each
// signal at quantity units.
func NewMomentum(id, symbol string, fastPeriod, slowPeriod int, quantity int64, risk RiskApprover, submit OrderSubmitter) *Momentum {
	return &Momentum{
		base:       newBase(id, "momentum", symbol),
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
		quantity:   quantity,
		risk:       risk,
		submit:     submit,
	}
}

func (m *Momentum) Initialize() error { return m.transition(types.StrategyInitialized) }
func (m *Momentum) Start() error      { return m.transition(types.StrategyRunning) }
func (m *Momentum) Pause() error      { return m.transition(types.StrategyPaused) }
func (m *Momentum) Resume() error     { return m.transition(types.StrategyRunning) }
func (m *Momentum) Cancel() error     { return m.transition(types.StrategyCancelled) }

func (m *Momentum) OnQuote(q types.Quote) {
	if m.State() != types.StrategyRunning {
		return
	}
	mid := (q.BidPrice + q.AskPrice) / 2
	m.prices = append(m.prices, mid)
	if len(m.prices) > m.slowPeriod*4 {
		m.prices = m.prices[len(m.prices)-m.slowPeriod*4:]
	}

	fastSeries := EMA(m.prices, m.fastPeriod)
	slowSeries := EMA(m.prices, m.slowPeriod)
	if fastSeries == nil || slowSeries == nil {
		return
	}
	fast := fastSeries[len(fastSeries)-1]
	slow := slowSeries[len(slowSeries)-1]

	if !m.haveLast {
		m.lastFast, m.lastSlow, m.haveLast = fast, slow, true
		return
	}

	crossedUp := m.lastFast <= m.lastSlow && fast > slow
	crossedDown := m.lastFast >= m.lastSlow && fast < slow
	m.lastFast, m.lastSlow = fast, slow

	var side types.OrderSide
	switch {
	case crossedUp:
		side = types.Buy
	case crossedDown:
		side = types.Sell
	default:
		return
	}

	signal := Signal{Symbol: m.Symbol(), Side: side, Quantity: m.quantity, LimitPrice: mid, Reason: "ema_crossover"}
	if m.risk != nil {
		if ok, reason := m.risk.Approve(signal); !ok {
			m.setProgress(0, m.quantity, &signal)
			_ = reason
			return
		}
	}
	if m.submit != nil {
		m.submit.Submit(signal)
	}
	m.setProgress(m.quantity, m.quantity, &signal)
}

func (m *Momentum) OnFill(t types.Trade)     {}
func (m *Momentum) OnTimer(now time.Time)    {}
