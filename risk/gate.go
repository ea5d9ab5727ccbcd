// Package risk implements the pre-trade risk gate: an enable flag, a
// circuit breaker, and a priority-ordered chain of limit rules. Structure
// is grounded on the teacher's risk.RiskGate (hard-block-then-size-check
// shape) and risk.CircuitBreaker (trip/reset/cooldown state machine),
// generalized into the named rule chain the trading engine requires:
// MaxOrderSize, MaxOrderNotional, MaxPositionSize, MaxNetExposure,
// MaxGrossExposure, MaxDailyOrders, MaxDailyNotional, MaxDailyLoss.
package risk

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/types"
)

var (
	ErrTradingDisabled = errors.New("risk: trading disabled")
	ErrCircuitOpen     = errors.New("risk: circuit breaker open")
)

// Limits is the configuration surface for the rule chain (spec §6).
type Limits struct {
	MaxOrderSize     int64
	MaxOrderNotional int64 // cents
	MaxPositionSize  int64
	MaxNetExposure   int64 // cents
	MaxGrossExposure int64 // cents
	MaxDailyOrders   int64
	MaxDailyNotional int64 // cents
	MaxDailyLoss     int64 // cents, positive magnitude

	CircuitBreakerFailureThreshold int
	CircuitBreakerCooldown         time.Duration
}

// Intent is the pre-trade request submitted to the gate.
type Intent struct {
	Symbol        string
	Side          types.OrderSide
	Quantity      int64
	Price         types.Price
	Scale         types.Scale
	CurrentNetPos int64
}

// Decision is the gate's verdict on an Intent.
type Decision struct {
	Approved bool
	Reason   string
}

// PositionView lets the gate query current exposure without importing the
// positions package directly (keeps risk decoupled from the position book's
// concrete type, mirroring the teacher's adapter pattern between packages).
type PositionView interface {
	NetExposure() int64
	GrossExposure() int64
}

// Gate is the pre-trade risk engine.
type Gate struct {
	mu      sync.Mutex
	enabled bool
	limits  Limits
	breaker *CircuitBreaker
	posView PositionView

	dailyOrders   int64
	dailyNotional int64
	dailyLoss     int64
	dayStamp      string
}

// NewGate creates an enabled gate with the given limits and position view.
func NewGate(limits Limits, posView PositionView) *Gate {
	return &Gate{
		enabled:  true,
		limits:   limits,
		breaker:  NewCircuitBreaker(limits.CircuitBreakerFailureThreshold, limits.CircuitBreakerCooldown),
		posView:  posView,
		dayStamp: currentDay(),
	}
}

// Enable/Disable toggle the gate's master switch; while it is off, Evaluate
// rejects every intent and the process stays up. Nothing in the engine
// calls Disable.
func (g *Gate) Enable() { g.mu.Lock(); g.enabled = true; g.mu.Unlock() }
func (g *Gate) Disable(reason string) {
	g.mu.Lock()
	g.enabled = false
	g.mu.Unlock()
	log.Warn().Str("reason", reason).Msg("risk: trading disabled")
}

// Evaluate runs the gate sequence: enabled flag, circuit breaker, then the
// ordered rule chain. The first failing check short-circuits the rest.
func (g *Gate) Evaluate(intent Intent) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.maybeResetDay()

	if !g.enabled {
		return Decision{Approved: false, Reason: ErrTradingDisabled.Error()}
	}
	if !g.breaker.TryAcquire() {
		return Decision{Approved: false, Reason: ErrCircuitOpen.Error()}
	}

	scale := intent.Scale
	if scale == 0 {
		scale = types.DefaultScale
	}
	notional := intent.Quantity * intent.Price / scale

	if d := g.checkMaxOrderSize(intent); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxOrderNotional(notional); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxPositionSize(intent); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxNetExposure(); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxGrossExposure(); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxDailyOrders(); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxDailyNotional(notional); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}
	if d := g.checkMaxDailyLoss(); !d.Approved {
		g.breaker.RecordFailure()
		return d
	}

	g.dailyOrders++
	g.dailyNotional += notional
	return Decision{Approved: true}
}

func (g *Gate) checkMaxOrderSize(intent Intent) Decision {
	if g.limits.MaxOrderSize > 0 && intent.Quantity > g.limits.MaxOrderSize {
		return reject("MaxOrderSize")
	}
	return approve()
}

func (g *Gate) checkMaxOrderNotional(notional int64) Decision {
	if g.limits.MaxOrderNotional > 0 && notional > g.limits.MaxOrderNotional {
		return reject("MaxOrderNotional")
	}
	return approve()
}

func (g *Gate) checkMaxPositionSize(intent Intent) Decision {
	delta := intent.Quantity
	if intent.Side == types.Sell {
		delta = -delta
	}
	projected := intent.CurrentNetPos + delta
	if g.limits.MaxPositionSize > 0 && absInt64(projected) > g.limits.MaxPositionSize {
		return reject("MaxPositionSize")
	}
	return approve()
}

func (g *Gate) checkMaxNetExposure() Decision {
	if g.posView == nil || g.limits.MaxNetExposure <= 0 {
		return approve()
	}
	if absInt64(g.posView.NetExposure()) > g.limits.MaxNetExposure {
		return reject("MaxNetExposure")
	}
	return approve()
}

func (g *Gate) checkMaxGrossExposure() Decision {
	if g.posView == nil || g.limits.MaxGrossExposure <= 0 {
		return approve()
	}
	if g.posView.GrossExposure() > g.limits.MaxGrossExposure {
		return reject("MaxGrossExposure")
	}
	return approve()
}

func (g *Gate) checkMaxDailyOrders() Decision {
	if g.limits.MaxDailyOrders > 0 && g.dailyOrders >= g.limits.MaxDailyOrders {
		return reject("MaxDailyOrders")
	}
	return approve()
}

func (g *Gate) checkMaxDailyNotional(notional int64) Decision {
	if g.limits.MaxDailyNotional > 0 && g.dailyNotional+notional > g.limits.MaxDailyNotional {
		return reject("MaxDailyNotional")
	}
	return approve()
}

func (g *Gate) checkMaxDailyLoss() Decision {
	if g.limits.MaxDailyLoss > 0 && g.dailyLoss >= g.limits.MaxDailyLoss {
		return reject("MaxDailyLoss")
	}
	return approve()
}

// RecordFill updates daily-loss tracking and the circuit breaker after a
// trade's PnL is realized. Losing trades count toward the breaker's
// consecutive-failure threshold; winning trades reset it.
func (g *Gate) RecordFill(pnlCents int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.maybeResetDay()
	if pnlCents < 0 {
		g.dailyLoss += -pnlCents
		g.breaker.RecordFailure()
	} else {
		g.breaker.RecordSuccess()
	}
}

// resetDailyCountersOnly clears order/notional/loss counters for a new
// trading day. Circuit breaker failure state is NOT cleared here: an open
// breaker tripped by a cluster of losses right before midnight should still
// require its own cooldown/probe cycle rather than silently resetting at
// the day boundary (see DESIGN.md Open Question (b)).
func (g *Gate) resetDailyCountersOnly() {
	g.dailyOrders = 0
	g.dailyNotional = 0
	g.dailyLoss = 0
}

func (g *Gate) maybeResetDay() {
	today := currentDay()
	if today != g.dayStamp {
		g.dayStamp = today
		g.resetDailyCountersOnly()
		log.Info().Msg("risk: daily counters reset")
	}
}

// CircuitState exposes the breaker's current state for snapshots/metrics.
func (g *Gate) CircuitState() BreakerState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.breaker.State()
}

func currentDay() string {
	return time.Now().UTC().Format("2006-01-02")
}

func reject(rule string) Decision { return Decision{Approved: false, Reason: rule} }
func approve() Decision           { return Decision{Approved: true} }
func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
