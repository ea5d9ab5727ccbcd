// Package algo implements the algorithm framework: the lifecycle state
// machine shared by every strategy/execution algorithm, the capability-set
// interface each algorithm implements, and concrete momentum,
// mean-reversion, TWAP and VWAP algorithms. The capability-set interface
// (rather than a class hierarchy) is grounded on the teacher's
// strategy.Strategy interface plus its SignalBuilder fluent builder.
package algo

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/types"
)

// Signal is an algorithm's instruction to trade, analogous to the
// teacher's strategy.Signal but expressed in fixed-point prices.
type Signal struct {
	Symbol     string
	Side       types.OrderSide
	Quantity   int64
	LimitPrice types.Price
	Reason     string
}

// RiskApprover lets an algorithm check a signal against the risk engine
// without importing the concrete risk.Gate type (adapter pattern, grounded
// on the teacher's risk.RiskGateAdapter / strategy.TradeApprover split).
type RiskApprover interface {
	Approve(signal Signal) (approved bool, reason string)
}

// OrderSubmitter lets an algorithm place orders without depending on the
// engine package directly.
type OrderSubmitter interface {
	Submit(signal Signal) (clientOrderID string, err error)
}

// Algorithm is the capability set every strategy/execution algorithm
// implements. Not every algorithm uses every method meaningfully (a TWAP
// has no use for OnFill-driven re-signalling the way a momentum strategy
// does) but all must satisfy the interface so the engine can manage any of
// them uniformly.
type Algorithm interface {
	ID() string
	Kind() string
	Symbol() string
	State() types.StrategyLifecycle

	Initialize() error
	Start() error
	Pause() error
	Resume() error
	Cancel() error

	OnQuote(q types.Quote)
	OnFill(t types.Trade)
	OnTimer(now time.Time)

	Progress() Progress
}

// Progress is a snapshot of an algorithm's execution state, analogous to
// spec's getProgress() query.
type Progress struct {
	State         types.StrategyLifecycle
	FilledQty     int64
	TargetQty     int64
	LastSignal    *Signal
	LastUpdatedAt time.Time
}

// base provides the shared lifecycle plumbing (state machine + guards) that
// every concrete algorithm embeds, mirroring how the teacher's strategies
// all share the Strategy interface's Enabled/Config contract.
type base struct {
	mu       sync.RWMutex
	id       string
	kind     string
	symbol   string
	state    types.StrategyLifecycle
	progress Progress
}

func newBase(id, kind, symbol string) base {
	return base{id: id, kind: kind, symbol: symbol, state: types.StrategyNew}
}

func (b *base) ID() string     { return b.id }
func (b *base) Kind() string   { return b.kind }
func (b *base) Symbol() string { return b.symbol }

func (b *base) State() types.StrategyLifecycle {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *base) Progress() Progress {
	b.mu.RLock()
	defer b.mu.RUnlock()
	p := b.progress
	p.State = b.state
	return p
}

// transition enforces the NEW -> INITIALIZED -> RUNNING <-> PAUSED ->
// {CANCELLED, COMPLETED, FAILED} graph from spec §4.6.
func (b *base) transition(to types.StrategyLifecycle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !algoCanTransition(b.state, to) {
		return fmt.Errorf("%w: %s -> %s", types.ErrIllegalTransition, b.state, to)
	}
	b.state = to
	log.Debug().Str("strategy", b.id).Str("state", to.String()).Msg("algo: state transition")
	return nil
}

func algoCanTransition(from, to types.StrategyLifecycle) bool {
	switch from {
	case types.StrategyNew:
		return to == types.StrategyInitialized || to == types.StrategyFailed
	case types.StrategyInitialized:
		return to == types.StrategyRunning || to == types.StrategyCancelled || to == types.StrategyFailed
	case types.StrategyRunning:
		return to == types.StrategyPaused || to == types.StrategyCancelled || to == types.StrategyCompleted || to == types.StrategyFailed
	case types.StrategyPaused:
		return to == types.StrategyRunning || to == types.StrategyCancelled || to == types.StrategyFailed
	default:
		return false
	}
}

func (b *base) setProgress(filled, target int64, last *Signal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.progress.FilledQty = filled
	b.progress.TargetQty = target
	b.progress.LastSignal = last
	b.progress.LastUpdatedAt = time.Now()
}
