// Package engine provides the trading engine façade: the single entry
// point that wires the ring, order manager, position manager, risk gate,
// journals and algorithms together and exposes Start/Stop/SubmitOrder plus
// snapshot/callback accessors. Grounded on the teacher's core.Engine
// (RWMutex-guarded running state, goroutine main loop, stats counters,
// GetSnapshot-style accessors) and core.Router (quote fan-out to
// subscribed algorithms).
package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/algo"
	"github.com/arrowlane/hft-engine/journal"
	"github.com/arrowlane/hft-engine/metrics"
	"github.com/arrowlane/hft-engine/orders"
	"github.com/arrowlane/hft-engine/port"
	"github.com/arrowlane/hft-engine/positions"
	"github.com/arrowlane/hft-engine/ring"
	"github.com/arrowlane/hft-engine/risk"
	"github.com/arrowlane/hft-engine/types"
)

// OrderListener is notified of every order status change.
type OrderListener interface {
	OnOrderUpdate(order types.Order)
}

// PositionListener is notified of every position update.
type PositionListener interface {
	OnPositionUpdate(position types.Position)
}

// Config bundles everything the engine needs to start.
type Config struct {
	RingCapacity uint64
	Symbols      []types.Symbol
	Journals     *journal.Root
	RiskLimits   risk.Limits
	OrderPort    port.OrderPort
	Metrics      *metrics.Registry
}

// Engine is the trading engine façade.
type Engine struct {
	mu      sync.RWMutex
	running bool

	ring       *ring.Ring
	orderMgr   *orders.Manager
	posMgr     *positions.Manager
	gate       *risk.Gate
	journals   *journal.Root
	orderPort  port.OrderPort
	metrics    *metrics.Registry
	symbols    map[string]types.Symbol

	router *Router

	ringCapacity    uint64
	ordersProcessed atomic.Int64
	tradesExecuted  atomic.Int64
	startedAt       time.Time

	orderListeners    []OrderListener
	positionListeners []PositionListener

	stopCh chan struct{}
}

// New wires every component but does not start the pipeline.
func New(cfg Config) (*Engine, error) {
	capacity := cfg.RingCapacity
	if capacity == 0 {
		capacity = 65536
	}

	e := &Engine{
		orderMgr:     orders.NewManager(),
		posMgr:       positions.NewManager(),
		journals:     cfg.Journals,
		orderPort:    cfg.OrderPort,
		metrics:      cfg.Metrics,
		symbols:      make(map[string]types.Symbol),
		router:       NewRouter(),
		ringCapacity: capacity,
	}
	for _, s := range cfg.Symbols {
		e.symbols[s.Name] = s
	}

	e.gate = risk.NewGate(cfg.RiskLimits, e.posMgr)

	orderStage := &ring.Stage{Name: "OrderHandler", Handler: e.handleOrderEvent}
	positionStage := &ring.Stage{Name: "PositionHandler", Handler: e.handlePositionEvent}
	metricsStage := &ring.Stage{Name: "MetricsHandler", Handler: e.handleMetricsEvent}

	r, err := ring.New(capacity, orderStage, positionStage, metricsStage)
	if err != nil {
		return nil, fmt.Errorf("engine: ring: %w", err)
	}
	e.ring = r

	if cfg.OrderPort != nil {
		cfg.OrderPort.SetFillListener(port.FillListenerFunc(e.onVenueFill))
	}

	return e, nil
}

// RiskApprover returns an algo.RiskApprover bound to this engine's gate,
// for wiring into algorithms constructed by callers.
func (e *Engine) RiskApprover() algo.RiskApprover {
	return &risk.GateAdapter{Gate: e.gate, NetPosition: func(symbol string) int64 {
		return e.posMgr.Get(symbol, types.DefaultScale).NetQuantity
	}}
}

// OrderSubmitter returns an algo.OrderSubmitter that routes signals through
// SubmitOrder.
func (e *Engine) OrderSubmitter() algo.OrderSubmitter {
	return submitterFunc(func(s algo.Signal) (string, error) {
		scale := types.DefaultScale
		if sym, ok := e.symbols[s.Symbol]; ok {
			scale = sym.Scale
		}
		return e.SubmitOrder(types.Order{
			Symbol:     s.Symbol,
			Side:       s.Side,
			Type:       types.Limit,
			LimitPrice: s.LimitPrice,
			Scale:      scale,
			Quantity:   s.Quantity,
		})
	})
}

type submitterFunc func(algo.Signal) (string, error)

func (f submitterFunc) Submit(s algo.Signal) (string, error) { return f(s) }

// RestoreFromJournals rebuilds the order and position books from the
// journal's replayed indices — the cold-start path (spec §4.5, §8 S7).
func (e *Engine) RestoreFromJournals() error {
	if err := e.journals.Rebuild(); err != nil {
		return err
	}
	for _, p := range e.journals.Positions.All() {
		e.posMgr.Restore(p)
	}
	for _, o := range e.journals.Orders.All() {
		e.orderMgr.Restore(o)
	}
	log.Info().Int("orders", len(e.journals.Orders.All())).
		Int("positions", len(e.journals.Positions.All())).
		Msg("engine: restored from journals")
	return nil
}

// Start launches the ring pipeline.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.startedAt = time.Now()
	e.mu.Unlock()

	e.ring.Start()
	log.Info().Msg("engine: started")
	return nil
}

// Stop drains in-flight events and shuts the pipeline down.
func (e *Engine) Stop() error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()

	e.ring.Shutdown()
	log.Info().Msg("engine: stopped")
	return nil
}

// SubmitOrder runs the order through the risk gate, persists it, and if
// approved publishes a NEW_ORDER event into the ring and forwards it to the
// order port.
func (e *Engine) SubmitOrder(o types.Order) (string, error) {
	if o.ClientOrderID == "" {
		o.ClientOrderID = e.orderMgr.NextClientOrderID()
	}

	// A known symbol's scale is authoritative. An order quoting a different
	// scale is rejected outright rather than silently rescaled, since a
	// scale mismatch on the order path (as opposed to the cross-symbol
	// aggregation normalizeToCents already does deliberately) almost always
	// indicates a caller bug and must not be allowed to reach the book at
	// the wrong magnitude (see DESIGN.md Open Question (a)).
	if sym, ok := e.symbols[o.Symbol]; ok && o.Scale != 0 && o.Scale != sym.Scale {
		e.audit(types.AuditError, "engine", fmt.Sprintf("scale mismatch: order scale=%d symbol scale=%d", o.Scale, sym.Scale), o.Symbol)
		return "", fmt.Errorf("%w: order scale %d != symbol scale %d", types.ErrPriceScaleMismatch, o.Scale, sym.Scale)
	}

	current := e.posMgr.Get(o.Symbol, o.Scale).NetQuantity
	start := time.Now()
	decision := e.gate.Evaluate(risk.Intent{
		Symbol: o.Symbol, Side: o.Side, Quantity: o.Quantity,
		Price: o.LimitPrice, Scale: o.Scale, CurrentNetPos: current,
	})
	if e.metrics != nil {
		metrics.ObserveSince(e.metrics.PreTradeLatency, start)
	}
	if !decision.Approved {
		if e.metrics != nil {
			e.metrics.RiskRejections.WithLabelValues(decision.Reason).Inc()
		}
		e.audit(types.AuditWarn, "risk", fmt.Sprintf("rejected: %s", decision.Reason), o.Symbol)
		return "", fmt.Errorf("risk: rejected by %s", decision.Reason)
	}

	created, err := e.orderMgr.Create(o)
	if err != nil {
		return "", err
	}
	if e.journals != nil {
		e.journals.Orders.Append(*created)
	}

	if _, err := e.ring.Publish(types.Event{Type: types.EventNewOrder, Order: *created, OccurredAt: time.Now()}); err != nil {
		log.Error().Err(err).Msg("engine: ring publish failed")
	}
	if e.metrics != nil {
		e.metrics.OrdersSubmitted.Inc()
	}
	e.ordersProcessed.Add(1)

	if e.orderPort != nil {
		go e.forwardToVenue(*created)
	}
	return created.ClientOrderID, nil
}

func (e *Engine) forwardToVenue(o types.Order) {
	ack, err := e.orderPort.Submit(context.Background(), o)
	if err != nil {
		e.orderMgr.Transition(o.ClientOrderID, types.StatusRejected)
		return
	}
	o.ExchangeID = ack.ExchangeID
	e.orderMgr.Transition(o.ClientOrderID, types.StatusAccepted)
}

func (e *Engine) onVenueFill(trade types.Trade) {
	e.ring.Publish(types.Event{Type: types.EventFill, Trade: trade, OccurredAt: time.Now()})
}

func (e *Engine) handleOrderEvent(seq uint64, event *types.Event) {
	switch event.Type {
	case types.EventFill:
		updated, err := e.orderMgr.ApplyFill(event.Trade.ClientOrderID, event.Trade.Price, event.Trade.Quantity)
		if err != nil {
			log.Warn().Err(err).Str("order", event.Trade.ClientOrderID).Msg("engine: apply fill failed")
			return
		}
		if e.journals != nil {
			e.journals.Orders.Append(updated)
			e.journals.Trades.Append(event.Trade)
		}
		e.notifyOrder(updated)
	}
}

func (e *Engine) handlePositionEvent(seq uint64, event *types.Event) {
	if event.Type != types.EventFill {
		return
	}
	prevRealized := e.posMgr.Get(event.Trade.Symbol, event.Trade.Scale).RealizedPnL
	pos := e.posMgr.ApplyFill(event.Trade)
	if e.journals != nil {
		e.journals.Positions.Append(pos)
	}
	e.tradesExecuted.Add(1)
	e.gate.RecordFill(types.Normalize(pos.RealizedPnL-prevRealized, pos.Scale, types.DefaultScale))
	e.notifyPosition(pos)
}

func (e *Engine) handleMetricsEvent(seq uint64, event *types.Event) {
	if e.metrics == nil {
		return
	}
	switch event.Type {
	case types.EventFill:
		e.metrics.OrdersFilled.Inc()
	}
}

func (e *Engine) audit(sev types.AuditSeverity, source, msg, symbol string) {
	if e.journals == nil {
		return
	}
	e.journals.Audit.Append(types.AuditEvent{
		Severity: sev, Source: source, Message: msg, Symbol: symbol, Timestamp: time.Now(),
	})
}

// AddOrderListener registers a callback for order status changes.
func (e *Engine) AddOrderListener(l OrderListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.orderListeners = append(e.orderListeners, l)
}

// AddPositionListener registers a callback for position updates.
func (e *Engine) AddPositionListener(l PositionListener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positionListeners = append(e.positionListeners, l)
}

func (e *Engine) notifyOrder(o types.Order) {
	e.mu.RLock()
	ls := append([]OrderListener(nil), e.orderListeners...)
	e.mu.RUnlock()
	for _, l := range ls {
		l.OnOrderUpdate(o)
	}
}

func (e *Engine) notifyPosition(p types.Position) {
	e.mu.RLock()
	ls := append([]PositionListener(nil), e.positionListeners...)
	e.mu.RUnlock()
	for _, l := range ls {
		l.OnPositionUpdate(p)
	}
}

// Snapshot is a point-in-time read model of engine state, matching spec
// §4.7's getSnapshot() contract.
type Snapshot struct {
	Running            bool
	RingBufferCapacity uint64
	OrdersProcessed    int64
	TradesExecuted     int64
	ActiveStrategies   int
	OpenPositions      int
	PendingOrders      int
	UptimeMillis       int64
}

// GetSnapshot returns a consistent-enough snapshot of engine state for
// dashboards/operators.
func (e *Engine) GetSnapshot() Snapshot {
	e.mu.RLock()
	running := e.running
	startedAt := e.startedAt
	e.mu.RUnlock()

	var uptimeMillis int64
	if running && !startedAt.IsZero() {
		uptimeMillis = time.Since(startedAt).Milliseconds()
	}

	openPositions := 0
	for _, p := range e.posMgr.All() {
		if p.NetQuantity != 0 {
			openPositions++
		}
	}

	return Snapshot{
		Running:            running,
		RingBufferCapacity: e.ringCapacity,
		OrdersProcessed:    e.ordersProcessed.Load(),
		TradesExecuted:     e.tradesExecuted.Load(),
		ActiveStrategies:   e.router.ActiveCount(),
		OpenPositions:      openPositions,
		PendingOrders:      len(e.orderMgr.Open()),
		UptimeMillis:       uptimeMillis,
	}
}

// Router routes quotes to subscribed algorithms, fanning out each quote to
// every algorithm subscribed for that symbol.
func (e *Engine) Router() *Router { return e.router }
