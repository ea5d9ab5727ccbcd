// Package types holds the shared domain model for the trading core: symbols,
// fixed-point prices, orders, trades, positions, the event envelope, strategy
// definitions and audit records. Kept dependency-free from the rest of the
// module so every other package can import it without cycles.
package types

import (
	"errors"
	"time"
)

// Sentinel errors returned across the core. Callers should use errors.Is.
var (
	ErrDuplicateOrder     = errors.New("types: duplicate client order id")
	ErrUnknownOrder       = errors.New("types: unknown order id")
	ErrUnknownSymbol      = errors.New("types: unknown symbol")
	ErrIllegalTransition  = errors.New("types: illegal order status transition")
	ErrPriceScaleMismatch = errors.New("types: price scale mismatch")
)

// Price is a fixed-point integer amount expressed in minor units of a
// symbol's priceScale (e.g. cents for scale=100). All core arithmetic is
// done on Price/int64 values; decimal.Decimal is only used at the edges
// (reporting, notifications) to avoid float/decimal leakage into the core.
type Price = int64

// Scale is the number of minor units per whole unit of price for a symbol,
// e.g. 100 for equities (cents) or 100000000 for an 8-decimal crypto pair.
type Scale = int64

const DefaultScale Scale = 100

// Symbol identifies a tradeable instrument and its fixed-point scale.
type Symbol struct {
	Name  string
	Scale Scale
}

// Normalize rescales a price expressed in `from` scale into `to` scale,
// truncating toward zero. Used when two components disagree on scale.
func Normalize(amount int64, from, to Scale) int64 {
	if from == to {
		return amount
	}
	return amount * to / from
}

type OrderSide int

const (
	Buy OrderSide = iota
	Sell
)

func (s OrderSide) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

type OrderType int

const (
	Market OrderType = iota
	Limit
	Stop
	StopLimit
)

type TimeInForce int

const (
	Day TimeInForce = iota
	GTC
	IOC
	FOK
)

// OrderStatus is the order lifecycle state. See spec §4.2 for the
// transition table: PENDING -> SUBMITTED -> ACCEPTED -> PARTIALLY_FILLED* ->
// FILLED, plus the terminal states CANCELLED (reachable from any
// non-terminal status), REJECTED (from PENDING and SUBMITTED) and EXPIRED
// (from SUBMITTED, ACCEPTED and PARTIALLY_FILLED).
type OrderStatus int

const (
	StatusPending OrderStatus = iota
	StatusSubmitted
	StatusAccepted
	StatusPartiallyFilled
	StatusFilled
	StatusCancelled
	StatusRejected
	StatusExpired
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusAccepted:
		return "ACCEPTED"
	case StatusPartiallyFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	case StatusRejected:
		return "REJECTED"
	case StatusExpired:
		return "EXPIRED"
	default:
		return "UNKNOWN"
	}
}

func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusFilled, StatusCancelled, StatusRejected, StatusExpired:
		return true
	default:
		return false
	}
}

// validOrderTransitions enumerates the legal status graph. Anything not
// listed is an illegal transition.
var validOrderTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:         {StatusSubmitted, StatusRejected, StatusCancelled},
	StatusSubmitted:       {StatusAccepted, StatusRejected, StatusCancelled, StatusExpired},
	StatusAccepted:        {StatusPartiallyFilled, StatusFilled, StatusCancelled, StatusExpired},
	StatusPartiallyFilled: {StatusPartiallyFilled, StatusFilled, StatusCancelled, StatusExpired},
}

// CanTransition reports whether `to` is a legal next status from `from`.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range validOrderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Order is the canonical order record tracked by the order manager.
type Order struct {
	ClientOrderID string
	ExchangeID    string
	Symbol        string
	Side          OrderSide
	Type          OrderType
	TIF           TimeInForce
	LimitPrice    Price
	StopPrice     Price
	Scale         Scale
	Quantity      int64
	FilledQty     int64
	AvgFillPrice  Price
	Status        OrderStatus
	RejectReason  string
	StrategyID    string
	CreatedAt     time.Time
	SubmittedAt   time.Time
	UpdatedAt     time.Time
}

// Remaining returns the unfilled quantity.
func (o *Order) Remaining() int64 {
	return o.Quantity - o.FilledQty
}

// Trade is a single fill against an order.
type Trade struct {
	TradeID       string
	ClientOrderID string
	Symbol        string
	Side          OrderSide
	Price         Price
	Scale         Scale
	Quantity      int64
	StrategyID    string
	Timestamp     time.Time
}

// Position is the running exposure book entry for one symbol.
type Position struct {
	Symbol        string
	Scale         Scale
	NetQuantity   int64 // positive = long, negative = short
	AvgEntryPrice Price
	TotalCost     int64 // abs(NetQuantity) * AvgEntryPrice / Scale
	RealizedPnL   int64 // native minor units of Scale, not normalized
	CurrentPrice  Price
	MarketValue   int64 // NetQuantity * CurrentPrice / Scale
	MaxDrawdown   int64 // low-water mark of RealizedPnL+UnrealizedPnL, <= 0
	OpenedAt      time.Time
	UpdatedAt     time.Time
}

func (p *Position) scaleOrDefault() Scale {
	if p.Scale == 0 {
		return DefaultScale
	}
	return p.Scale
}

// UnrealizedPnL returns quantity*(currentPrice-averageEntry)/priceScale.
func (p *Position) UnrealizedPnL(lastPrice Price) int64 {
	return p.NetQuantity * (lastPrice - p.AvgEntryPrice) / p.scaleOrDefault()
}

// UpdateMarketValue implements spec §4.3's updateMarketValue(px): it
// recomputes currentPrice, marketValue and unrealizedPnl off the new price,
// then ratchets maxDrawdown down to the lowest combined P&L seen so far.
func (p *Position) UpdateMarketValue(px Price) {
	p.CurrentPrice = px
	scale := p.scaleOrDefault()
	p.MarketValue = p.NetQuantity * px / scale
	combined := p.RealizedPnL + p.UnrealizedPnL(px)
	if combined < p.MaxDrawdown {
		p.MaxDrawdown = combined
	}
}

// EventType tags the payload carried by an Event slot in the ring.
type EventType int

const (
	EventNewOrder EventType = iota
	EventOrderAccepted
	EventOrderRejected
	EventFill
	EventCancelAck
	EventQuote
)

func (t EventType) String() string {
	switch t {
	case EventNewOrder:
		return "NEW_ORDER"
	case EventOrderAccepted:
		return "ORDER_ACCEPTED"
	case EventOrderRejected:
		return "ORDER_REJECTED"
	case EventFill:
		return "FILL"
	case EventCancelAck:
		return "CANCEL_ACK"
	case EventQuote:
		return "QUOTE"
	default:
		return "UNKNOWN"
	}
}

// Quote is a top-of-book snapshot published by a MarketDataSource.
type Quote struct {
	Symbol    string
	Scale     Scale
	BidPrice  Price
	AskPrice  Price
	BidSize   int64
	AskSize   int64
	Timestamp time.Time
}

// Event is the fixed-size payload stored in each ring slot. It is a tagged
// union over the fields below rather than an interface, so slots can be
// pre-allocated and reused without per-event heap allocation (spec §9,
// "static event typing over interfaces").
type Event struct {
	Type       EventType
	Order      Order
	Trade      Trade
	Quote      Quote
	Reason     string
	OccurredAt time.Time
}

// StrategyLifecycle mirrors spec §4.6's algorithm state machine.
type StrategyLifecycle int

const (
	StrategyNew StrategyLifecycle = iota
	StrategyInitialized
	StrategyRunning
	StrategyPaused
	StrategyCancelled
	StrategyCompleted
	StrategyFailed
)

func (s StrategyLifecycle) String() string {
	switch s {
	case StrategyNew:
		return "NEW"
	case StrategyInitialized:
		return "INITIALIZED"
	case StrategyRunning:
		return "RUNNING"
	case StrategyPaused:
		return "PAUSED"
	case StrategyCancelled:
		return "CANCELLED"
	case StrategyCompleted:
		return "COMPLETED"
	case StrategyFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// StrategyDefinition is the persisted record describing a strategy instance.
type StrategyDefinition struct {
	StrategyID string
	Kind       string // "momentum", "mean_reversion", "twap", "vwap"
	Symbol     string
	Params     map[string]string
	State      StrategyLifecycle
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// AuditSeverity classifies an AuditEvent.
type AuditSeverity int

const (
	AuditInfo AuditSeverity = iota
	AuditWarn
	AuditError
)

func (s AuditSeverity) String() string {
	switch s {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// AuditEvent is an append-only record of a notable system decision: a risk
// rejection, a circuit breaker trip, a persistence failure, an illegal
// transition attempt.
type AuditEvent struct {
	Severity  AuditSeverity
	Source    string
	Message   string
	Symbol    string
	Timestamp time.Time
}
