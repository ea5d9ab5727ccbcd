// Package orders implements the order lifecycle manager: client order id
// assignment, status transitions, and fill accounting. Grounded on the
// order bookkeeping patterns in the teacher's execution package, generalised
// to the strict PENDING/SUBMITTED/ACCEPTED/PARTIALLY_FILLED/FILLED state
// machine and int64 fixed-point fills required by the domain model.
package orders

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/types"
)

// Listener receives order lifecycle notifications. Implementations must not
// block; they run on the caller's goroutine.
type Listener interface {
	OnOrderUpdate(order types.Order)
}

// Manager owns the live order book keyed by client order id.
type Manager struct {
	mu        sync.RWMutex
	orders    map[string]*types.Order
	nextID    int64
	listeners []Listener
}

// NewManager creates an empty order manager.
func NewManager() *Manager {
	return &Manager{orders: make(map[string]*types.Order)}
}

// AddListener registers a callback for order status changes.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// NextClientOrderID returns a process-unique, monotonically increasing id.
func (m *Manager) NextClientOrderID() string {
	n := atomic.AddInt64(&m.nextID, 1)
	return fmt.Sprintf("ord-%d", n)
}

// Create registers a new order in PENDING status.
func (m *Manager) Create(o types.Order) (*types.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.orders[o.ClientOrderID]; exists {
		return nil, types.ErrDuplicateOrder
	}
	o.Status = types.StatusPending
	o.CreatedAt = time.Now()
	o.SubmittedAt = o.CreatedAt
	o.UpdatedAt = o.CreatedAt
	stored := o
	m.orders[o.ClientOrderID] = &stored
	return &stored, nil
}

// Restore re-inserts an order during cold-start rebuild without validating
// it as new (status and fills come from journal replay).
func (m *Manager) Restore(o types.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := o
	m.orders[o.ClientOrderID] = &stored
	n := parseSeqSuffix(o.ClientOrderID)
	if n > atomic.LoadInt64(&m.nextID) {
		atomic.StoreInt64(&m.nextID, n)
	}
}

func parseSeqSuffix(id string) int64 {
	var n int64
	_, err := fmt.Sscanf(id, "ord-%d", &n)
	if err != nil {
		return 0
	}
	return n
}

// Get returns the order by client order id.
func (m *Manager) Get(clientOrderID string) (types.Order, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[clientOrderID]
	if !ok {
		return types.Order{}, false
	}
	return *o, true
}

// Transition moves an order to a new status, rejecting illegal transitions.
func (m *Manager) Transition(clientOrderID string, to types.OrderStatus) (types.Order, error) {
	m.mu.Lock()
	o, ok := m.orders[clientOrderID]
	if !ok {
		m.mu.Unlock()
		return types.Order{}, types.ErrUnknownOrder
	}
	if o.Status == to {
		snapshot := *o
		m.mu.Unlock()
		return snapshot, nil
	}
	if !types.CanTransition(o.Status, to) {
		m.mu.Unlock()
		return types.Order{}, fmt.Errorf("%w: %s -> %s", types.ErrIllegalTransition, o.Status, to)
	}
	o.Status = to
	o.UpdatedAt = time.Now()
	snapshot := *o
	m.mu.Unlock()

	log.Debug().Str("order", clientOrderID).Str("status", to.String()).Msg("order transition")
	m.notify(snapshot)
	return snapshot, nil
}

// ApplyFill records a partial or full fill and maintains the running
// average fill price: avgFill' = (avgFill*filledQty + fillPrice*fillQty) /
// (filledQty+fillQty). The resulting status is PARTIALLY_FILLED or FILLED
// depending on whether quantity remains.
func (m *Manager) ApplyFill(clientOrderID string, fillPrice types.Price, fillQty int64) (types.Order, error) {
	m.mu.Lock()
	o, ok := m.orders[clientOrderID]
	if !ok {
		m.mu.Unlock()
		return types.Order{}, types.ErrUnknownOrder
	}
	if o.Status.Terminal() {
		m.mu.Unlock()
		return types.Order{}, fmt.Errorf("%w: order %s already terminal (%s)", types.ErrIllegalTransition, clientOrderID, o.Status)
	}

	totalQty := o.FilledQty + fillQty
	if totalQty > 0 {
		o.AvgFillPrice = (o.AvgFillPrice*o.FilledQty + fillPrice*fillQty) / totalQty
	}
	o.FilledQty = totalQty
	if o.FilledQty >= o.Quantity {
		o.Status = types.StatusFilled
	} else {
		o.Status = types.StatusPartiallyFilled
	}
	o.UpdatedAt = time.Now()
	snapshot := *o
	m.mu.Unlock()

	m.notify(snapshot)
	return snapshot, nil
}

func (m *Manager) notify(o types.Order) {
	m.mu.RLock()
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.RUnlock()
	for _, l := range listeners {
		l.OnOrderUpdate(o)
	}
}

// Open returns every non-terminal order.
func (m *Manager) Open() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, 0, len(m.orders))
	for _, o := range m.orders {
		if !o.Status.Terminal() {
			out = append(out, *o)
		}
	}
	return out
}

// All returns every tracked order, terminal or not.
func (m *Manager) All() []types.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out
}
