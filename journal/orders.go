package journal

import (
	"sync"

	"github.com/arrowlane/hft-engine/types"
)

// OrderJournal persists order lifecycle records under root/orders/ and
// keeps an in-memory index of the latest known state per client order id,
// rebuilt from replay on cold start.
type OrderJournal struct {
	stream *Stream
	mu     sync.RWMutex
	index  map[string]types.Order
}

// OpenOrderJournal opens (or creates) the orders/ stream.
func OpenOrderJournal(root string, mode Mode) (*OrderJournal, error) {
	s, err := Open(StreamConfig{Root: root, Name: "orders", Mode: mode, RollByDay: true})
	if err != nil {
		return nil, err
	}
	return &OrderJournal{stream: s, index: make(map[string]types.Order)}, nil
}

// Append records an order snapshot.
func (j *OrderJournal) Append(o types.Order) error {
	if _, err := j.stream.Append(&o); err != nil {
		return err
	}
	j.mu.Lock()
	j.index[o.ClientOrderID] = o
	j.mu.Unlock()
	return nil
}

// Rebuild replays every persisted order record, leaving the index holding
// the last known status for each client order id (later records overwrite
// earlier ones for the same id, since a rolling log carries the full
// history of transitions, not just deltas).
func (j *OrderJournal) Rebuild() error {
	return j.stream.ReplayAll(
		func() interface{} { return &types.Order{} },
		func(_ uint64, v interface{}) error {
			o := v.(*types.Order)
			j.mu.Lock()
			j.index[o.ClientOrderID] = *o
			j.mu.Unlock()
			return nil
		},
	)
}

// Get returns the last known state for a client order id.
func (j *OrderJournal) Get(clientOrderID string) (types.Order, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	o, ok := j.index[clientOrderID]
	return o, ok
}

// Open returns every non-terminal order in the index, per spec's
// "getOpenOrders" query contract.
func (j *OrderJournal) Open() []types.Order {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.Order, 0)
	for _, o := range j.index {
		if !o.Status.Terminal() {
			out = append(out, o)
		}
	}
	return out
}

// All returns every order in the index.
func (j *OrderJournal) All() []types.Order {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.Order, 0, len(j.index))
	for _, o := range j.index {
		out = append(out, o)
	}
	return out
}

func (j *OrderJournal) Close() error { return j.stream.Close() }
