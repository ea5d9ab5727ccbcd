package engine

import (
	"sync"

	"github.com/arrowlane/hft-engine/algo"
	"github.com/arrowlane/hft-engine/types"
)

// Router fans out quotes to the algorithms subscribed for each symbol,
// grounded on the teacher's core.Router (map of symbol to subscriber list,
// plus a SubscribeAll list that receives every quote regardless of
// symbol).
type Router struct {
	mu          sync.RWMutex
	bySymbol    map[string][]algo.Algorithm
	subscribers []algo.Algorithm
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{bySymbol: make(map[string][]algo.Algorithm)}
}

// Subscribe registers an algorithm to receive quotes for its own symbol.
func (r *Router) Subscribe(a algo.Algorithm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySymbol[a.Symbol()] = append(r.bySymbol[a.Symbol()], a)
}

// SubscribeAll registers an algorithm to receive every quote regardless of
// symbol (used by cross-symbol strategies).
func (r *Router) SubscribeAll(a algo.Algorithm) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, a)
}

// Route delivers a quote to every algorithm subscribed to its symbol plus
// every symbol-agnostic subscriber.
func (r *Router) Route(q types.Quote) {
	r.mu.RLock()
	targets := append([]algo.Algorithm(nil), r.bySymbol[q.Symbol]...)
	targets = append(targets, r.subscribers...)
	r.mu.RUnlock()

	for _, a := range targets {
		a.OnQuote(q)
	}
}

// ActiveCount returns the number of distinct registered algorithms
// currently in the RUNNING lifecycle state, deduplicated across the
// per-symbol and symbol-agnostic subscriber lists (spec §4.7
// activeStrategies).
func (r *Router) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[algo.Algorithm]bool)
	for _, list := range r.bySymbol {
		for _, a := range list {
			seen[a] = true
		}
	}
	for _, a := range r.subscribers {
		seen[a] = true
	}
	count := 0
	for a := range seen {
		if a.State() == types.StrategyRunning {
			count++
		}
	}
	return count
}
