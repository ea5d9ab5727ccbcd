package journal

import (
	"sync"

	"github.com/arrowlane/hft-engine/types"
)

// TradeJournal persists each fill as an immutable append-only record under
// root/trades/. Unlike orders there is no mutable "latest state" — every
// trade is a fact — so the index is a flat slice per symbol for the
// "getTradesForSymbol" query contract.
type TradeJournal struct {
	stream *Stream
	mu     sync.RWMutex
	bySym  map[string][]types.Trade
	all    []types.Trade
}

// OpenTradeJournal opens (or creates) the trades/ stream.
func OpenTradeJournal(root string, mode Mode) (*TradeJournal, error) {
	s, err := Open(StreamConfig{Root: root, Name: "trades", Mode: mode, RollByDay: true})
	if err != nil {
		return nil, err
	}
	return &TradeJournal{stream: s, bySym: make(map[string][]types.Trade)}, nil
}

// Append records a trade.
func (j *TradeJournal) Append(t types.Trade) error {
	if _, err := j.stream.Append(&t); err != nil {
		return err
	}
	j.index(t)
	return nil
}

func (j *TradeJournal) index(t types.Trade) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.bySym[t.Symbol] = append(j.bySym[t.Symbol], t)
	j.all = append(j.all, t)
}

// Rebuild replays every persisted trade record into the index.
func (j *TradeJournal) Rebuild() error {
	return j.stream.ReplayAll(
		func() interface{} { return &types.Trade{} },
		func(_ uint64, v interface{}) error {
			j.index(*v.(*types.Trade))
			return nil
		},
	)
}

// ForSymbol returns all trades recorded for a symbol, oldest first.
func (j *TradeJournal) ForSymbol(symbol string) []types.Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.Trade, len(j.bySym[symbol]))
	copy(out, j.bySym[symbol])
	return out
}

// All returns every trade recorded, oldest first.
func (j *TradeJournal) All() []types.Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make([]types.Trade, len(j.all))
	copy(out, j.all)
	return out
}

func (j *TradeJournal) Close() error { return j.stream.Close() }
