// Package positions maintains the live exposure book: one Position per
// symbol, updated on every fill with increasing/reducing/flipping average
// cost logic, plus net/gross exposure aggregates used by the risk engine.
// The averaging formula mirrors the running-average-entry bookkeeping in
// the teacher's execution.Executor.updatePosition, rewritten for int64
// fixed-point quantities instead of decimal.Decimal.
package positions

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/types"
)

// Manager owns the position book keyed by symbol.
type Manager struct {
	mu   sync.RWMutex
	book map[string]*types.Position
}

// NewManager creates an empty position book.
func NewManager() *Manager {
	return &Manager{book: make(map[string]*types.Position)}
}

// Get returns a copy of the position for symbol, creating a flat one if
// none exists yet.
func (m *Manager) Get(symbol string, scale types.Scale) types.Position {
	m.mu.RLock()
	p, ok := m.book[symbol]
	m.mu.RUnlock()
	if ok {
		return *p
	}
	return types.Position{Symbol: symbol, Scale: scale}
}

// Restore seeds a position directly from a journal replay, bypassing the
// fill-accounting path (cold-start rebuild per spec §4.5).
func (m *Manager) Restore(p types.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := p
	m.book[p.Symbol] = &stored
}

// ApplyFill folds a trade into the position for its symbol and returns the
// updated snapshot. Three cases, matching spec §4.3:
//
//   - increasing exposure (same sign, or starting flat): new average entry
//     is the size-weighted blend of old and new cost.
//   - reducing exposure (opposite sign, |delta| <= |net|): average entry is
//     unchanged; realized PnL accrues on the closed quantity.
//   - flipping exposure (opposite sign, |delta| > |net|): the old position
//     closes entirely (realizing PnL on all of it) and a new position opens
//     at the fill price for the remainder.
func (m *Manager) ApplyFill(trade types.Trade) types.Position {
	m.mu.Lock()
	defer m.mu.Unlock()

	scale := trade.Scale
	if scale == 0 {
		scale = types.DefaultScale
	}

	p, ok := m.book[trade.Symbol]
	if !ok {
		p = &types.Position{Symbol: trade.Symbol, Scale: scale}
		m.book[trade.Symbol] = p
	}

	signedQty := trade.Quantity
	if trade.Side == types.Sell {
		signedQty = -signedQty
	}

	wasFlat := p.NetQuantity == 0

	switch {
	case wasFlat || sameSign(p.NetQuantity, signedQty):
		// increasing (or opening) exposure: blend average cost.
		oldAbs := abs(p.NetQuantity)
		addAbs := abs(signedQty)
		newAbs := oldAbs + addAbs
		if oldAbs == 0 {
			p.AvgEntryPrice = trade.Price
		} else if newAbs > 0 {
			p.AvgEntryPrice = (p.AvgEntryPrice*oldAbs + trade.Price*addAbs) / newAbs
		}
		p.NetQuantity += signedQty
		if wasFlat {
			p.OpenedAt = time.Now()
		}

	case abs(signedQty) <= abs(p.NetQuantity):
		// reducing exposure: average entry unchanged, realize PnL on the
		// closed slice. PnL is quantity*(price-avgEntry)/priceScale per
		// spec §4.3, stored in native minor units (not pre-normalized).
		closedQty := abs(signedQty)
		pnl := (trade.Price - p.AvgEntryPrice) * closedQty / scale
		if p.NetQuantity < 0 {
			pnl = -pnl
		}
		p.RealizedPnL += pnl
		p.NetQuantity += signedQty

	default:
		// flipping exposure: close the old side entirely, open the
		// remainder at the fill price.
		closedQty := abs(p.NetQuantity)
		pnl := (trade.Price - p.AvgEntryPrice) * closedQty / scale
		if p.NetQuantity < 0 {
			pnl = -pnl
		}
		p.RealizedPnL += pnl
		remaining := signedQty + p.NetQuantity // same sign as signedQty
		p.NetQuantity = remaining
		p.AvgEntryPrice = trade.Price
		p.OpenedAt = time.Now()
	}

	p.TotalCost = abs(p.NetQuantity) * p.AvgEntryPrice / scale
	p.UpdatedAt = time.Now()
	log.Debug().Str("symbol", trade.Symbol).Int64("net_qty", p.NetQuantity).
		Int64("avg_entry", p.AvgEntryPrice).Msg("position updated")
	return *p
}

// NetExposure sums netQuantity*avgEntryPrice across all symbols, normalized
// to cents, giving a single directional exposure figure.
func (m *Manager) NetExposure() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, p := range m.book {
		total += normalizeToCents(p.NetQuantity*p.AvgEntryPrice, p.Scale)
	}
	return total
}

// GrossExposure sums the absolute value of each symbol's exposure,
// normalized to cents.
func (m *Manager) GrossExposure() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for _, p := range m.book {
		total += absInt64(normalizeToCents(p.NetQuantity*p.AvgEntryPrice, p.Scale))
	}
	return total
}

// TotalPnLCents sums realized PnL across all positions plus unrealized PnL
// given a map of last prices, normalized to cents.
func (m *Manager) TotalPnLCents(lastPrices map[string]types.Price) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total int64
	for sym, p := range m.book {
		total += normalizeToCents(p.RealizedPnL, p.Scale)
		if last, ok := lastPrices[sym]; ok {
			total += normalizeToCents(p.UnrealizedPnL(last), p.Scale)
		}
	}
	return total
}

// All returns a snapshot of every tracked position.
func (m *Manager) All() []types.Position {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Position, 0, len(m.book))
	for _, p := range m.book {
		out = append(out, *p)
	}
	return out
}

func sameSign(a, b int64) bool {
	return (a >= 0) == (b >= 0)
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func absInt64(v int64) int64 { return abs(v) }

// normalizeToCents rescales an amount already expressed in `scale` minor
// units into a cents-based figure used for cross-symbol aggregation. This
// is the one place price-scale normalization happens deliberately rather
// than being left implicit (spec §3 "price-scale leakage" design note).
func normalizeToCents(amount int64, scale types.Scale) int64 {
	return types.Normalize(amount, scale, types.DefaultScale)
}
