package risk

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// WatchedPosition is a lightweight exit-target view over a position,
// distinct from types.Position: the domain position book tracks exposure
// and PnL only, while exit targets are a per-strategy overlay a risk
// overseer can optionally attach. Adapted from the teacher's TP/SL fields
// on types.Position into int64 fixed-point prices.
type WatchedPosition struct {
	Symbol     string
	EntryPrice int64
	StopLoss   int64
	TakeProfit int64
	HighPrice  int64
	EntryTime  time.Time
}

// TPSLMonitor watches open positions for take-profit, stop-loss, trailing
// stop and max-hold-time exit conditions. This supplements the core risk
// gate (pre-trade) with a post-trade exit overseer, grounded on the
// teacher's risk.TPSLManager.
type TPSLMonitor struct {
	mu sync.RWMutex

	trailingEnabled    bool
	trailingStartBps   int64 // start trailing after this many bps of profit
	trailingDistBps    int64 // trail by this many bps off the high

	maxHoldTime time.Duration
}

// NewTPSLMonitor creates a monitor with trailing stops disabled and a
// 4-hour max hold time, matching the teacher's defaults.
func NewTPSLMonitor() *TPSLMonitor {
	return &TPSLMonitor{
		trailingStartBps: 500,
		trailingDistBps:  300,
		maxHoldTime:      4 * time.Hour,
	}
}

// CheckExit reports whether pos should be closed at currentPrice and why.
func (tm *TPSLMonitor) CheckExit(pos *WatchedPosition, currentPrice int64) (shouldExit bool, reason string, exitPrice int64) {
	if pos.TakeProfit != 0 && currentPrice >= pos.TakeProfit {
		return true, "TAKE_PROFIT", pos.TakeProfit
	}
	if pos.StopLoss != 0 && currentPrice <= pos.StopLoss {
		return true, "STOP_LOSS", pos.StopLoss
	}

	tm.mu.RLock()
	trailing := tm.trailingEnabled
	tm.mu.RUnlock()
	if trailing {
		newSL := tm.calculateTrailingStop(pos, currentPrice)
		if newSL > pos.StopLoss {
			pos.StopLoss = newSL
			log.Debug().Str("symbol", pos.Symbol).Int64("new_sl", newSL).Msg("trailing stop updated")
		}
	}

	if !pos.EntryTime.IsZero() && time.Since(pos.EntryTime) > tm.maxHoldTime {
		return true, "MAX_HOLD_TIME", currentPrice
	}
	return false, "", 0
}

func (tm *TPSLMonitor) calculateTrailingStop(pos *WatchedPosition, currentPrice int64) int64 {
	if pos.EntryPrice == 0 {
		return pos.StopLoss
	}
	profitBps := (currentPrice - pos.EntryPrice) * 10000 / pos.EntryPrice

	tm.mu.RLock()
	startBps, distBps := tm.trailingStartBps, tm.trailingDistBps
	tm.mu.RUnlock()

	if profitBps < startBps {
		return pos.StopLoss
	}
	if currentPrice > pos.HighPrice {
		pos.HighPrice = currentPrice
	}
	return pos.HighPrice * (10000 - distBps) / 10000
}

// EnableTrailing turns on trailing-stop adjustment with the given bps
// thresholds.
func (tm *TPSLMonitor) EnableTrailing(startBps, distanceBps int64) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.trailingEnabled = true
	tm.trailingStartBps = startBps
	tm.trailingDistBps = distanceBps
}

// DisableTrailing turns off trailing-stop adjustment.
func (tm *TPSLMonitor) DisableTrailing() {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.trailingEnabled = false
}
