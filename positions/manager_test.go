package positions

import (
	"testing"
	"time"

	"github.com/arrowlane/hft-engine/types"
)

func trade(side types.OrderSide, price types.Price, qty int64) types.Trade {
	return types.Trade{
		Symbol: "BTC-USD", Side: side, Price: price, Scale: 100, Quantity: qty, Timestamp: time.Now(),
	}
}

// TestApplyFillIncreasing covers S1: BUY 100 @ 15000 then BUY 100 @ 15100
// on a flat position yields quantity=200, averageEntryPrice=15050,
// realizedPnl=0.
func TestApplyFillIncreasing(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.ApplyFill(trade(types.Buy, 15000, 100))
	p := m.ApplyFill(trade(types.Buy, 15100, 100))
	if p.NetQuantity != 200 {
		t.Fatalf("net qty = %d, want 200", p.NetQuantity)
	}
	if p.AvgEntryPrice != 15050 {
		t.Fatalf("avg entry = %d, want 15050", p.AvgEntryPrice)
	}
	if p.RealizedPnL != 0 {
		t.Fatalf("realized pnl = %d, want 0", p.RealizedPnL)
	}
}

// TestApplyFillReducing covers S2: after S1, SELL 100 @ 15200 yields
// quantity=100, averageEntryPrice=15050 (unchanged), and realizedPnl =
// 100*(15200-15050)/100 = 150 minor units.
func TestApplyFillReducing(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.ApplyFill(trade(types.Buy, 15000, 100))
	m.ApplyFill(trade(types.Buy, 15100, 100))
	p := m.ApplyFill(trade(types.Sell, 15200, 100))
	if p.NetQuantity != 100 {
		t.Fatalf("net qty = %d, want 100", p.NetQuantity)
	}
	if p.AvgEntryPrice != 15050 {
		t.Fatalf("avg entry should be unchanged on a reduce, got %d", p.AvgEntryPrice)
	}
	if p.RealizedPnL != 150 {
		t.Fatalf("realized pnl = %d, want 150", p.RealizedPnL)
	}
}

// TestApplyFillFlipping covers S3: flat, BUY 100 @ 15000, SELL 150 @ 15100
// yields realizedPnl = 100*(15100-15000)/100 = 100, quantity=-50,
// averageEntryPrice=15100.
func TestApplyFillFlipping(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.ApplyFill(trade(types.Buy, 15000, 100))
	p := m.ApplyFill(trade(types.Sell, 15100, 150))
	if p.NetQuantity != -50 {
		t.Fatalf("net qty = %d, want -50", p.NetQuantity)
	}
	if p.AvgEntryPrice != 15100 {
		t.Fatalf("avg entry after flip should reset to fill price, got %d", p.AvgEntryPrice)
	}
	if p.RealizedPnL != 100 {
		t.Fatalf("realized pnl = %d, want 100", p.RealizedPnL)
	}
}

// TestTotalPnLCentsCrossScaleNormalisation covers S6: an equities-scale
// (100) position realizing $5000 of P&L plus a crypto-scale (1,000,000)
// position realizing $2000 combine to totalPnlCents=700000, proving the
// scale is carried through and never silently dropped.
func TestTotalPnLCentsCrossScaleNormalisation(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.ApplyFill(types.Trade{Symbol: "AAPL", Side: types.Buy, Price: 10000, Scale: 100, Quantity: 500000, Timestamp: time.Now()})
	m.ApplyFill(types.Trade{Symbol: "AAPL", Side: types.Sell, Price: 10100, Scale: 100, Quantity: 500000, Timestamp: time.Now()})

	m.ApplyFill(types.Trade{Symbol: "BTC-USD", Side: types.Buy, Price: 5_000_000_000, Scale: 1_000_000, Quantity: 2_000_000_000, Timestamp: time.Now()})
	m.ApplyFill(types.Trade{Symbol: "BTC-USD", Side: types.Sell, Price: 5_001_000_000, Scale: 1_000_000, Quantity: 2_000_000_000, Timestamp: time.Now()})

	total := m.TotalPnLCents(nil)
	if total != 700000 {
		t.Fatalf("totalPnlCents = %d, want 700000", total)
	}
}

// TestRestoreSeedsColdStartPosition covers S7: after (S1)+(S2), a fresh
// Manager restored from a journal snapshot reports averageEntryPrice
// 15050, quantity 100, realizedPnl 150 without replaying fills.
func TestRestoreSeedsColdStartPosition(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.Restore(types.Position{
		Symbol: "BTC-USD", Scale: 100,
		NetQuantity: 100, AvgEntryPrice: 15050, RealizedPnL: 150,
	})
	p := m.Get("BTC-USD", 100)
	if p.NetQuantity != 100 {
		t.Fatalf("net qty = %d, want 100", p.NetQuantity)
	}
	if p.AvgEntryPrice != 15050 {
		t.Fatalf("avg entry = %d, want 15050", p.AvgEntryPrice)
	}
	if p.RealizedPnL != 150 {
		t.Fatalf("realized pnl = %d, want 150", p.RealizedPnL)
	}
}

func TestNetAndGrossExposure(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.ApplyFill(trade(types.Buy, 10000, 10))
	net := m.NetExposure()
	gross := m.GrossExposure()
	if net != gross {
		t.Fatalf("single long position: net (%d) should equal gross (%d)", net, gross)
	}
	if net <= 0 {
		t.Fatalf("expected positive exposure for a long position, got %d", net)
	}
}
