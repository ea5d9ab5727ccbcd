package journal

import (
	"testing"
	"time"

	"github.com/arrowlane/hft-engine/types"
)

func TestRootRebuildRestoresAllStreams(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	root, err := Open(dir, ModeFileBased)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	root.Orders.Append(types.Order{ClientOrderID: "ord-1", Symbol: "BTC-USD", Status: types.StatusFilled})
	root.Positions.Append(types.Position{Symbol: "BTC-USD", NetQuantity: 10, UpdatedAt: time.Now()})
	root.Trades.Append(types.Trade{TradeID: "t-1", ClientOrderID: "ord-1", Symbol: "BTC-USD", Quantity: 10})
	root.Strategies.Append(types.StrategyDefinition{StrategyID: "strat-1", Kind: "momentum", State: types.StrategyRunning})
	root.Audit.Append(types.AuditEvent{Severity: types.AuditWarn, Source: "risk", Message: "rejected"})
	if err := root.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	restored, err := Open(dir, ModeFileBased)
	if err != nil {
		t.Fatalf("re-Open: %v", err)
	}
	if err := restored.Rebuild(); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}

	if len(restored.Orders.All()) != 1 {
		t.Errorf("expected 1 restored order, got %d", len(restored.Orders.All()))
	}
	if len(restored.Positions.All()) != 1 {
		t.Errorf("expected 1 restored position, got %d", len(restored.Positions.All()))
	}
	if len(restored.Trades.All()) != 1 {
		t.Errorf("expected 1 restored trade, got %d", len(restored.Trades.All()))
	}
	if len(restored.Strategies.Active()) != 1 {
		t.Errorf("expected 1 active restored strategy, got %d", len(restored.Strategies.Active()))
	}
	if len(restored.Audit.Since(types.AuditInfo)) != 1 {
		t.Errorf("expected 1 restored audit event, got %d", len(restored.Audit.Since(types.AuditInfo)))
	}
	restored.Close()
}
