package mirror

import (
	"testing"
	"time"

	"github.com/arrowlane/hft-engine/types"
)

func TestOnOrderUpdateMirrorsOnlyFills(t *testing.T) {
	t.Parallel()
	m, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	m.OnOrderUpdate(types.Order{Symbol: "BTC-USD", Status: types.StatusAccepted})
	var count int64
	m.db.Model(&TradeRow{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no trade row for a non-fill status, got %d", count)
	}

	m.OnOrderUpdate(types.Order{
		Symbol: "BTC-USD", Side: types.Buy, AvgFillPrice: 10050, Scale: 100,
		FilledQty: 10, StrategyID: "strat-1", Status: types.StatusFilled, UpdatedAt: time.Now(),
	})
	m.db.Model(&TradeRow{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 trade row after a fill, got %d", count)
	}

	var row TradeRow
	if err := m.db.First(&row).Error; err != nil {
		t.Fatalf("First: %v", err)
	}
	if row.Symbol != "BTC-USD" || row.Quantity != 10 || row.Price != 10050 {
		t.Fatalf("unexpected trade row: %+v", row)
	}
}

func TestOnPositionUpdateUpserts(t *testing.T) {
	t.Parallel()
	m, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	m.OnPositionUpdate(types.Position{Symbol: "BTC-USD", NetQuantity: 10, AvgEntryPrice: 10000, UpdatedAt: time.Now()})
	m.OnPositionUpdate(types.Position{Symbol: "BTC-USD", NetQuantity: 20, AvgEntryPrice: 10100, UpdatedAt: time.Now()})

	var count int64
	m.db.Model(&PositionRow{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single upserted position row, got %d", count)
	}

	var row PositionRow
	if err := m.db.First(&row, "symbol = ?", "BTC-USD").Error; err != nil {
		t.Fatalf("First: %v", err)
	}
	if row.NetQuantity != 20 || row.AvgEntryPrice != 10100 {
		t.Fatalf("expected latest snapshot to win, got %+v", row)
	}
}

func TestRecordAuditInsertsRow(t *testing.T) {
	t.Parallel()
	m, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer m.Close()

	m.RecordAudit(types.AuditEvent{Severity: types.AuditError, Source: "risk", Message: "breaker tripped", Symbol: "BTC-USD", Timestamp: time.Now()})

	var count int64
	m.db.Model(&AuditRow{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected 1 audit row, got %d", count)
	}
}
