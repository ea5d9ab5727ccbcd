package orders

import (
	"testing"

	"github.com/arrowlane/hft-engine/types"
)

func newTestOrder(id string) types.Order {
	return types.Order{
		ClientOrderID: id,
		Symbol:        "BTC-USD",
		Side:          types.Buy,
		Type:          types.Limit,
		TIF:           types.GTC,
		LimitPrice:    10000,
		Scale:         100,
		Quantity:      10,
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	t.Parallel()
	m := NewManager()
	o := newTestOrder("ord-1")
	if _, err := m.Create(o); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := m.Create(o); err != types.ErrDuplicateOrder {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestTransitionIllegal(t *testing.T) {
	t.Parallel()
	m := NewManager()
	o := newTestOrder("ord-1")
	m.Create(o)
	if _, err := m.Transition("ord-1", types.StatusFilled); err == nil {
		t.Fatal("expected illegal transition error going PENDING->FILLED directly")
	}
	if _, err := m.Transition("ord-1", types.StatusSubmitted); err != nil {
		t.Fatalf("PENDING->SUBMITTED should be legal: %v", err)
	}
}

func TestApplyFillPartialThenFull(t *testing.T) {
	t.Parallel()
	m := NewManager()
	o := newTestOrder("ord-1")
	m.Create(o)
	m.Transition("ord-1", types.StatusSubmitted)
	m.Transition("ord-1", types.StatusAccepted)

	updated, err := m.ApplyFill("ord-1", 10000, 4)
	if err != nil {
		t.Fatalf("ApplyFill: %v", err)
	}
	if updated.Status != types.StatusPartiallyFilled {
		t.Fatalf("expected PARTIALLY_FILLED, got %s", updated.Status)
	}
	if updated.AvgFillPrice != 10000 {
		t.Fatalf("avg fill price = %d, want 10000", updated.AvgFillPrice)
	}

	updated, err = m.ApplyFill("ord-1", 10010, 6)
	if err != nil {
		t.Fatalf("ApplyFill: %v", err)
	}
	if updated.Status != types.StatusFilled {
		t.Fatalf("expected FILLED, got %s", updated.Status)
	}
	// (10000*4 + 10010*6) / 10 = 10006
	if updated.AvgFillPrice != 10006 {
		t.Fatalf("avg fill price = %d, want 10006", updated.AvgFillPrice)
	}
}

func TestApplyFillOnTerminalOrderFails(t *testing.T) {
	t.Parallel()
	m := NewManager()
	o := newTestOrder("ord-1")
	o.Quantity = 5
	m.Create(o)
	m.Transition("ord-1", types.StatusSubmitted)
	m.Transition("ord-1", types.StatusAccepted)
	if _, err := m.ApplyFill("ord-1", 10000, 5); err != nil {
		t.Fatalf("ApplyFill: %v", err)
	}
	if _, err := m.ApplyFill("ord-1", 10000, 1); err == nil {
		t.Fatal("expected error applying fill to a terminal (FILLED) order")
	}
}

func TestRestoreBumpsNextClientOrderID(t *testing.T) {
	t.Parallel()
	m := NewManager()
	m.Restore(newTestOrder("ord-7"))
	next := m.NextClientOrderID()
	if next != "ord-8" {
		t.Fatalf("NextClientOrderID after restoring ord-7 = %s, want ord-8", next)
	}
}
