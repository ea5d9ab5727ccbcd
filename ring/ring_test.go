package ring

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/arrowlane/hft-engine/types"
)

func TestPublishAndConsumeOrder(t *testing.T) {
	t.Parallel()
	var orderSeen, positionSeen []uint64

	orderStage := &Stage{Name: "order", Handler: func(seq uint64, e *types.Event) {
		orderSeen = append(orderSeen, seq)
	}}
	positionStage := &Stage{Name: "position", Handler: func(seq uint64, e *types.Event) {
		positionSeen = append(positionSeen, seq)
	}}

	r, err := New(8, orderStage, positionStage)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Start()

	const n = 5
	for i := 0; i < n; i++ {
		if _, err := r.Publish(types.Event{Type: types.EventQuote}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	r.Shutdown()

	if len(orderSeen) != n || len(positionSeen) != n {
		t.Fatalf("expected %d events at each stage, got order=%d position=%d", n, len(orderSeen), len(positionSeen))
	}
	for i := 0; i < n; i++ {
		want := uint64(i + 1)
		if orderSeen[i] != want || positionSeen[i] != want {
			t.Errorf("event %d: order seq=%d position seq=%d, want %d", i, orderSeen[i], positionSeen[i], want)
		}
	}
}

func TestSecondStageNeverOvertakesFirst(t *testing.T) {
	t.Parallel()
	var orderCount, positionCount uint64

	orderStage := &Stage{Name: "order", Handler: func(seq uint64, e *types.Event) {
		time.Sleep(2 * time.Millisecond) // deliberately slow
		atomic.AddUint64(&orderCount, 1)
	}}
	positionStage := &Stage{Name: "position", Handler: func(seq uint64, e *types.Event) {
		if atomic.LoadUint64(&orderCount) < seq {
			t.Errorf("position stage processed seq %d before order stage did (order count=%d)", seq, atomic.LoadUint64(&orderCount))
		}
		atomic.AddUint64(&positionCount, 1)
	}}

	r, err := New(16, orderStage, positionStage)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r.Start()
	for i := 0; i < 4; i++ {
		r.Publish(types.Event{Type: types.EventQuote})
	}
	r.Shutdown()
}

func TestNewRejectsNonPowerOfTwoCapacity(t *testing.T) {
	t.Parallel()
	stage := &Stage{Name: "x", Handler: func(uint64, *types.Event) {}}
	if _, err := New(3, stage); err == nil {
		t.Fatal("expected error for non-power-of-two capacity")
	}
}
