package port

import (
	"context"
	"testing"
	"time"

	"github.com/arrowlane/hft-engine/types"
)

func TestSigningStubSubmitReportsFill(t *testing.T) {
	t.Parallel()
	stub, err := NewSigningStub("test-domain", "0x0000000000000000000000000000000000000001", 1, "", 5*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSigningStub: %v", err)
	}

	fills := make(chan types.Trade, 1)
	stub.SetFillListener(FillListenerFunc(func(tr types.Trade) { fills <- tr }))

	order := types.Order{ClientOrderID: "ord-1", Symbol: "BTC-USD", Side: types.Buy, Quantity: 5, LimitPrice: 10000, Scale: 100}
	ack, err := stub.Submit(context.Background(), order)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !ack.Accepted {
		t.Fatal("expected ack.Accepted = true")
	}

	select {
	case tr := <-fills:
		if tr.ClientOrderID != "ord-1" || tr.Quantity != 5 {
			t.Fatalf("unexpected fill: %+v", tr)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for simulated fill")
	}
}

func TestSigningStubAcceptsGeneratedKeyWhenHexEmpty(t *testing.T) {
	t.Parallel()
	if _, err := NewSigningStub("test-domain", "0x0000000000000000000000000000000000000001", 1, "", time.Millisecond); err != nil {
		t.Fatalf("expected a throwaway key to be generated, got error: %v", err)
	}
}
