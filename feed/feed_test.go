package feed

import (
	"context"
	"testing"
	"time"
)

func TestSubscribeSeedsStartingPrice(t *testing.T) {
	t.Parallel()
	s := New("")
	if _, err := s.Subscribe("BTC-USD"); err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if got := s.seed["BTC-USD"]; got != 10000 {
		t.Fatalf("expected seed price 10000, got %d", got)
	}
}

func TestSyntheticSourcePublishesQuotes(t *testing.T) {
	t.Parallel()
	s := New("")
	ch, err := s.Subscribe("BTC-USD")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	select {
	case q := <-ch:
		if q.Symbol != "BTC-USD" {
			t.Fatalf("expected symbol BTC-USD, got %s", q.Symbol)
		}
		if q.AskPrice <= q.BidPrice {
			t.Fatalf("expected ask > bid, got bid=%d ask=%d", q.BidPrice, q.AskPrice)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a synthetic quote")
	}
}

func TestStopClosesSubscriberChannels(t *testing.T) {
	t.Parallel()
	s := New("")
	ch, err := s.Subscribe("BTC-USD")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			// A buffered quote may still be waiting; drain until closed.
			for ok {
				_, ok = <-ch
			}
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel to close")
	}
}
