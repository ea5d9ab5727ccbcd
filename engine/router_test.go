package engine

import (
	"testing"
	"time"

	"github.com/arrowlane/hft-engine/algo"
	"github.com/arrowlane/hft-engine/types"
)

// stubAlgorithm is a minimal algo.Algorithm double whose lifecycle state is
// set directly by the test, used to exercise Router.ActiveCount without
// pulling in a concrete strategy's signal logic.
type stubAlgorithm struct {
	id, symbol string
	state      types.StrategyLifecycle
	quotes     int
}

func (s *stubAlgorithm) ID() string     { return s.id }
func (s *stubAlgorithm) Kind() string   { return "stub" }
func (s *stubAlgorithm) Symbol() string { return s.symbol }
func (s *stubAlgorithm) State() types.StrategyLifecycle { return s.state }
func (s *stubAlgorithm) Initialize() error              { return nil }
func (s *stubAlgorithm) Start() error                   { return nil }
func (s *stubAlgorithm) Pause() error                   { return nil }
func (s *stubAlgorithm) Resume() error                  { return nil }
func (s *stubAlgorithm) Cancel() error                  { return nil }
func (s *stubAlgorithm) OnQuote(q types.Quote)           { s.quotes++ }
func (s *stubAlgorithm) OnFill(t types.Trade)            {}
func (s *stubAlgorithm) OnTimer(now time.Time)           {}
func (s *stubAlgorithm) Progress() algo.Progress         { return algo.Progress{State: s.state} }

func TestRouterActiveCountCountsOnlyRunning(t *testing.T) {
	t.Parallel()
	r := NewRouter()
	running := &stubAlgorithm{id: "a1", symbol: "BTC-USD", state: types.StrategyRunning}
	paused := &stubAlgorithm{id: "a2", symbol: "BTC-USD", state: types.StrategyPaused}
	crossSymbol := &stubAlgorithm{id: "a3", symbol: "*", state: types.StrategyRunning}
	r.Subscribe(running)
	r.Subscribe(paused)
	r.SubscribeAll(crossSymbol)

	if got := r.ActiveCount(); got != 2 {
		t.Fatalf("ActiveCount = %d, want 2", got)
	}
}

func TestRouterRouteDeliversToSymbolAndGlobalSubscribers(t *testing.T) {
	t.Parallel()
	r := NewRouter()
	bySymbol := &stubAlgorithm{id: "a1", symbol: "BTC-USD", state: types.StrategyRunning}
	global := &stubAlgorithm{id: "a2", symbol: "*", state: types.StrategyRunning}
	other := &stubAlgorithm{id: "a3", symbol: "ETH-USD", state: types.StrategyRunning}
	r.Subscribe(bySymbol)
	r.Subscribe(other)
	r.SubscribeAll(global)

	r.Route(types.Quote{Symbol: "BTC-USD"})

	if bySymbol.quotes != 1 {
		t.Fatalf("expected the symbol subscriber to receive the quote, got %d", bySymbol.quotes)
	}
	if global.quotes != 1 {
		t.Fatalf("expected the global subscriber to receive the quote, got %d", global.quotes)
	}
	if other.quotes != 0 {
		t.Fatalf("expected a different symbol's subscriber to be skipped, got %d", other.quotes)
	}
}
