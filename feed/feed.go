// Package feed provides reference implementations of port.MarketDataSource:
// a gorilla/websocket-backed source when a URL is configured, and an
// in-process synthetic random-walk generator otherwise. Grounded on the
// teacher's feeds.PolymarketFeed (per-symbol subscriber channels, a
// reconnect loop shape) generalised from Polymarket ticks to
// types.Quote.
package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/types"
)

// Source implements port.MarketDataSource.
type Source struct {
	wsURL string

	mu   sync.Mutex
	subs map[string][]chan types.Quote
	seed map[string]int64

	conn   *websocket.Conn
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a feed. If wsURL is empty the feed falls back to an
// in-process synthetic generator instead of dialing out.
func New(wsURL string) *Source {
	return &Source{wsURL: wsURL, subs: make(map[string][]chan types.Quote), seed: make(map[string]int64)}
}

// Subscribe returns a channel of quotes for symbol, seeding a starting
// price for symbols never seen before (used by the synthetic generator).
func (s *Source) Subscribe(symbol string) (<-chan types.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan types.Quote, 256)
	s.subs[symbol] = append(s.subs[symbol], ch)
	if _, ok := s.seed[symbol]; !ok {
		s.seed[symbol] = 10000 // $100.00 at scale 100, arbitrary seed
	}
	return ch, nil
}

// Start begins publishing quotes, either from a websocket connection or a
// synthetic generator, until ctx is cancelled or Stop is called.
func (s *Source) Start(ctx context.Context) error {
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	if s.wsURL != "" {
		go s.runWebsocket(ctx)
	} else {
		go s.runSynthetic(ctx)
	}
	return nil
}

// Stop halts quote generation and closes all subscriber channels. It closes
// the websocket connection (if any) so a blocked read returns, then waits
// for the publishing goroutine to exit, so a tick already in flight can
// never send on a channel this has closed.
func (s *Source) Stop() error {
	close(s.stopCh)
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chs := range s.subs {
		for _, ch := range chs {
			close(ch)
		}
	}
	return nil
}

func (s *Source) runWebsocket(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}
		conn, _, err := websocket.DefaultDialer.Dial(s.wsURL, nil)
		if err != nil {
			log.Warn().Err(err).Str("url", s.wsURL).Msg("feed: dial failed, retrying")
			time.Sleep(2 * time.Second)
			continue
		}
		s.mu.Lock()
		s.conn = conn
		s.mu.Unlock()
		s.readLoop(conn)
	}
}

// readLoop is intentionally minimal: the wire protocol of any specific
// venue is out of scope, so this only demonstrates the reconnect shape a
// real feed adapter would need. It exits (triggering a reconnect) on any
// read error.
func (s *Source) readLoop(conn *websocket.Conn) {
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// runSynthetic publishes a random-walk quote for every subscribed symbol
// on a fixed tick interval.
func (s *Source) runSynthetic(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	r := rand.New(rand.NewSource(1))

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.publishTick(r)
		}
	}
}

func (s *Source) publishTick(r *rand.Rand) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for symbol, chs := range s.subs {
		price := s.seed[symbol]
		delta := int64(r.Intn(5) - 2)
		price += delta
		if price < 1 {
			price = 1
		}
		s.seed[symbol] = price

		q := types.Quote{
			Symbol:    symbol,
			Scale:     types.DefaultScale,
			BidPrice:  price - 1,
			AskPrice:  price + 1,
			BidSize:   int64(r.Intn(100) + 1),
			AskSize:   int64(r.Intn(100) + 1),
			Timestamp: time.Now(),
		}
		for _, ch := range chs {
			select {
			case ch <- q:
			default:
			}
		}
	}
}
