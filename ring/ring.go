// Package ring implements the bounded pre-allocated event ring and its fixed
// consumer pipeline described by the trading engine: a single producer
// publishes types.Event values into a power-of-two slot array; three
// independently-lagging consumer stages (order, position, metrics) drain
// them in order without a predecessor ever being overtaken.
//
// The mechanics are adapted from an LMAX-disruptor-style ring buffer:
// lock-free CAS sequence claiming, cache-line-padded slots, and a
// gating sequence computed as the minimum of all consumer cursors so the
// producer never overwrites a slot a slow consumer hasn't read yet.
package ring

import (
	"errors"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/arrowlane/hft-engine/types"
)

// ErrFull is returned by Publish when the ring has no free slot after
// spinning through the configured backoff budget.
var ErrFull = errors.New("ring: buffer full")

// slot holds one event plus its publish sequence. The trailing padding
// keeps each slot on its own cache line so adjacent producer/consumer
// traffic doesn't false-share.
type slot struct {
	sequence uint64
	event    types.Event
	_        [24]byte
}

// Handler processes one event at a given pipeline stage. Handlers must not
// block indefinitely; a panic is recovered and logged, never propagated.
type Handler func(seq uint64, event *types.Event)

// Stage is a named consumer in the fixed pipeline.
type Stage struct {
	Name    string
	Handler Handler
	cursor  uint64 // atomic: highest sequence this stage has fully processed
}

// Ring is the bounded event ring with its consumer pipeline.
type Ring struct {
	capacity   uint64
	mask       uint64
	slots      []slot
	cursor     uint64 // atomic: last sequence claimed by the producer
	stages     []*Stage
	shutdownCh chan struct{}
	doneCh     chan struct{}
}

// New creates a ring with the given power-of-two capacity and pipeline
// stages, run in the order supplied (spec requires OrderHandler before
// PositionHandler before MetricsHandler).
func New(capacity uint64, stages ...*Stage) (*Ring, error) {
	if capacity == 0 || capacity&(capacity-1) != 0 {
		return nil, errors.New("ring: capacity must be a power of two")
	}
	if len(stages) == 0 {
		return nil, errors.New("ring: at least one stage required")
	}
	r := &Ring{
		capacity:   capacity,
		mask:       capacity - 1,
		slots:      make([]slot, capacity),
		stages:     stages,
		shutdownCh: make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
	// sequence 0 is never published; cursors start "one behind" sequence 1.
	for _, s := range r.stages {
		s.cursor = 0
	}
	return r, nil
}

// Capacity returns the configured ring size.
func (r *Ring) Capacity() uint64 { return r.capacity }

// Publish claims the next sequence and writes the event into its slot. It
// spins while the slowest stage hasn't freed room, backing off with
// runtime.Gosched, and returns ErrFull once the spin budget is exhausted.
func (r *Ring) Publish(event types.Event) (uint64, error) {
	const maxSpins = 50000

	for spins := 0; spins < maxSpins; spins++ {
		current := atomic.LoadUint64(&r.cursor)
		next := current + 1

		gating := r.minConsumerCursor()
		if next > gating+r.capacity {
			runtime.Gosched()
			continue
		}

		if atomic.CompareAndSwapUint64(&r.cursor, current, next) {
			idx := next & r.mask
			sl := &r.slots[idx]
			sl.event = event
			atomic.StoreUint64(&sl.sequence, next)
			return next, nil
		}
	}
	return 0, ErrFull
}

func (r *Ring) minConsumerCursor() uint64 {
	min := atomic.LoadUint64(&r.stages[0].cursor)
	for _, s := range r.stages[1:] {
		c := atomic.LoadUint64(&s.cursor)
		if c < min {
			min = c
		}
	}
	return min
}

// Start launches one goroutine per pipeline stage. Each stage processes
// events strictly in sequence order and never overtakes the stage before
// it in the configured order (the position handler waits for the order
// handler's cursor, etc.).
func (r *Ring) Start() {
	for i, s := range r.stages {
		go r.runStage(i, s)
	}
}

func (r *Ring) runStage(index int, s *Stage) {
	next := uint64(1)
	var upstream *Stage
	if index > 0 {
		upstream = r.stages[index-1]
	}
	for {
		select {
		case <-r.shutdownCh:
			if index == len(r.stages)-1 {
				close(r.doneCh)
			}
			return
		default:
		}

		if upstream != nil && atomic.LoadUint64(&upstream.cursor) < next {
			runtime.Gosched()
			continue
		}

		idx := next & r.mask
		sl := &r.slots[idx]
		if atomic.LoadUint64(&sl.sequence) != next {
			runtime.Gosched()
			continue
		}

		r.dispatch(s, next, &sl.event)
		atomic.StoreUint64(&s.cursor, next)
		next++
	}
}

func (r *Ring) dispatch(s *Stage, seq uint64, event *types.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Str("stage", s.Name).Uint64("seq", seq).
				Interface("panic", rec).Msg("ring: handler panic recovered")
		}
	}()
	s.Handler(seq, event)
}

// Shutdown stops all stages after they drain in-flight events already
// published at the time of the call.
func (r *Ring) Shutdown() {
	target := atomic.LoadUint64(&r.cursor)
	for {
		if r.minConsumerCursor() >= target {
			break
		}
		runtime.Gosched()
	}
	close(r.shutdownCh)
	<-r.doneCh
}
