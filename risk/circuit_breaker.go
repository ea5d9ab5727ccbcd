package risk

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// BreakerState is one of the three circuit breaker states from spec §4.4:
// CLOSED (normal), OPEN (tripped, rejecting), HALF_OPEN (single probe
// allowed after cooldown).
type BreakerState int

const (
	Closed BreakerState = iota
	Open
	HalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case Closed:
		return "CLOSED"
	case Open:
		return "OPEN"
	case HalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// CircuitBreaker trips to OPEN after a run of consecutive failures, moves
// to HALF_OPEN after a cooldown to allow a single probe trade, and returns
// to CLOSED on a successful probe or back to OPEN on a failed one. This
// three-state machine generalizes the teacher's two-state (tripped/not)
// CircuitBreaker with an explicit probe state.
type CircuitBreaker struct {
	mu sync.Mutex

	failureThreshold int
	cooldown         time.Duration

	state            BreakerState
	consecutiveFails int
	openedAt         time.Time
	halfOpenProbeUsed bool
}

// NewCircuitBreaker creates a closed breaker. A non-positive threshold
// disables tripping entirely (always closed).
func NewCircuitBreaker(failureThreshold int, cooldown time.Duration) *CircuitBreaker {
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &CircuitBreaker{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		state:            Closed,
	}
}

// State returns the current state, promoting OPEN to HALF_OPEN once the
// cooldown has elapsed.
func (c *CircuitBreaker) State() BreakerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybePromoteToHalfOpen()
	return c.state
}

func (c *CircuitBreaker) maybePromoteToHalfOpen() {
	if c.state == Open && time.Since(c.openedAt) >= c.cooldown {
		c.state = HalfOpen
		c.halfOpenProbeUsed = false
		log.Info().Msg("risk: circuit breaker half-open, probe allowed")
	}
}

// TryAcquire reports whether an order may proceed past the breaker, and
// claims the single HALF_OPEN probe slot if it does. It promotes OPEN to
// HALF_OPEN once the cooldown has elapsed, always admits in CLOSED, admits
// exactly one in-flight order in HALF_OPEN, and rejects otherwise.
func (c *CircuitBreaker) TryAcquire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybePromoteToHalfOpen()

	switch c.state {
	case Closed:
		return true
	case HalfOpen:
		if c.halfOpenProbeUsed {
			return false
		}
		c.halfOpenProbeUsed = true
		return true
	default:
		return false
	}
}

// RecordFailure increments the consecutive-failure count. In CLOSED state
// it trips to OPEN once the threshold is reached. In HALF_OPEN it fails the
// probe and re-opens immediately.
func (c *CircuitBreaker) RecordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybePromoteToHalfOpen()

	switch c.state {
	case HalfOpen:
		c.trip()
	case Closed:
		c.consecutiveFails++
		if c.failureThreshold > 0 && c.consecutiveFails >= c.failureThreshold {
			c.trip()
		}
	}
}

// RecordSuccess resets the failure counter in CLOSED state, or closes the
// breaker on a successful HALF_OPEN probe.
func (c *CircuitBreaker) RecordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.maybePromoteToHalfOpen()

	switch c.state {
	case HalfOpen:
		c.reset()
	case Closed:
		c.consecutiveFails = 0
	}
}

func (c *CircuitBreaker) trip() {
	c.state = Open
	c.openedAt = time.Now()
	c.consecutiveFails = 0
	log.Warn().Msg("risk: circuit breaker tripped OPEN")
}

func (c *CircuitBreaker) reset() {
	c.state = Closed
	c.consecutiveFails = 0
	log.Info().Msg("risk: circuit breaker reset CLOSED")
}

// ForceReset manually closes the breaker, used by operator intervention.
func (c *CircuitBreaker) ForceReset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}
