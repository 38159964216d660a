package resilience

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitState uint8

const (
	CircuitStateClosed CircuitState = iota
	CircuitStateOpen
	CircuitStateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitStateOpen:
		return "open"
	case CircuitStateHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}

// CircuitBreaker fails fast once consecutive failures reach the threshold.
// After the open timeout it lets a limited number of probes through; all of
// them must succeed to close again.
type CircuitBreaker struct {
	mu    sync.Mutex
	cfg   CircuitBreakerConfig
	clock clockwork.Clock

	state     CircuitState
	failures  int
	openUntil time.Time
	probes    int
	passed    int
}

func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return NewCircuitBreakerWithClock(cfg, nil)
}

func NewCircuitBreakerWithClock(cfg CircuitBreakerConfig, clock clockwork.Clock) *CircuitBreaker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CircuitBreaker{cfg: NormalizeCircuitBreakerConfig(cfg), clock: clock}
}

// advance moves an expired open breaker to half-open. Callers hold mu.
func (b *CircuitBreaker) advance() {
	if b.state == CircuitStateOpen && !b.clock.Now().Before(b.openUntil) {
		b.reset(CircuitStateHalfOpen)
	}
}

func (b *CircuitBreaker) reset(state CircuitState) {
	b.state = state
	b.failures = 0
	b.probes = 0
	b.passed = 0
	b.openUntil = time.Time{}
	if state == CircuitStateOpen {
		b.openUntil = b.clock.Now().Add(b.cfg.OpenTimeout)
	}
}

func (b *CircuitBreaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	switch b.state {
	case CircuitStateOpen:
		return ErrCircuitOpen
	case CircuitStateHalfOpen:
		if b.probes >= b.cfg.HalfOpenMaxReq {
			return ErrCircuitOpen
		}
		b.probes++
	}
	return nil
}

func (b *CircuitBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures = 0
	case CircuitStateHalfOpen:
		b.passed++
		if b.passed >= b.cfg.HalfOpenMaxReq {
			b.reset(CircuitStateClosed)
		}
	}
}

func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case CircuitStateClosed:
		b.failures++
		if b.failures >= b.cfg.FailureThreshold {
			b.reset(CircuitStateOpen)
		}
	default:
		// A failed probe, or a late failure from a call admitted before the
		// breaker opened, restarts the open window.
		b.reset(CircuitStateOpen)
	}
}

func (b *CircuitBreaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.advance()
	return b.state
}
