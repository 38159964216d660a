package resilience

import "time"

type CircuitBreakerConfig struct {
	Enabled          bool
	FailureThreshold int
	OpenTimeout      time.Duration
	HalfOpenMaxReq   int
}

func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// NormalizeCircuitBreakerConfig fills unset limits from the defaults. Enabled
// is left as given.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}

// Guard is the per-upstream entry point used by the external clients. A nil
// or disabled guard allows everything and records nothing.
type Guard struct {
	breaker *CircuitBreaker
}

func NewGuard(cfg CircuitBreakerConfig) *Guard {
	if !cfg.Enabled {
		return &Guard{}
	}
	return &Guard{breaker: NewCircuitBreaker(cfg)}
}

func (g *Guard) Allow() error {
	if g == nil || g.breaker == nil {
		return nil
	}
	return g.breaker.Allow()
}

// Record counts err as a failure only when isFailure says so. Caller mistakes
// such as a 400 count as a healthy upstream.
func (g *Guard) Record(err error, isFailure func(error) bool) {
	if g == nil || g.breaker == nil {
		return
	}
	if err != nil && isFailure != nil && isFailure(err) {
		g.breaker.RecordFailure()
		return
	}
	g.breaker.RecordSuccess()
}

func (g *Guard) State() CircuitState {
	if g == nil || g.breaker == nil {
		return CircuitStateClosed
	}
	return g.breaker.State()
}
