package oauthcore

import (
	"sync"
	"time"
)

// Circuit breaker states, mirroring the teacher's
// internal/resilience.CircuitBreakerState.
const (
	circuitClosed   = "closed"
	circuitOpen     = "open"
	circuitHalfOpen = "half_open"
)

// circuitBreakerConfig configures the per-token-endpoint circuit breaker
// guarding the Token Endpoint Client (C5). Trimmed from the teacher's
// internal/resilience.CircuitBreakerConfig: this variant is in-memory only
// (no cross-process file persistence) because token acquisitions are rare
// enough within one process that cross-process coordination isn't worth
// the complexity spec.md never asked for.
type circuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
}

func defaultCircuitBreakerConfig() circuitBreakerConfig {
	return circuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      30 * time.Second,
	}
}

// circuitBreaker is a minimal closed/open/half-open breaker scoped to a
// single token endpoint URL.
type circuitBreaker struct {
	cfg circuitBreakerConfig

	mu        sync.Mutex
	state     string
	failures  int
	successes int
	openedAt  time.Time
}

func newCircuitBreaker(cfg circuitBreakerConfig) *circuitBreaker {
	return &circuitBreaker{cfg: cfg, state: circuitClosed}
}

// Allow reports whether a call should proceed. In half-open state it does
// not reserve a slot (this breaker is single-process and single-key, so
// there's no thundering-herd concern the teacher's cross-process variant
// has to guard against).
func (cb *circuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitOpen:
		if time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
			cb.state = circuitHalfOpen
			cb.successes = 0
			cb.failures = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess records a successful call.
func (cb *circuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitHalfOpen:
		cb.successes++
		if cb.successes >= cb.cfg.SuccessThreshold {
			cb.state = circuitClosed
			cb.failures = 0
			cb.successes = 0
		}
	case circuitClosed:
		cb.failures = 0
	}
}

// RecordFailure records a failed call.
func (cb *circuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case circuitClosed:
		cb.failures++
		if cb.failures >= cb.cfg.FailureThreshold {
			cb.state = circuitOpen
			cb.openedAt = time.Now()
		}
	case circuitHalfOpen:
		cb.state = circuitOpen
		cb.openedAt = time.Now()
		cb.successes = 0
	}
}

// circuitBreakerRegistry hands out one breaker per token endpoint URL,
// lazily, guarded by a single mutex (low contention, same rationale as the
// teacher's Session Manager table).
type circuitBreakerRegistry struct {
	mu       sync.Mutex
	breakers map[string]*circuitBreaker
	cfg      circuitBreakerConfig
}

func newCircuitBreakerRegistry(cfg circuitBreakerConfig) *circuitBreakerRegistry {
	return &circuitBreakerRegistry{breakers: make(map[string]*circuitBreaker), cfg: cfg}
}

func (r *circuitBreakerRegistry) forURL(url string) *circuitBreaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	cb, ok := r.breakers[url]
	if !ok {
		cb = newCircuitBreaker(r.cfg)
		r.breakers[url] = cb
	}
	return cb
}
