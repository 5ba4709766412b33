package oauthcore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := newCircuitBreaker(circuitBreakerConfig{FailureThreshold: 3, SuccessThreshold: 1, OpenTimeout: time.Hour})

	assert.True(t, cb.Allow())
	cb.RecordFailure()
	cb.RecordFailure()
	assert.True(t, cb.Allow())
	cb.RecordFailure()

	assert.False(t, cb.Allow())
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := newCircuitBreaker(circuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: 10 * time.Millisecond})

	cb.RecordFailure()
	assert.False(t, cb.Allow())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.Allow())

	cb.RecordSuccess()
	assert.Equal(t, circuitClosed, cb.state)
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := newCircuitBreaker(circuitBreakerConfig{FailureThreshold: 1, SuccessThreshold: 2, OpenTimeout: 10 * time.Millisecond})

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.Allow())

	cb.RecordFailure()
	assert.False(t, cb.Allow())
}

func TestCircuitBreakerRegistryIsPerURL(t *testing.T) {
	reg := newCircuitBreakerRegistry(defaultCircuitBreakerConfig())

	a := reg.forURL("https://a/token")
	b := reg.forURL("https://b/token")
	assert.NotSame(t, a, b)
	assert.Same(t, a, reg.forURL("https://a/token"))
}
