package oauthcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecideCacheActionForceFetchAlwaysWins(t *testing.T) {
	assert.Equal(t, decisionFreshFetch, decideCacheAction(true, true, false, true, true, true))
	assert.Equal(t, decisionFreshFetch, decideCacheAction(true, false, true, false, false, false))
}

func TestDecideCacheActionNothingStored(t *testing.T) {
	assert.Equal(t, decisionReturnNone, decideCacheAction(false, false, true, false, true, false))
	assert.Equal(t, decisionFreshFetch, decideCacheAction(false, false, true, false, true, true))
}

func TestDecideCacheActionFreshStoredIsCacheHit(t *testing.T) {
	assert.Equal(t, decisionCacheHit, decideCacheAction(false, true, false, true, true, true))
	assert.Equal(t, decisionCacheHit, decideCacheAction(false, true, false, false, false, false))
}

func TestDecideCacheActionExpiredPrefersRefresh(t *testing.T) {
	assert.Equal(t, decisionRefreshAttempt, decideCacheAction(false, true, true, true, true, true))
}

func TestDecideCacheActionExpiredNoRefreshTokenFallsBackToFetch(t *testing.T) {
	assert.Equal(t, decisionFreshFetch, decideCacheAction(false, true, true, false, true, true))
}

func TestDecideCacheActionExpiredRefreshDisabledFallsBackToFetch(t *testing.T) {
	assert.Equal(t, decisionFreshFetch, decideCacheAction(false, true, true, true, false, true))
}

func TestDecideCacheActionExpiredNothingAllowedReturnsExpired(t *testing.T) {
	assert.Equal(t, decisionReturnExpired, decideCacheAction(false, true, true, false, true, false))
	assert.Equal(t, decisionReturnExpired, decideCacheAction(false, true, true, true, false, false))
}

func TestCacheDecisionStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown", cacheDecision(99).String())
}
