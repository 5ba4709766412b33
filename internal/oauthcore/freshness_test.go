package oauthcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExpiredNilBundle(t *testing.T) {
	assert.True(t, isExpired(nil, 1000))
}

func TestIsExpiredNoAccessToken(t *testing.T) {
	assert.True(t, isExpired(&TokenBundle{}, 1000))
}

func TestIsExpiredNoExpiryFields(t *testing.T) {
	bundle := &TokenBundle{AccessToken: "tok"}
	assert.False(t, isExpired(bundle, 1_000_000))
}

func TestIsExpiredBeforeDeadline(t *testing.T) {
	bundle := &TokenBundle{AccessToken: "tok", CreatedAt: 1000, ExpiresIn: 60}
	assert.False(t, isExpired(bundle, 1000+59_000))
}

func TestIsExpiredAfterDeadline(t *testing.T) {
	bundle := &TokenBundle{AccessToken: "tok", CreatedAt: 1000, ExpiresIn: 60}
	assert.True(t, isExpired(bundle, 1000+60_001))
}

func TestIsExpiredAtExactBoundary(t *testing.T) {
	bundle := &TokenBundle{AccessToken: "tok", CreatedAt: 1000, ExpiresIn: 60}
	assert.False(t, isExpired(bundle, 1000+60_000))
}
