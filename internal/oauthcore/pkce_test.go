package oauthcore

import (
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerifierLength(t *testing.T) {
	v, err := generateVerifier()
	require.NoError(t, err)
	assert.Len(t, v, 44)
}

func TestGenerateVerifierUnique(t *testing.T) {
	a, err := generateVerifier()
	require.NoError(t, err)
	b, err := generateVerifier()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestGenerateChallengeIsS256(t *testing.T) {
	verifier := "some-fixed-verifier-value"
	sum := sha256.Sum256([]byte(verifier))
	want := base64.RawURLEncoding.EncodeToString(sum[:])

	assert.Equal(t, want, generateChallenge(verifier))
}

func TestGenerateChallengeHasNoPadding(t *testing.T) {
	challenge := generateChallenge("verifier")
	assert.NotContains(t, challenge, "=")
	assert.NotContains(t, challenge, "+")
	assert.NotContains(t, challenge, "/")
}

func TestNewPKCEPair(t *testing.T) {
	pair, err := newPKCEPair()
	require.NoError(t, err)
	assert.Equal(t, generateChallenge(pair.verifier), pair.challenge)
}
