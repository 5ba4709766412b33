package oauthcore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBundleRoundTripPreservesExtraFields(t *testing.T) {
	raw := []byte(`{
		"access_token": "abc123",
		"token_type": "Bearer",
		"expires_in": 3600,
		"x_custom_claim": "foo",
		"nested": {"a": 1}
	}`)

	var bundle TokenBundle
	require.NoError(t, json.Unmarshal(raw, &bundle))

	assert.Equal(t, "abc123", bundle.AccessToken)
	assert.Equal(t, "Bearer", bundle.TokenType)
	assert.Equal(t, int64(3600), bundle.ExpiresIn)
	assert.Equal(t, "foo", bundle.Extra["x_custom_claim"])
	assert.NotNil(t, bundle.Extra["nested"])

	out, err := json.Marshal(bundle)
	require.NoError(t, err)

	var roundTripped map[string]any
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Equal(t, "foo", roundTripped["x_custom_claim"])
	assert.Equal(t, "abc123", roundTripped["access_token"])
}

func TestTokenBundlePresent(t *testing.T) {
	var nilBundle *TokenBundle
	assert.False(t, nilBundle.Present())

	assert.False(t, (&TokenBundle{}).Present())
	assert.True(t, (&TokenBundle{AccessToken: "tok"}).Present())
}

func TestStoreKeyStringIsStableAndDistinguishesParts(t *testing.T) {
	a := StoreKey{CollectionUid: "c1", TokenUrl: "https://x/token", CredentialsId: "cred1"}
	b := StoreKey{CollectionUid: "c1", TokenUrl: "https://x/token", CredentialsId: "cred2"}

	assert.Equal(t, a.String(), a.String())
	assert.NotEqual(t, a.String(), b.String())
}

func TestRequestConfigRefreshURLFallsBackToAccessTokenURL(t *testing.T) {
	req := RequestConfig{AccessTokenUrl: "https://x/token"}
	assert.Equal(t, "https://x/token", req.refreshURL())

	req.RefreshTokenUrl = "https://x/refresh"
	assert.Equal(t, "https://x/refresh", req.refreshURL())
}
