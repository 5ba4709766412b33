// Package oauthcore implements OAuth 2.0 token acquisition, caching,
// refresh, and per-exchange debug tracing across the authorization_code
// (with optional PKCE), client_credentials, and password grant types.
package oauthcore

import (
	"encoding/json"
	"time"
)

// GrantType identifies which OAuth 2.0 flow a request configuration drives.
type GrantType string

const (
	GrantAuthorizationCode GrantType = "authorization_code"
	GrantClientCredentials GrantType = "client_credentials"
	GrantPassword          GrantType = "password"
)

// CredentialsPlacement controls where client credentials are sent on the
// token-endpoint request.
type CredentialsPlacement string

const (
	PlacementBasicAuthHeader CredentialsPlacement = "basic_auth_header"
	PlacementBody            CredentialsPlacement = "body"
)

// RequestConfig is the caller-supplied description of an OAuth 2.0 grant,
// shared across all three grant orchestrators. Fields not relevant to a
// given GrantType are ignored.
type RequestConfig struct {
	GrantType GrantType

	AccessTokenUrl   string
	RefreshTokenUrl  string // optional; falls back to AccessTokenUrl
	AuthorizationUrl string // authorization_code only
	CallbackUrl      string // authorization_code only

	ClientId     string
	ClientSecret string

	Username string // password grant only
	Password string // password grant only

	Scope string // optional, space-delimited
	State string // optional, authorization_code only
	PKCE  bool   // authorization_code only

	CredentialsPlacement CredentialsPlacement
	CredentialsId        string // caller-chosen; defaults to a generated id if empty

	AutoRefreshToken bool
	AutoFetchToken   bool
}

// refreshURL resolves the token endpoint used for refresh exchanges.
func (r RequestConfig) refreshURL() string {
	if r.RefreshTokenUrl != "" {
		return r.RefreshTokenUrl
	}
	return r.AccessTokenUrl
}

// TokenBundle is the unit of storage and the unit returned to callers. Known
// fields are typed; anything else the token endpoint returns is preserved
// verbatim in Extra so round-tripping through the store never loses data.
type TokenBundle struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`

	// CreatedAt is stamped exactly once, by the Credential Store, at the
	// moment the bundle is received. It is milliseconds since the Unix
	// epoch to match the wire-level precision callers expect.
	CreatedAt int64 `json:"created_at,omitempty"`

	// Error carries an OAuth error code ("invalid_grant", etc.) when the
	// token endpoint responded with one instead of a token. A bundle with
	// Error set is never persisted by the Credential Store.
	Error            string `json:"error,omitempty"`
	ErrorDescription string `json:"error_description,omitempty"`

	Extra map[string]any `json:"-"`
}

// Present reports whether the bundle represents a usable token, per the
// data-model invariant that a stored bundle always has a non-empty
// access_token.
func (b *TokenBundle) Present() bool {
	return b != nil && b.AccessToken != ""
}

// knownTokenBundleFields lists the JSON keys handled by named struct fields,
// so UnmarshalJSON can route everything else into Extra.
var knownTokenBundleFields = map[string]bool{
	"access_token": true, "token_type": true, "refresh_token": true,
	"scope": true, "expires_in": true, "created_at": true,
	"error": true, "error_description": true,
}

// MarshalJSON flattens Extra alongside the known fields so persisted bundles
// round-trip every field the token endpoint sent, not just the ones this
// package understands.
func (b TokenBundle) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(b.Extra)+8)
	for k, v := range b.Extra {
		out[k] = v
	}
	if b.AccessToken != "" {
		out["access_token"] = b.AccessToken
	}
	if b.TokenType != "" {
		out["token_type"] = b.TokenType
	}
	if b.RefreshToken != "" {
		out["refresh_token"] = b.RefreshToken
	}
	if b.Scope != "" {
		out["scope"] = b.Scope
	}
	if b.ExpiresIn != 0 {
		out["expires_in"] = b.ExpiresIn
	}
	if b.CreatedAt != 0 {
		out["created_at"] = b.CreatedAt
	}
	if b.Error != "" {
		out["error"] = b.Error
	}
	if b.ErrorDescription != "" {
		out["error_description"] = b.ErrorDescription
	}
	return json.Marshal(out)
}

// UnmarshalJSON captures unrecognized fields into Extra instead of dropping
// them, per the data model's "additional fields preserved verbatim"
// invariant.
func (b *TokenBundle) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	type known struct {
		AccessToken      string `json:"access_token"`
		TokenType        string `json:"token_type,omitempty"`
		RefreshToken     string `json:"refresh_token,omitempty"`
		Scope            string `json:"scope,omitempty"`
		ExpiresIn        int64  `json:"expires_in,omitempty"`
		CreatedAt        int64  `json:"created_at,omitempty"`
		Error            string `json:"error,omitempty"`
		ErrorDescription string `json:"error_description,omitempty"`
	}
	var k known
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}

	b.AccessToken = k.AccessToken
	b.TokenType = k.TokenType
	b.RefreshToken = k.RefreshToken
	b.Scope = k.Scope
	b.ExpiresIn = k.ExpiresIn
	b.CreatedAt = k.CreatedAt
	b.Error = k.Error
	b.ErrorDescription = k.ErrorDescription

	extra := make(map[string]any)
	for key, v := range raw {
		if !knownTokenBundleFields[key] {
			extra[key] = v
		}
	}
	if len(extra) > 0 {
		b.Extra = extra
	}
	return nil
}

// StoreKey addresses a single token bundle. All three parts are required;
// retrieve/update/clear never alias across mismatched keys.
type StoreKey struct {
	CollectionUid string
	TokenUrl      string
	CredentialsId string
}

func (k StoreKey) String() string {
	return k.CollectionUid + "\x00" + k.TokenUrl + "\x00" + k.CredentialsId
}

// Result is the shape every caller-facing operation returns.
type Result struct {
	CollectionUid string
	Url           string
	Credentials   *TokenBundle
	CredentialsId string
	DebugInfo     DebugInfo
}

// nowMillis is the single clock read used to stamp TokenBundle.CreatedAt and
// to evaluate freshness, kept as a var so tests can override it.
var nowMillis = func() int64 {
	return time.Now().UnixMilli()
}
