package oauthcore

import (
	"context"
)

// refreshEngine performs the refresh_token grant against a stored bundle
// (C7, spec.md §4.7). A refresh failure clears the stored bundle and is
// reported to the caller as a fresh-fetch requirement, never propagated as
// a hard error on its own -- the orchestrator decides what to do next.
type refreshEngine struct {
	client *tokenClient
	store  *keyedStore
}

func newRefreshEngine(client *tokenClient, store *keyedStore) *refreshEngine {
	return &refreshEngine{client: client, store: store}
}

// refreshResult carries the outcome of one refresh attempt.
type refreshResult struct {
	Bundle *TokenBundle
	Debug  DebugInfo
	// Cleared is true when the stored bundle was cleared because it had
	// no refresh token, or because the refresh exchange itself failed.
	Cleared bool
}

// refresh attempts to renew key's stored bundle. It resolves the refresh
// URL as RefreshTokenUrl if set, else AccessTokenUrl (spec.md's
// refreshURL() helper), and clears the stored bundle on any failure path
// so a subsequent call re-evaluates from scratch instead of retrying a
// known-bad refresh token forever.
func (e *refreshEngine) refresh(ctx context.Context, key StoreKey, req RequestConfig, stored *TokenBundle) refreshResult {
	debug := DebugInfo{}

	if stored == nil || stored.RefreshToken == "" {
		_ = e.store.clear(key)
		return refreshResult{Debug: debug, Cleared: true}
	}

	refreshURL := req.refreshURL()
	if refreshURL == "" {
		_ = e.store.clear(key)
		return refreshResult{Debug: debug, Cleared: true}
	}

	form := buildForm(req, map[string]string{
		"grant_type":    "refresh_token",
		"refresh_token": stored.RefreshToken,
	}, false)

	candidate, err := e.client.exchange(ctx, refreshURL, form, req.CredentialsPlacement, req.ClientId, req.ClientSecret, &debug)
	if err != nil {
		_ = e.store.clear(key)
		return refreshResult{Debug: debug, Cleared: true}
	}
	if candidate.Error != "" {
		_ = e.store.clear(key)
		return refreshResult{Debug: debug, Cleared: true}
	}

	// A refresh response that omits refresh_token does not necessarily
	// mean the authorization server revoked rotation; per DESIGN.md's
	// resolution of the open question, the prior refresh token is
	// preserved rather than dropped.
	if candidate.RefreshToken == "" {
		candidate.RefreshToken = stored.RefreshToken
	}

	_ = e.store.put(key, candidate)
	return refreshResult{Bundle: candidate, Debug: debug}
}
