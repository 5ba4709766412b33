package oauthcore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"time"
)

// defaultAuthorizationTimeout bounds how long GetTokenUsingAuthorizationCode
// waits for the browser-mediated redirect before giving up (spec.md §4.6).
const defaultAuthorizationTimeout = 5 * time.Minute

// Manager is the package's single caller-facing entry point (C8, spec.md
// §6), fronting the Credential Store, Freshness Oracle, Token Endpoint
// Client, Refresh Engine, Session Manager and authorization window behind
// the five operations callers actually need.
type Manager struct {
	store     *keyedStore
	client    *tokenClient
	refresher *refreshEngine
	sessions  *sessionManager
	window    authorizationWindow
	logger    *slog.Logger
}

// ManagerOption customizes a Manager at construction time.
type ManagerOption func(*Manager)

// WithHTTPClient overrides the *http.Client used for token-endpoint
// exchanges, e.g. to point at an httptest.Server in tests.
func WithHTTPClient(hc *http.Client) ManagerOption {
	return func(m *Manager) {
		m.client = newTokenClient(hc, nil)
	}
}

// WithTraceWriter attaches a TraceWriter that receives a redacted line pair
// for every token-endpoint exchange.
func WithTraceWriter(tw *TraceWriter) ManagerOption {
	return func(m *Manager) {
		m.client.trace = tw
	}
}

// WithLogger attaches a *slog.Logger that receives a Debug line for each
// cache decision (cache hit, cache expired, refresh attempted, fresh
// fetch) and a Warn line when a refresh or store write fails. A nil
// logger (the default) disables all of this package's logging.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// withAuthorizationWindow overrides the authorization window, used by tests
// to script a scenario without a real browser or callback server.
func withAuthorizationWindow(w authorizationWindow) ManagerOption {
	return func(m *Manager) { m.window = w }
}

// withCredentialStore overrides the backing credential store, used by
// tests to avoid touching the real OS keyring or filesystem.
func withCredentialStore(s *keyedStore) ManagerOption {
	return func(m *Manager) { m.store = s }
}

// NewManager constructs a Manager with the default keyring-first credential
// store and a local-callback-server authorization window.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    newDefaultCredentialStore(),
		client:   newTokenClient(nil, nil),
		sessions: newSessionManager(),
		window:   newLocalCallbackWindow(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.refresher = newRefreshEngine(m.client, m.store)
	return m
}

// Close releases the Manager's background resources (the session table's
// eviction goroutine).
func (m *Manager) Close() {
	m.sessions.close()
}

// resolveCredentialsId returns the caller's chosen id, or a stable id
// derived from the parts of req that identify a distinct credential set
// when none was given. It must be deterministic across calls with an
// identical RequestConfig -- otherwise repeated calls would never hit the
// Credential Store's cache (spec.md §4.2's "defaults to a generated id if
// empty" is about not requiring the caller to invent one, not about a
// fresh id on every call).
func resolveCredentialsId(req RequestConfig) string {
	if req.CredentialsId != "" {
		return req.CredentialsId
	}
	sum := sha256.Sum256([]byte(string(req.GrantType) + "\x00" + req.ClientId + "\x00" + req.Username))
	return "auto-" + hex.EncodeToString(sum[:8])
}

func storeKeyFor(collectionUid string, req RequestConfig, credentialsId string) StoreKey {
	return StoreKey{CollectionUid: collectionUid, TokenUrl: req.AccessTokenUrl, CredentialsId: credentialsId}
}

// logDebug and logWarn are nil-safe: a Manager with no WithLogger option
// logs nothing, the same way the teacher's App only attaches a debug
// logger when -v is actually passed.
func (m *Manager) logDebug(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Debug(msg, args...)
	}
}

func (m *Manager) logWarn(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}

// GetAuthorizationCode drives only the interactive authorization-window
// half of the authorization_code grant, returning the code so a caller
// that wants to inspect it before exchange still can. Most callers should
// use GetTokenUsingAuthorizationCode instead, which does both steps.
func (m *Manager) GetAuthorizationCode(ctx context.Context, req RequestConfig) (string, DebugInfo, error) {
	if req.AuthorizationUrl == "" || req.CallbackUrl == "" {
		return "", DebugInfo{}, ErrConfiguration("invalid or missing request configuration")
	}
	var pkce *pkcePair
	if req.PKCE {
		p, err := newPKCEPair()
		if err != nil {
			return "", DebugInfo{}, ErrConfiguration("invalid or missing request configuration")
		}
		pkce = p
	}
	return m.window.authorize(ctx, req, pkce, defaultAuthorizationTimeout)
}

// GetTokenUsingAuthorizationCode runs the full authorization_code grant:
// consult the cache-decision engine, and on a fresh-fetch decision open the
// authorization window, exchange the returned code for a token, and
// persist it (spec.md §4.6, §4.8).
func (m *Manager) GetTokenUsingAuthorizationCode(ctx context.Context, collectionUid string, req RequestConfig, forceFetch bool) (Result, error) {
	if req.AuthorizationUrl == "" || req.CallbackUrl == "" || req.AccessTokenUrl == "" {
		return Result{}, ErrConfiguration("invalid or missing request configuration")
	}

	credentialsId := resolveCredentialsId(req)
	key := storeKeyFor(collectionUid, req, credentialsId)
	m.sessions.sessionFor(collectionUid, req.AccessTokenUrl)

	stored, present := m.store.get(key)
	expired := isExpired(stored, nowMillis())
	hasRefresh := present && stored.RefreshToken != ""

	decision := decideCacheAction(forceFetch, present, expired, hasRefresh, req.AutoRefreshToken, req.AutoFetchToken)

	switch decision {
	case decisionCacheHit:
		m.logDebug("cache hit", "collection", collectionUid, "url", req.AccessTokenUrl)
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: stored, CredentialsId: credentialsId}, nil

	case decisionReturnExpired:
		m.logDebug("cache expired", "collection", collectionUid, "url", req.AccessTokenUrl)
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: stored, CredentialsId: credentialsId}, nil

	case decisionReturnNone:
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId}, nil

	case decisionRefreshAttempt:
		m.logDebug("refresh attempted", "collection", collectionUid, "url", req.AccessTokenUrl)
		rr := m.refresher.refresh(ctx, key, req, stored)
		if !rr.Cleared {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: rr.Bundle, CredentialsId: credentialsId, DebugInfo: rr.Debug}, nil
		}
		m.logWarn("refresh failed, store cleared", "collection", collectionUid, "url", req.AccessTokenUrl)
		// Refresh failed; fall through to a fresh fetch only if the
		// caller allows it, else report the stored (expired) bundle
		// verbatim per spec.md §4.8's "else -> RETURN stored (expired)".
		if !req.AutoFetchToken {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: stored, CredentialsId: credentialsId, DebugInfo: rr.Debug}, nil
		}
		fallthrough

	case decisionFreshFetch:
		m.logDebug("fresh fetch", "collection", collectionUid, "url", req.AccessTokenUrl)
		var pkce *pkcePair
		if req.PKCE {
			p, err := newPKCEPair()
			if err != nil {
				return Result{}, ErrConfiguration("invalid or missing request configuration")
			}
			pkce = p
		}

		code, authDebug, err := m.window.authorize(ctx, req, pkce, defaultAuthorizationTimeout)
		if err != nil {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId, DebugInfo: authDebug}, err
		}

		form := buildForm(req, map[string]string{
			"grant_type":   "authorization_code",
			"code":         code,
			"redirect_uri": req.CallbackUrl,
		}, true)
		if req.PKCE && pkce != nil {
			form.Set("code_verifier", pkce.verifier)
		}

		tokenDebug := DebugInfo{}
		bundle, err := m.client.exchange(ctx, req.AccessTokenUrl, form, req.CredentialsPlacement, req.ClientId, req.ClientSecret, &tokenDebug)
		merged := Merge(authDebug, tokenDebug)
		if err != nil {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId, DebugInfo: merged}, err
		}
		if bundle.Error != "" {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId, DebugInfo: merged}, ErrTokenEndpoint(0, bundle.Error, nil)
		}

		if err := m.store.put(key, bundle); err != nil {
			m.logWarn("store write failed", "collection", collectionUid, "url", req.AccessTokenUrl, "error", err)
		}
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: bundle, CredentialsId: credentialsId, DebugInfo: merged}, nil
	}

	return Result{}, ErrConfiguration("invalid or missing request configuration")
}

// GetTokenUsingClientCredentials runs the client_credentials grant,
// following the same cache-decision engine as the other grants (spec.md
// §4.6's client_credentials variant: no authorization window, no refresh
// token expected from most servers, but treated identically otherwise).
func (m *Manager) GetTokenUsingClientCredentials(ctx context.Context, collectionUid string, req RequestConfig, forceFetch bool) (Result, error) {
	if req.AccessTokenUrl == "" {
		return Result{}, ErrConfiguration("invalid or missing request configuration")
	}
	return m.getTokenGeneric(ctx, collectionUid, req, forceFetch, func(debug *DebugInfo) (*TokenBundle, error) {
		form := buildForm(req, map[string]string{"grant_type": "client_credentials"}, true)
		return m.client.exchange(ctx, req.AccessTokenUrl, form, req.CredentialsPlacement, req.ClientId, req.ClientSecret, debug)
	})
}

// GetTokenUsingPasswordCredentials runs the resource-owner password grant.
func (m *Manager) GetTokenUsingPasswordCredentials(ctx context.Context, collectionUid string, req RequestConfig, forceFetch bool) (Result, error) {
	if req.AccessTokenUrl == "" || req.Username == "" {
		return Result{}, ErrConfiguration("invalid or missing request configuration")
	}
	return m.getTokenGeneric(ctx, collectionUid, req, forceFetch, func(debug *DebugInfo) (*TokenBundle, error) {
		form := buildForm(req, map[string]string{
			"grant_type": "password",
			"username":   req.Username,
			"password":   req.Password,
		}, true)
		return m.client.exchange(ctx, req.AccessTokenUrl, form, req.CredentialsPlacement, req.ClientId, req.ClientSecret, debug)
	})
}

// getTokenGeneric factors the cache-decision plumbing shared by the two
// non-interactive grants; only the fresh-fetch exchange itself differs.
func (m *Manager) getTokenGeneric(ctx context.Context, collectionUid string, req RequestConfig, forceFetch bool, fetch func(*DebugInfo) (*TokenBundle, error)) (Result, error) {
	credentialsId := resolveCredentialsId(req)
	key := storeKeyFor(collectionUid, req, credentialsId)
	m.sessions.sessionFor(collectionUid, req.AccessTokenUrl)

	stored, present := m.store.get(key)
	expired := isExpired(stored, nowMillis())
	hasRefresh := present && stored.RefreshToken != ""

	decision := decideCacheAction(forceFetch, present, expired, hasRefresh, req.AutoRefreshToken, req.AutoFetchToken)

	switch decision {
	case decisionCacheHit:
		m.logDebug("cache hit", "collection", collectionUid, "url", req.AccessTokenUrl)
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: stored, CredentialsId: credentialsId}, nil

	case decisionReturnExpired:
		m.logDebug("cache expired", "collection", collectionUid, "url", req.AccessTokenUrl)
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: stored, CredentialsId: credentialsId}, nil

	case decisionReturnNone:
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId}, nil

	case decisionRefreshAttempt:
		m.logDebug("refresh attempted", "collection", collectionUid, "url", req.AccessTokenUrl)
		rr := m.refresher.refresh(ctx, key, req, stored)
		if !rr.Cleared {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: rr.Bundle, CredentialsId: credentialsId, DebugInfo: rr.Debug}, nil
		}
		m.logWarn("refresh failed, store cleared", "collection", collectionUid, "url", req.AccessTokenUrl)
		// Refresh failed; fall through to a fresh fetch only if the
		// caller allows it, else report the stored (expired) bundle
		// verbatim per spec.md §4.8's "else -> RETURN stored (expired)".
		if !req.AutoFetchToken {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: stored, CredentialsId: credentialsId, DebugInfo: rr.Debug}, nil
		}
		fallthrough

	case decisionFreshFetch:
		m.logDebug("fresh fetch", "collection", collectionUid, "url", req.AccessTokenUrl)
		debug := DebugInfo{}
		bundle, err := fetch(&debug)
		if err != nil {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId, DebugInfo: debug}, err
		}
		if bundle.Error != "" {
			return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId, DebugInfo: debug}, ErrTokenEndpoint(0, bundle.Error, nil)
		}
		if err := m.store.put(key, bundle); err != nil {
			m.logWarn("store write failed", "collection", collectionUid, "url", req.AccessTokenUrl, "error", err)
		}
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: bundle, CredentialsId: credentialsId, DebugInfo: debug}, nil
	}

	return Result{}, ErrConfiguration("invalid or missing request configuration")
}

// RefreshToken forces a refresh of collectionUid/req's stored bundle,
// regardless of expiry, clearing the store on failure per spec.md §4.7.
func (m *Manager) RefreshToken(ctx context.Context, collectionUid string, req RequestConfig) (Result, error) {
	if req.AccessTokenUrl == "" {
		return Result{}, ErrConfiguration("invalid or missing request configuration")
	}
	credentialsId := resolveCredentialsId(req)
	key := storeKeyFor(collectionUid, req, credentialsId)

	stored, _ := m.store.get(key)
	rr := m.refresher.refresh(ctx, key, req, stored)
	if rr.Cleared {
		m.logWarn("refresh failed, store cleared", "collection", collectionUid, "url", req.AccessTokenUrl)
		return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, CredentialsId: credentialsId, DebugInfo: rr.Debug}, nil
	}
	return Result{CollectionUid: collectionUid, Url: req.AccessTokenUrl, Credentials: rr.Bundle, CredentialsId: credentialsId, DebugInfo: rr.Debug}, nil
}

// ClearToken removes any stored bundle and session state for the given
// collection/request/credentials triple.
func (m *Manager) ClearToken(collectionUid string, req RequestConfig, credentialsId string) error {
	if credentialsId == "" {
		credentialsId = resolveCredentialsId(req)
	}
	key := storeKeyFor(collectionUid, req, credentialsId)
	m.sessions.forget(collectionUid, req.AccessTokenUrl)
	return m.store.clear(key)
}
