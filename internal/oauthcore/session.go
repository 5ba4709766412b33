package oauthcore

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// sessionIdleTTL bounds how long an idle session entry survives, mirroring
// the teacher's idle-eviction window for its own in-memory caches.
const sessionIdleTTL = 30 * time.Minute

// sessionManager hands out a stable session identifier per
// (collectionUid, tokenUrl) pair for as long as it's actively reused,
// evicting idle entries after sessionIdleTTL (C9, spec.md §4.9). Grounded
// on pilab-dev-shadow-sso's ttlcache-backed memory token store.
type sessionManager struct {
	cache *ttlcache.Cache[string, string]
}

func newSessionManager() *sessionManager {
	cache := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](sessionIdleTTL),
	)
	go cache.Start()
	return &sessionManager{cache: cache}
}

// sessionFor returns the session id for (collectionUid, tokenUrl),
// creating one on first use and refreshing its idle TTL on every call.
func (m *sessionManager) sessionFor(collectionUid, tokenUrl string) string {
	key := sessionIdOf(collectionUid, tokenUrl)
	if item := m.cache.Get(key); item != nil {
		return item.Value()
	}
	id := newRequestId()
	m.cache.Set(key, id, ttlcache.DefaultTTL)
	return id
}

// forget evicts the session for (collectionUid, tokenUrl), used when the
// caller explicitly clears stored credentials.
func (m *sessionManager) forget(collectionUid, tokenUrl string) {
	m.cache.Delete(sessionIdOf(collectionUid, tokenUrl))
}

// close stops the cache's background eviction goroutine.
func (m *sessionManager) close() {
	m.cache.Stop()
}
