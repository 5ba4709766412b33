package oauthcore

import (
	"sync"

	"github.com/httpcraft/oauthcore/internal/oauthconfig"
)

// credentialStore is the persistence abstraction for the Credential Store
// (C2, spec.md §4.2). Implementations must be safe for concurrent use.
type credentialStore interface {
	get(key StoreKey) (*TokenBundle, bool)
	put(key StoreKey, bundle *TokenBundle) error
	clear(key StoreKey) error
}

// keyedStore wraps a backend with the per-key mutex table spec.md §5
// recommends, and implements the store-level invariants: a bundle with no
// access token or with Error set is never persisted, and CreatedAt is
// stamped at put time if the caller didn't already set one.
type keyedStore struct {
	backend credentialStore

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedStore(backend credentialStore) *keyedStore {
	return &keyedStore{backend: backend, locks: make(map[string]*sync.Mutex)}
}

func (s *keyedStore) lockFor(key StoreKey) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key.String()
	l, ok := s.locks[k]
	if !ok {
		l = &sync.Mutex{}
		s.locks[k] = l
	}
	return l
}

// get returns the stored bundle for key, if any.
func (s *keyedStore) get(key StoreKey) (*TokenBundle, bool) {
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	return s.backend.get(key)
}

// put stores bundle under key. Per spec.md §4.2, a bundle with an empty
// AccessToken or a non-empty Error is never persisted.
func (s *keyedStore) put(key StoreKey, bundle *TokenBundle) error {
	if bundle == nil || bundle.AccessToken == "" || bundle.Error != "" {
		return nil
	}

	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	stamped := *bundle
	if stamped.CreatedAt == 0 {
		stamped.CreatedAt = nowMillis()
	}
	return s.backend.put(key, &stamped)
}

// clear removes any stored bundle for key.
func (s *keyedStore) clear(key StoreKey) error {
	l := s.lockFor(key)
	l.Lock()
	defer l.Unlock()

	return s.backend.clear(key)
}

// sessionIdOf resolves the stable identifier used to key the Session
// Manager's in-memory state (C9), derived from the same (collectionUid,
// tokenUrl) pair the Credential Store keys on. Kept alongside the store per
// spec.md §4.2's literal placement, even though its only caller is the
// Session Manager.
func sessionIdOf(collectionUid, tokenUrl string) string {
	return collectionUid + "\x00" + tokenUrl
}

// newDefaultCredentialStore picks the OS keyring when it's usable and the
// caller hasn't opted out via OAUTHCORE_NO_KEYRING, falling back to the
// file store otherwise -- the same probe-then-fallback sequence as the
// teacher's auth.NewStore.
func newDefaultCredentialStore() *keyedStore {
	fallback := newFileStore(oauthconfig.StorageDir())
	if oauthconfig.KeyringDisabled() {
		return newKeyedStore(fallback)
	}

	kr := newKeyringStore()
	if kr.probe() {
		return newKeyedStore(&migratingStore{primary: kr, fallback: fallback})
	}
	return newKeyedStore(fallback)
}

// migratingStore reads through fallback once per key on a primary miss and,
// if found there, migrates the bundle into primary -- mirroring the
// teacher's MigrateToKeyring, but done lazily per key instead of as a
// one-shot bulk pass.
type migratingStore struct {
	primary  credentialStore
	fallback credentialStore
}

func (m *migratingStore) get(key StoreKey) (*TokenBundle, bool) {
	if bundle, ok := m.primary.get(key); ok {
		return bundle, true
	}
	bundle, ok := m.fallback.get(key)
	if !ok {
		return nil, false
	}
	if err := m.primary.put(key, bundle); err == nil {
		_ = m.fallback.clear(key)
	}
	return bundle, true
}

func (m *migratingStore) put(key StoreKey, bundle *TokenBundle) error {
	return m.primary.put(key, bundle)
}

func (m *migratingStore) clear(key StoreKey) error {
	err1 := m.primary.clear(key)
	err2 := m.fallback.clear(key)
	if err1 != nil {
		return err1
	}
	return err2
}
