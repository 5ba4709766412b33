package oauthcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory credentialStore double for testing keyedStore
// and migratingStore without touching disk or the OS keyring.
type memStore struct {
	data map[string]*TokenBundle
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]*TokenBundle)}
}

func (m *memStore) get(key StoreKey) (*TokenBundle, bool) {
	b, ok := m.data[key.String()]
	return b, ok
}

func (m *memStore) put(key StoreKey, bundle *TokenBundle) error {
	m.data[key.String()] = bundle
	return nil
}

func (m *memStore) clear(key StoreKey) error {
	delete(m.data, key.String())
	return nil
}

func TestKeyedStorePutSkipsBundlesWithNoAccessToken(t *testing.T) {
	backend := newMemStore()
	store := newKeyedStore(backend)
	key := StoreKey{CollectionUid: "c", TokenUrl: "u", CredentialsId: "cred"}

	require.NoError(t, store.put(key, &TokenBundle{}))
	_, ok := store.get(key)
	assert.False(t, ok)
}

func TestKeyedStorePutSkipsBundlesWithError(t *testing.T) {
	backend := newMemStore()
	store := newKeyedStore(backend)
	key := StoreKey{CollectionUid: "c", TokenUrl: "u", CredentialsId: "cred"}

	require.NoError(t, store.put(key, &TokenBundle{AccessToken: "tok", Error: "invalid_grant"}))
	_, ok := store.get(key)
	assert.False(t, ok)
}

func TestKeyedStorePutStampsCreatedAt(t *testing.T) {
	backend := newMemStore()
	store := newKeyedStore(backend)
	key := StoreKey{CollectionUid: "c", TokenUrl: "u", CredentialsId: "cred"}

	require.NoError(t, store.put(key, &TokenBundle{AccessToken: "tok"}))
	stored, ok := store.get(key)
	require.True(t, ok)
	assert.NotZero(t, stored.CreatedAt)
}

func TestKeyedStoreClear(t *testing.T) {
	backend := newMemStore()
	store := newKeyedStore(backend)
	key := StoreKey{CollectionUid: "c", TokenUrl: "u", CredentialsId: "cred"}

	require.NoError(t, store.put(key, &TokenBundle{AccessToken: "tok"}))
	require.NoError(t, store.clear(key))
	_, ok := store.get(key)
	assert.False(t, ok)
}

func TestFileStorePutGetClear(t *testing.T) {
	dir := t.TempDir()
	fs := newFileStore(dir)
	key := StoreKey{CollectionUid: "c", TokenUrl: "https://x/token", CredentialsId: "cred"}
	bundle := &TokenBundle{AccessToken: "tok", RefreshToken: "rt", ExpiresIn: 60, CreatedAt: 1000}

	require.NoError(t, fs.put(key, bundle))

	got, ok := fs.get(key)
	require.True(t, ok)
	assert.Equal(t, "tok", got.AccessToken)
	assert.Equal(t, "rt", got.RefreshToken)

	require.NoError(t, fs.clear(key))
	_, ok = fs.get(key)
	assert.False(t, ok)
}

func TestFileStoreGetMissingKey(t *testing.T) {
	fs := newFileStore(t.TempDir())
	_, ok := fs.get(StoreKey{CollectionUid: "missing"})
	assert.False(t, ok)
}

func TestMigratingStoreFallsBackAndMigrates(t *testing.T) {
	primary := newMemStore()
	fallback := newMemStore()
	key := StoreKey{CollectionUid: "c", TokenUrl: "u", CredentialsId: "cred"}
	require.NoError(t, fallback.put(key, &TokenBundle{AccessToken: "tok"}))

	m := &migratingStore{primary: primary, fallback: fallback}

	bundle, ok := m.get(key)
	require.True(t, ok)
	assert.Equal(t, "tok", bundle.AccessToken)

	_, stillInFallback := fallback.get(key)
	assert.False(t, stillInFallback)
	_, nowInPrimary := primary.get(key)
	assert.True(t, nowInPrimary)
}

func TestSessionIdOfIsStablePerPair(t *testing.T) {
	a := sessionIdOf("c1", "https://x/token")
	b := sessionIdOf("c1", "https://x/token")
	c := sessionIdOf("c2", "https://x/token")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
