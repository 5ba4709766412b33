package oauthcore

import (
	"encoding/json"
	"errors"

	"github.com/zalando/go-keyring"
)

// keyringService names the OS keychain service bucket, mirroring the
// teacher's internal/auth/keyring.go convention of one service name per
// product.
const keyringService = "oauthcore"

// ErrKeyringUnavailable wraps a keyring backend failure from put, or from
// clear when it isn't "item not found". Nothing in this package falls back
// to the file store on it: migratingStore.put returns it to its caller
// unchanged.
var ErrKeyringUnavailable = errors.New("oauthcore: OS keyring unavailable")

// keyringStore persists bundles in the OS credential manager via
// zalando/go-keyring, the same library the teacher uses for its own login
// credentials.
type keyringStore struct{}

func newKeyringStore() *keyringStore {
	return &keyringStore{}
}

func (s *keyringStore) get(key StoreKey) (*TokenBundle, bool) {
	raw, err := keyring.Get(keyringService, key.String())
	if err != nil {
		return nil, false
	}
	var bundle TokenBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return nil, false
	}
	return &bundle, true
}

func (s *keyringStore) put(key StoreKey, bundle *TokenBundle) error {
	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}
	if err := keyring.Set(keyringService, key.String(), string(raw)); err != nil {
		return errors.Join(ErrKeyringUnavailable, err)
	}
	return nil
}

func (s *keyringStore) clear(key StoreKey) error {
	err := keyring.Delete(keyringService, key.String())
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return errors.Join(ErrKeyringUnavailable, err)
	}
	return nil
}

// probe reports whether the OS keyring backend is usable in this
// environment, by attempting a harmless round trip. Used at store
// construction time to decide between keyring and file backends, the same
// check the teacher performs in auth.NewStore.
func (s *keyringStore) probe() bool {
	const probeKey = "__oauthcore_probe__"
	if err := keyring.Set(keyringService, probeKey, "ok"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probeKey)
	return true
}
