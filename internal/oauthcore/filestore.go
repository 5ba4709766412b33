package oauthcore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// fileStore is the fallback credential backend used when the OS keyring is
// unavailable (headless CI, containers without a secret service running).
// It persists one JSON file per StoreKey under dir, guarded by an
// gofrs/flock file lock and written atomically via temp-file-then-rename,
// the same pattern the teacher's internal/resilience/store.go and
// internal/auth/keyring.go saveToFile use for their own on-disk state.
type fileStore struct {
	dir string
}

func newFileStore(dir string) *fileStore {
	return &fileStore{dir: dir}
}

func (s *fileStore) pathFor(key StoreKey) string {
	sum := sha256.Sum256([]byte(key.String()))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:])+".json")
}

func (s *fileStore) lockPathFor(key StoreKey) string {
	return s.pathFor(key) + ".lock"
}

func (s *fileStore) get(key StoreKey) (*TokenBundle, bool) {
	fl := flock.New(s.lockPathFor(key))
	if err := fl.RLock(); err != nil {
		return nil, false
	}
	defer fl.Unlock()

	raw, err := os.ReadFile(s.pathFor(key))
	if err != nil {
		return nil, false
	}
	var bundle TokenBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, false
	}
	return &bundle, true
}

func (s *fileStore) put(key StoreKey, bundle *TokenBundle) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}

	fl := flock.New(s.lockPathFor(key))
	locked, err := fl.TryLockContext(context.Background(), 50*time.Millisecond)
	if err != nil || !locked {
		return errors.New("oauthcore: could not acquire credential file lock")
	}
	defer fl.Unlock()

	raw, err := json.Marshal(bundle)
	if err != nil {
		return err
	}

	target := s.pathFor(key)
	tmp, err := os.CreateTemp(s.dir, ".oauthcore-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, target)
}

func (s *fileStore) clear(key StoreKey) error {
	fl := flock.New(s.lockPathFor(key))
	if err := fl.Lock(); err != nil {
		return err
	}
	defer fl.Unlock()

	err := os.Remove(s.pathFor(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
