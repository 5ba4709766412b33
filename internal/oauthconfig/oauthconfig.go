// Package oauthconfig resolves the on-disk locations and environment toggles
// the OAuth core needs: where the credential-store fallback file lives, and
// whether the system keychain should be bypassed.
package oauthconfig

import (
	"os"
	"path/filepath"
)

// DefaultDirName is the subdirectory within the cache dir used for the
// credential-store fallback file and its lock.
const DefaultDirName = "oauthcore"

// StorageDir returns the directory the file-fallback Credential Store
// backend should use. Precedence mirrors the teacher's cache-dir
// resolution: XDG_CACHE_HOME, then os.UserCacheDir(), then $HOME/.cache,
// then the system temp dir as a last resort.
func StorageDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, DefaultDirName)
	}

	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, DefaultDirName)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".cache", DefaultDirName)
	}

	return filepath.Join(os.TempDir(), DefaultDirName)
}

// KeyringDisabled reports whether the system keychain should be bypassed in
// favor of the plaintext-file fallback, e.g. for tests or headless CI.
func KeyringDisabled() bool {
	return os.Getenv("OAUTHCORE_NO_KEYRING") != ""
}
