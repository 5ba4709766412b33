package oauthcore

// isExpired implements the Freshness Oracle (C3, spec.md §4.3):
//   - true if bundle is absent or lacks an access token;
//   - false if the bundle has an access token but lacks expires_in or
//     created_at (it never expires by time);
//   - otherwise, true once now_ms > created_at + expires_in*1000.
func isExpired(bundle *TokenBundle, nowMs int64) bool {
	if !bundle.Present() {
		return true
	}
	if bundle.ExpiresIn == 0 || bundle.CreatedAt == 0 {
		return false
	}
	return nowMs > bundle.CreatedAt+bundle.ExpiresIn*1000
}
