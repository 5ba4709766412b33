package oauthcore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
)

// PKCEChallengeMethod is always S256; plain is never generated by this
// package (spec.md §4.1).
const PKCEChallengeMethod = "S256"

// pkceVerifierBytes is the entropy source length for the code verifier:
// 22 random bytes rendered as 44 lowercase hex characters.
const pkceVerifierBytes = 22

// generateVerifier returns a high-entropy PKCE code verifier: 22 random
// bytes rendered in lowercase hex (44 characters).
func generateVerifier() (string, error) {
	b := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// generateChallenge returns the S256 PKCE challenge for verifier: the
// SHA-256 digest of its UTF-8 bytes, base64-encoded and made URL-safe by
// swapping '+'->'-' and '/'->'_' and stripping '=' padding.
func generateChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// pkcePair is a freshly generated verifier/challenge pair for one
// authorization attempt.
type pkcePair struct {
	verifier  string
	challenge string
}

// newPKCEPair generates a verifier and its S256 challenge.
func newPKCEPair() (*pkcePair, error) {
	v, err := generateVerifier()
	if err != nil {
		return nil, err
	}
	return &pkcePair{verifier: v, challenge: generateChallenge(v)}, nil
}
