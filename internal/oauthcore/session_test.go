package oauthcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionManagerReusesIdForSamePair(t *testing.T) {
	sm := newSessionManager()
	defer sm.close()

	a := sm.sessionFor("c1", "https://x/token")
	b := sm.sessionFor("c1", "https://x/token")
	assert.Equal(t, a, b)
}

func TestSessionManagerDistinguishesPairs(t *testing.T) {
	sm := newSessionManager()
	defer sm.close()

	a := sm.sessionFor("c1", "https://x/token")
	b := sm.sessionFor("c2", "https://x/token")
	assert.NotEqual(t, a, b)
}

func TestSessionManagerForgetIssuesFreshId(t *testing.T) {
	sm := newSessionManager()
	defer sm.close()

	a := sm.sessionFor("c1", "https://x/token")
	sm.forget("c1", "https://x/token")
	b := sm.sessionFor("c1", "https://x/token")
	assert.NotEqual(t, a, b)
}
