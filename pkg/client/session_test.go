package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionLifecycle(t *testing.T) {
	session := NewSession()
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Username())
	assert.Empty(t, session.Tenant())

	session.Create("alice", "acme")
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "alice", session.Username())
	assert.Equal(t, "acme", session.Tenant())

	// Last write wins.
	session.Create("bob", "globex")
	assert.Equal(t, "bob", session.Username())
	assert.Equal(t, "globex", session.Tenant())

	session.Destroy()
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.Username())
}
