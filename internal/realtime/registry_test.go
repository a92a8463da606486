package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndIdentity(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1")

	conn, ok := reg.Identity("c1")
	require.True(t, ok)
	assert.Equal(t, "c1", conn.ID)
	assert.False(t, conn.Identified())
	assert.NotZero(t, conn.RegisteredAt)

	_, ok = reg.Identity("unknown")
	assert.False(t, ok)
}

func TestRegistryRegisterTwiceOverwrites(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1")
	reg.SetIdentity("c1", "alice", "7:eng", "general")

	// A second register for the same id resets the entry.
	reg.Register("c1")

	conn, ok := reg.Identity("c1")
	require.True(t, ok)
	assert.False(t, conn.Identified())
	assert.Equal(t, 1, reg.Len())
}

func TestRegistrySetIdentity(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1")

	ok := reg.SetIdentity("c1", "alice", "7:eng", "general")
	require.True(t, ok)

	conn, _ := reg.Identity("c1")
	assert.Equal(t, "alice", conn.Username)
	assert.Equal(t, "7:eng", conn.WorkspaceRoom)
	assert.Equal(t, "general", conn.ActiveRoom)
	assert.True(t, conn.Identified())
}

func TestRegistrySetIdentityUnknownConnection(t *testing.T) {
	reg := NewRegistry()

	// Disconnect raced the registration: must be a no-op, not an error.
	ok := reg.SetIdentity("ghost", "alice", "7:eng", "general")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryRemoveIdempotent(t *testing.T) {
	reg := NewRegistry()
	reg.Register("c1")

	reg.Remove("c1")
	assert.Equal(t, 0, reg.Len())

	// Removing again must not panic or error.
	reg.Remove("c1")
	assert.Equal(t, 0, reg.Len())
}

func TestRegistryUnidentifiedSince(t *testing.T) {
	reg := NewRegistry()

	base := time.Now()
	clock := base
	reg.now = func() time.Time { return clock }

	reg.Register("old")
	clock = base.Add(10 * time.Minute)
	reg.Register("fresh")
	reg.Register("identified")
	reg.SetIdentity("identified", "alice", "7:eng", "general")

	stale := reg.UnidentifiedSince(base.Add(5 * time.Minute))
	assert.Equal(t, []string{"old"}, stale)
}
