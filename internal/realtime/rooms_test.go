package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomIndexJoinAndMembers(t *testing.T) {
	idx := NewRoomIndex()

	idx.Join("c1", "7:eng")
	idx.Join("c1", "general")
	idx.Join("c2", "7:eng")

	assert.ElementsMatch(t, []string{"c1", "c2"}, idx.Members("7:eng"))
	assert.ElementsMatch(t, []string{"c1"}, idx.Members("general"))
	assert.ElementsMatch(t, []string{"7:eng", "general"}, idx.Rooms("c1"))
}

func TestRoomIndexMembersUnknownRoom(t *testing.T) {
	idx := NewRoomIndex()

	// Unknown rooms yield an empty set, never an error.
	assert.Empty(t, idx.Members("nowhere"))
}

func TestRoomIndexJoinTwiceNoDuplicate(t *testing.T) {
	idx := NewRoomIndex()

	idx.Join("c1", "general")
	idx.Join("c1", "general")

	assert.Len(t, idx.Members("general"), 1)
}

func TestRoomIndexLeavePrunesEmptyRoom(t *testing.T) {
	idx := NewRoomIndex()

	idx.Join("c1", "general")
	idx.Leave("c1", "general")

	assert.Empty(t, idx.Members("general"))
	assert.Equal(t, 0, idx.RoomCount())
	assert.Empty(t, idx.Rooms("c1"))
}

func TestRoomIndexLeaveAll(t *testing.T) {
	idx := NewRoomIndex()

	idx.Join("c1", "7:eng")
	idx.Join("c1", "general")
	idx.Join("c2", "7:eng")

	idx.LeaveAll("c1")

	assert.ElementsMatch(t, []string{"c2"}, idx.Members("7:eng"))
	assert.Empty(t, idx.Members("general"))
	assert.Empty(t, idx.Rooms("c1"))
	// general had only c1, so it must be gone from the index entirely.
	assert.Equal(t, 1, idx.RoomCount())
}

func TestRoomIndexLeaveAllIdempotent(t *testing.T) {
	idx := NewRoomIndex()

	idx.Join("c1", "general")
	idx.LeaveAll("c1")
	idx.LeaveAll("c1")

	assert.Equal(t, 0, idx.RoomCount())
}
