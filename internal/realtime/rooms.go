package realtime

// RoomIndex tracks which connections are joined to which rooms. It holds
// membership only; identity lives in the Registry. Like the Registry it is
// owned by the router goroutine and needs no lock.
//
// A connection is normally in two rooms at once: the workspace-wide
// presence room and the narrower active-conversation room.
type RoomIndex struct {
	rooms  map[string]map[string]struct{}
	byConn map[string]map[string]struct{}
}

func NewRoomIndex() *RoomIndex {
	return &RoomIndex{
		rooms:  make(map[string]map[string]struct{}),
		byConn: make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the room's member set.
func (ri *RoomIndex) Join(connID, roomID string) {
	if ri.rooms[roomID] == nil {
		ri.rooms[roomID] = make(map[string]struct{})
	}
	ri.rooms[roomID][connID] = struct{}{}

	if ri.byConn[connID] == nil {
		ri.byConn[connID] = make(map[string]struct{})
	}
	ri.byConn[connID][roomID] = struct{}{}
}

// Leave removes the connection from one room. Empty rooms are pruned so
// the index never grows with dead room keys.
func (ri *RoomIndex) Leave(connID, roomID string) {
	if members, ok := ri.rooms[roomID]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(ri.rooms, roomID)
		}
	}
	if joined, ok := ri.byConn[connID]; ok {
		delete(joined, roomID)
		if len(joined) == 0 {
			delete(ri.byConn, connID)
		}
	}
}

// LeaveAll removes the connection from every room it joined. Used on
// disconnect and before re-identifying a connection.
func (ri *RoomIndex) LeaveAll(connID string) {
	for roomID := range ri.byConn[connID] {
		if members, ok := ri.rooms[roomID]; ok {
			delete(members, connID)
			if len(members) == 0 {
				delete(ri.rooms, roomID)
			}
		}
	}
	delete(ri.byConn, connID)
}

// Members returns the ids of connections currently in the room. An unknown
// room yields an empty slice, never an error.
func (ri *RoomIndex) Members(roomID string) []string {
	members, ok := ri.rooms[roomID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// Rooms returns the room ids the connection is currently joined to.
func (ri *RoomIndex) Rooms(connID string) []string {
	joined, ok := ri.byConn[connID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(joined))
	for id := range joined {
		ids = append(ids, id)
	}
	return ids
}

// RoomCount returns the number of rooms with at least one member.
func (ri *RoomIndex) RoomCount() int {
	return len(ri.rooms)
}
