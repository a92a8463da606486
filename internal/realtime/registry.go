package realtime

import (
	"time"
)

// Connection is the registry's record of one live socket. Username stays
// empty until the first user-connected event is processed; every handler
// that needs identity checks Identified first.
type Connection struct {
	ID            string
	Username      string
	WorkspaceRoom string
	ActiveRoom    string
	RegisteredAt  time.Time
}

// Identified reports whether the connection has completed the
// user-connected handshake.
func (c *Connection) Identified() bool {
	return c.Username != ""
}

// Registry maps connection ids to the identity of the user behind them.
// It is owned exclusively by the router goroutine and carries no lock:
// every mutation happens on that one goroutine, one event at a time.
type Registry struct {
	conns map[string]*Connection
	now   func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*Connection),
		now:   time.Now,
	}
}

// Register creates an entry with identity unset. Registering an id twice
// overwrites the previous entry rather than erroring.
func (r *Registry) Register(connID string) {
	r.conns[connID] = &Connection{
		ID:           connID,
		RegisteredAt: r.now(),
	}
}

// SetIdentity records who is using the connection and which rooms it
// belongs to. Unknown ids are a no-op: a disconnect may have raced the
// registration.
func (r *Registry) SetIdentity(connID, username, workspaceRoom, activeRoom string) bool {
	conn, ok := r.conns[connID]
	if !ok {
		return false
	}
	conn.Username = username
	conn.WorkspaceRoom = workspaceRoom
	conn.ActiveRoom = activeRoom
	return true
}

// Identity returns the connection record, or false when the id is unknown.
func (r *Registry) Identity(connID string) (*Connection, bool) {
	conn, ok := r.conns[connID]
	return conn, ok
}

// Remove deletes the entry. Removing an absent id is a no-op, which is
// what absorbs duplicate disconnect signals.
func (r *Registry) Remove(connID string) {
	delete(r.conns, connID)
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	return len(r.conns)
}

// UnidentifiedSince returns the ids of connections that registered before
// cutoff and never completed the user-connected handshake. The router's
// sweep uses this to reap abandoned connections.
func (r *Registry) UnidentifiedSince(cutoff time.Time) []string {
	var stale []string
	for id, conn := range r.conns {
		if !conn.Identified() && conn.RegisteredAt.Before(cutoff) {
			stale = append(stale, id)
		}
	}
	return stale
}
