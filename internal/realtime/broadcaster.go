package realtime

import (
	"log/slog"
)

// Sender delivers one encoded frame to a single connection. *Client
// implements it over a websocket; tests substitute an in-memory fake.
// Send must never block the caller: the router loop issues every fan-out.
type Sender interface {
	Send(frame []byte) error
}

// Broadcaster fans a frame out to every current member of a room. It
// reads the room index and the sender table but mutates neither; both are
// owned by the router goroutine that invokes it.
type Broadcaster struct {
	index   *RoomIndex
	senders map[string]Sender
	logger  *slog.Logger
}

func NewBroadcaster(index *RoomIndex, senders map[string]Sender, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		index:   index,
		senders: senders,
		logger:  logger,
	}
}

// SendToRoom delivers payload under event to every connection currently in
// the room, excluding excludeConnID when non-empty. An empty room is a
// no-op, and so is delivery to a connection that died microseconds before
// this call: the transport swallows the write.
func (b *Broadcaster) SendToRoom(roomID, event string, payload any, excludeConnID string) {
	members := b.index.Members(roomID)
	if len(members) == 0 {
		return
	}

	frame, err := encodeFrame(event, payload)
	if err != nil {
		b.logger.Error("Failed to encode frame", "event", event, "room", roomID, "error", err)
		return
	}

	delivered := 0
	for _, connID := range members {
		if connID == excludeConnID {
			continue
		}
		sender, ok := b.senders[connID]
		if !ok {
			continue
		}
		if err := sender.Send(frame); err != nil {
			b.logger.Debug("Dropped frame for dead connection", "connID", connID, "event", event, "room", roomID)
			continue
		}
		delivered++
	}

	b.logger.Debug("Broadcast delivered", "event", event, "room", roomID, "recipients", delivered)
}
