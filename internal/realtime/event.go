package realtime

import (
	"encoding/json"
	"fmt"
)

// Event names exchanged with clients over the socket.
const (
	// Inbound and outbound: a client identifying itself / the occupant
	// snapshot broadcast that follows.
	EventUserConnected = "user-connected"

	// Outbound: a username leaving a workspace room.
	EventUserDisconnected = "user-disconnected"

	// Inbound and outbound: message fan-out to the sender's active room.
	// Payloads are rebroadcast verbatim.
	EventChannelMessage = "channel-message"
	EventDirectMessage  = "direct-message"

	// Inbound: explicit teardown request. Transport-level closure takes
	// the same path.
	EventDisconnect = "disconnect"
)

// Frame is the wire envelope for every socket event. Data stays raw so
// that channel-message and direct-message payloads pass through untouched.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// UserConnectedData is the payload a client sends to identify itself.
// WorkspaceName conventionally has the form "<id>:<displayName>"; the
// router treats it as an opaque room key.
type UserConnectedData struct {
	Username      string `json:"username"`
	ChannelName   string `json:"channelName"`
	WorkspaceName string `json:"workspaceName"`
}

// Validate checks that all required identity fields are present.
func (d *UserConnectedData) Validate() error {
	if d.Username == "" {
		return fmt.Errorf("username is required")
	}
	if d.ChannelName == "" {
		return fmt.Errorf("channelName is required")
	}
	if d.WorkspaceName == "" {
		return fmt.Errorf("workspaceName is required")
	}
	return nil
}

// OccupantsData lists the usernames currently present in a workspace room.
type OccupantsData struct {
	Usernames []string `json:"usernames"`
}

// encodeFrame marshals an outbound frame once so a broadcast writes the
// same bytes to every member of a room.
func encodeFrame(event string, payload any) ([]byte, error) {
	frame := Frame{Event: event}
	switch v := payload.(type) {
	case nil:
	case json.RawMessage:
		frame.Data = v
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", event, err)
		}
		frame.Data = raw
	}
	return json.Marshal(frame)
}
