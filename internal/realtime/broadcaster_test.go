package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBroadcaster() (*Broadcaster, *RoomIndex, map[string]Sender) {
	idx := NewRoomIndex()
	senders := make(map[string]Sender)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewBroadcaster(idx, senders, logger), idx, senders
}

func TestSendToRoomDeliversToAllMembers(t *testing.T) {
	b, idx, senders := newTestBroadcaster()

	s1, s2 := &fakeSender{}, &fakeSender{}
	senders["c1"], senders["c2"] = s1, s2
	idx.Join("c1", "general")
	idx.Join("c2", "general")

	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"content":"hi"}`), "")

	for _, s := range []*fakeSender{s1, s2} {
		frames := s.received(t)
		require.Len(t, frames, 1)
		assert.Equal(t, EventChannelMessage, frames[0].Event)
		assert.JSONEq(t, `{"content":"hi"}`, string(frames[0].Data))
	}
}

func TestSendToRoomExcludesSender(t *testing.T) {
	b, idx, senders := newTestBroadcaster()

	s1, s2 := &fakeSender{}, &fakeSender{}
	senders["c1"], senders["c2"] = s1, s2
	idx.Join("c1", "general")
	idx.Join("c2", "general")

	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"content":"hi"}`), "c1")

	assert.Empty(t, s1.received(t))
	assert.Len(t, s2.received(t), 1)
}

func TestSendToRoomEmptyRoomIsNoOp(t *testing.T) {
	b, _, _ := newTestBroadcaster()

	assert.NotPanics(t, func() {
		b.SendToRoom("nowhere", EventChannelMessage, json.RawMessage(`{}`), "")
	})
}

func TestSendToRoomToleratesDeadConnection(t *testing.T) {
	b, idx, senders := newTestBroadcaster()

	dead := &fakeSender{fail: true}
	alive := &fakeSender{}
	senders["dead"], senders["alive"] = dead, alive
	idx.Join("dead", "general")
	idx.Join("alive", "general")

	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"content":"hi"}`), "")

	// The failed delivery is swallowed; the live member still gets the frame.
	assert.Len(t, alive.received(t), 1)
}

func TestSendToRoomToleratesMissingSender(t *testing.T) {
	b, idx, senders := newTestBroadcaster()

	alive := &fakeSender{}
	senders["alive"] = alive
	// "stale" is in the room but its sender is already gone.
	idx.Join("stale", "general")
	idx.Join("alive", "general")

	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"content":"hi"}`), "")

	assert.Len(t, alive.received(t), 1)
}

func TestSendToRoomFIFOWithinRoom(t *testing.T) {
	b, idx, senders := newTestBroadcaster()

	s := &fakeSender{}
	senders["c1"] = s
	idx.Join("c1", "general")

	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"n":1}`), "")
	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"n":2}`), "")
	b.SendToRoom("general", EventChannelMessage, json.RawMessage(`{"n":3}`), "")

	frames := s.received(t)
	require.Len(t, frames, 3)
	for i, frame := range frames {
		var data struct {
			N int `json:"n"`
		}
		require.NoError(t, json.Unmarshal(frame.Data, &data))
		assert.Equal(t, i+1, data.N)
	}
}
