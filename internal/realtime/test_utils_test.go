package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeSender captures frames in memory so tests can assert on fan-out
// without a live websocket.
type fakeSender struct {
	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func (f *fakeSender) Send(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.fail {
		return errors.New("connection gone")
	}
	buf := make([]byte, len(frame))
	copy(buf, frame)
	f.frames = append(f.frames, buf)
	return nil
}

func (f *fakeSender) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeSender) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// received decodes every captured frame.
func (f *fakeSender) received(t *testing.T) []Frame {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	frames := make([]Frame, 0, len(f.frames))
	for _, raw := range f.frames {
		var frame Frame
		require.NoError(t, json.Unmarshal(raw, &frame))
		frames = append(frames, frame)
	}
	return frames
}

// byEvent filters captured frames down to one event name.
func (f *fakeSender) byEvent(t *testing.T, event string) []Frame {
	t.Helper()
	var matched []Frame
	for _, frame := range f.received(t) {
		if frame.Event == event {
			matched = append(matched, frame)
		}
	}
	return matched
}

// panicSender blows up on first delivery; used to prove the router's
// recover scope isolates a bad handler invocation.
type panicSender struct{}

func (panicSender) Send([]byte) error { panic("sender exploded") }

func newTestRouter() *Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(Config{}, nil, logger)
}

// connect registers a connection directly on the router loop's handler,
// keeping tests synchronous and deterministic.
func connect(r *Router, connID string) *fakeSender {
	sender := &fakeSender{}
	r.handleConnect(connectReq{connID: connID, sender: sender})
	return sender
}

func identify(t *testing.T, r *Router, connID, username, channel, workspace string) {
	t.Helper()
	data, err := json.Marshal(UserConnectedData{
		Username:      username,
		ChannelName:   channel,
		WorkspaceName: workspace,
	})
	require.NoError(t, err)
	r.handleFrame(inboundFrame{connID: connID, frame: Frame{Event: EventUserConnected, Data: data}})
}

func sendMessage(r *Router, connID, event string, payload string) {
	r.handleFrame(inboundFrame{connID: connID, frame: Frame{Event: event, Data: json.RawMessage(payload)}})
}

func occupantsOf(t *testing.T, frame Frame) []string {
	t.Helper()
	var data OccupantsData
	require.NoError(t, json.Unmarshal(frame.Data, &data))
	return data.Usernames
}
