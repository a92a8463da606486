package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: alice and bob join the same workspace; each join broadcasts a
// fresh occupant snapshot to the workspace room.
func TestJoinBroadcastsOccupantSnapshot(t *testing.T) {
	r := newTestRouter()

	s1 := connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")

	snapshots := s1.byEvent(t, EventUserConnected)
	require.Len(t, snapshots, 1)
	assert.Equal(t, []string{"alice"}, occupantsOf(t, snapshots[0]))

	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")

	// Both workspace members see the updated snapshot, order-independent.
	snapshots = s1.byEvent(t, EventUserConnected)
	require.Len(t, snapshots, 2)
	assert.ElementsMatch(t, []string{"alice", "bob"}, occupantsOf(t, snapshots[1]))

	snapshots = s2.byEvent(t, EventUserConnected)
	require.Len(t, snapshots, 1)
	assert.ElementsMatch(t, []string{"alice", "bob"}, occupantsOf(t, snapshots[0]))
}

func TestJoinSnapshotHasNoDuplicates(t *testing.T) {
	r := newTestRouter()

	names := []string{"alice", "bob", "carol", "dave"}
	var last *fakeSender
	for i, name := range names {
		connID := string(rune('a' + i))
		last = connect(r, connID)
		identify(t, r, connID, name, "general", "7:eng")
	}

	snapshots := last.byEvent(t, EventUserConnected)
	require.Len(t, snapshots, 1)
	got := occupantsOf(t, snapshots[0])
	assert.ElementsMatch(t, names, got)
	assert.Len(t, got, len(names))
}

// Scenario: a channel message reaches every member of the sender's active
// room, including the sender, and nobody outside it.
func TestChannelMessageIsolatedToActiveRoom(t *testing.T) {
	r := newTestRouter()

	s1 := connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")
	s3 := connect(r, "c3")
	identify(t, r, "c3", "carol", "random", "7:eng")

	sendMessage(r, "c1", EventChannelMessage, `{"content":"hi"}`)

	// Sender included: the client renders the round-tripped event.
	for _, s := range []*fakeSender{s1, s2} {
		frames := s.byEvent(t, EventChannelMessage)
		require.Len(t, frames, 1)
		assert.JSONEq(t, `{"content":"hi"}`, string(frames[0].Data))
	}

	// carol shares the workspace room but not the active room.
	assert.Empty(t, s3.byEvent(t, EventChannelMessage))
}

func TestDirectMessageUsesActiveRoom(t *testing.T) {
	r := newTestRouter()

	s1 := connect(r, "c1")
	identify(t, r, "c1", "alice", "dm:1:2", "7:eng")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "dm:1:2", "7:eng")
	s3 := connect(r, "c3")
	identify(t, r, "c3", "carol", "general", "7:eng")

	sendMessage(r, "c1", EventDirectMessage, `{"content":"psst"}`)

	require.Len(t, s1.byEvent(t, EventDirectMessage), 1)
	require.Len(t, s2.byEvent(t, EventDirectMessage), 1)
	assert.Empty(t, s3.byEvent(t, EventDirectMessage))
}

func TestMessagePayloadRebroadcastVerbatim(t *testing.T) {
	r := newTestRouter()

	connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")

	payload := `{"content":"hi","clientTag":"x-42","nested":{"a":[1,2,3]}}`
	sendMessage(r, "c1", EventChannelMessage, payload)

	frames := s2.byEvent(t, EventChannelMessage)
	require.Len(t, frames, 1)
	assert.JSONEq(t, payload, string(frames[0].Data))
}

// Scenario: alice disconnects; the workspace room hears user-disconnected
// exactly once and the membership shrinks by exactly one.
func TestDisconnectAnnouncesAndRemoves(t *testing.T) {
	r := newTestRouter()

	connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")

	require.Len(t, r.rooms.Members("7:eng"), 2)

	r.handleDisconnect("c1")

	departures := s2.byEvent(t, EventUserDisconnected)
	require.Len(t, departures, 1)
	var username string
	require.NoError(t, json.Unmarshal(departures[0].Data, &username))
	assert.Equal(t, "alice", username)

	assert.ElementsMatch(t, []string{"c2"}, r.rooms.Members("7:eng"))
	_, ok := r.registry.Identity("c1")
	assert.False(t, ok)
	_, ok = r.senders["c1"]
	assert.False(t, ok)
}

func TestDisconnectIdempotent(t *testing.T) {
	r := newTestRouter()

	connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")

	r.handleDisconnect("c1")
	registryLen := r.registry.Len()
	roomCount := r.rooms.RoomCount()

	// A duplicate teardown (explicit event plus transport close) finds no
	// identity and must change nothing.
	r.handleDisconnect("c1")

	assert.Equal(t, registryLen, r.registry.Len())
	assert.Equal(t, roomCount, r.rooms.RoomCount())
	assert.Len(t, s2.byEvent(t, EventUserDisconnected), 1)
	assert.Len(t, r.rooms.Members("7:eng"), 1)
}

func TestDisconnectBeforeIdentifyIsSilent(t *testing.T) {
	r := newTestRouter()

	connect(r, "c1")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")

	r.handleDisconnect("c1")

	// Never identified, so no departure broadcast.
	assert.Empty(t, s2.byEvent(t, EventUserDisconnected))
	assert.Equal(t, 1, r.registry.Len())
}

func TestMessageBeforeIdentifyDropped(t *testing.T) {
	r := newTestRouter()

	s1 := connect(r, "c1")
	s2 := connect(r, "c2")
	identify(t, r, "c2", "bob", "general", "7:eng")

	assert.NotPanics(t, func() {
		sendMessage(r, "c1", EventChannelMessage, `{"content":"too early"}`)
	})

	assert.Empty(t, s1.byEvent(t, EventChannelMessage))
	assert.Empty(t, s2.byEvent(t, EventChannelMessage))
}

func TestMalformedUserConnectedDropped(t *testing.T) {
	r := newTestRouter()

	s1 := connect(r, "c1")

	// Invalid JSON.
	r.handleFrame(inboundFrame{connID: "c1", frame: Frame{Event: EventUserConnected, Data: json.RawMessage(`{oops`)}})
	// Missing required fields.
	r.handleFrame(inboundFrame{connID: "c1", frame: Frame{Event: EventUserConnected, Data: json.RawMessage(`{"username":"alice"}`)}})

	conn, ok := r.registry.Identity("c1")
	require.True(t, ok)
	assert.False(t, conn.Identified())
	assert.Empty(t, s1.received(t))
}

func TestUnknownEventDropped(t *testing.T) {
	r := newTestRouter()

	connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")

	assert.NotPanics(t, func() {
		r.handleFrame(inboundFrame{connID: "c1", frame: Frame{Event: "jazz-hands"}})
	})
}

func TestReidentifyLeavesOldRooms(t *testing.T) {
	r := newTestRouter()

	connect(r, "c1")
	identify(t, r, "c1", "alice", "general", "7:eng")
	identify(t, r, "c1", "alice", "random", "7:eng")

	// The stale active room no longer carries the connection.
	assert.Empty(t, r.rooms.Members("general"))
	assert.ElementsMatch(t, []string{"7:eng", "random"}, r.rooms.Rooms("c1"))

	conn, _ := r.registry.Identity("c1")
	assert.Equal(t, "random", conn.ActiveRoom)
}

func TestHandlerPanicIsContained(t *testing.T) {
	r := newTestRouter()

	r.handleConnect(connectReq{connID: "boom", sender: panicSender{}})
	s2 := connect(r, "c2")

	assert.NotPanics(t, func() {
		identify(t, r, "boom", "alice", "general", "7:eng")
	})

	// The loop survives and keeps serving other connections.
	identify(t, r, "c2", "bob", "general", "7:eng")
	assert.NotEmpty(t, s2.byEvent(t, EventUserConnected))
}

func TestReapUnidentified(t *testing.T) {
	r := newTestRouter()
	r.cfg.IdentifyTimeout = time.Minute

	base := time.Now().Add(-time.Hour)
	clock := base
	r.registry.now = func() time.Time { return clock }

	stale := connect(r, "stale")
	clock = time.Now()
	fresh := connect(r, "fresh")
	connect(r, "identified")
	identify(t, r, "identified", "alice", "general", "7:eng")

	r.reapUnidentified()

	_, ok := r.registry.Identity("stale")
	assert.False(t, ok)
	assert.True(t, stale.isClosed())

	_, ok = r.registry.Identity("fresh")
	assert.True(t, ok)
	assert.False(t, fresh.isClosed())

	_, ok = r.registry.Identity("identified")
	assert.True(t, ok)
}

// End-to-end through the channel API: the Run loop serializes events from
// concurrent producers.
func TestRouterRunLoop(t *testing.T) {
	r := newTestRouter()
	go r.Run()
	defer r.Stop()

	s1 := &fakeSender{}
	require.NoError(t, r.Connect("c1", s1))

	data, err := json.Marshal(UserConnectedData{
		Username:      "alice",
		ChannelName:   "general",
		WorkspaceName: "7:eng",
	})
	require.NoError(t, err)
	require.NoError(t, r.Dispatch("c1", Frame{Event: EventUserConnected, Data: data}))

	require.Eventually(t, func() bool {
		return len(s1.byEvent(t, EventUserConnected)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// The departure broadcast precedes leaveAll, so the departing
	// connection is still a room member and hears its own announcement.
	require.NoError(t, r.Disconnect("c1"))
	require.Eventually(t, func() bool {
		return len(s1.byEvent(t, EventUserDisconnected)) == 1
	}, 2*time.Second, 10*time.Millisecond)
}
