package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrClientDisconnected = errors.New("client disconnected")
	ErrRouterUnavailable  = fmt.Errorf("event router is not accepting events")
)

// enqueueTimeout bounds how long transport goroutines wait to hand an
// event to the router loop before giving up.
const enqueueTimeout = 5 * time.Second

// Config controls the router's sweep of connections that opened a socket
// but never sent user-connected. A zero IdentifyTimeout disables the sweep.
type Config struct {
	IdentifyTimeout time.Duration
	SweepInterval   time.Duration
}

func DefaultConfig() Config {
	return Config{
		IdentifyTimeout: 5 * time.Minute,
		SweepInterval:   time.Minute,
	}
}

// PresenceNotifier mirrors online/offline transitions into an external
// store. The router invokes it on short-lived goroutines so the event
// loop never blocks on I/O.
type PresenceNotifier interface {
	UserOnline(ctx context.Context, username, workspaceRoom string)
	UserOffline(ctx context.Context, username, workspaceRoom string)
}

type connectReq struct {
	connID string
	sender Sender
}

type inboundFrame struct {
	connID string
	frame  Frame
}

// Router owns all mutable realtime state: the connection registry, the
// room membership index and the sender table. Every mutation happens on
// the single goroutine running Run, one inbound event to completion
// before the next, so none of the structures carry locks.
type Router struct {
	registry    *Registry
	rooms       *RoomIndex
	senders     map[string]Sender
	broadcaster *Broadcaster

	connect    chan connectReq
	frames     chan inboundFrame
	disconnect chan string

	cfg      Config
	presence PresenceNotifier
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewRouter(cfg Config, presence PresenceNotifier, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())

	rooms := NewRoomIndex()
	senders := make(map[string]Sender)

	return &Router{
		registry:    NewRegistry(),
		rooms:       rooms,
		senders:     senders,
		broadcaster: NewBroadcaster(rooms, senders, logger),
		connect:     make(chan connectReq),
		frames:      make(chan inboundFrame),
		disconnect:  make(chan string),
		cfg:         cfg,
		presence:    presence,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Run processes events until Stop is called. It is the only goroutine
// allowed to touch the registry, the room index and the sender table.
func (r *Router) Run() {
	var sweep <-chan time.Time
	if r.cfg.IdentifyTimeout > 0 && r.cfg.SweepInterval > 0 {
		ticker := time.NewTicker(r.cfg.SweepInterval)
		defer ticker.Stop()
		sweep = ticker.C
	}

	for {
		select {
		case req := <-r.connect:
			r.handleConnect(req)

		case in := <-r.frames:
			r.handleFrame(in)

		case connID := <-r.disconnect:
			r.handleDisconnect(connID)

		case <-sweep:
			r.reapUnidentified()

		case <-r.ctx.Done():
			r.logger.Info("Realtime router shutting down")
			return
		}
	}
}

// Stop terminates the Run loop.
func (r *Router) Stop() {
	r.cancel()
}

// Connect registers a new transport link with identity unset.
func (r *Router) Connect(connID string, sender Sender) error {
	select {
	case r.connect <- connectReq{connID: connID, sender: sender}:
		return nil
	case <-time.After(enqueueTimeout):
		return ErrRouterUnavailable
	case <-r.ctx.Done():
		return ErrRouterUnavailable
	}
}

// Dispatch hands an inbound client frame to the router loop.
func (r *Router) Dispatch(connID string, frame Frame) error {
	select {
	case r.frames <- inboundFrame{connID: connID, frame: frame}:
		return nil
	case <-time.After(enqueueTimeout):
		return ErrRouterUnavailable
	case <-r.ctx.Done():
		return ErrRouterUnavailable
	}
}

// Disconnect tears down a connection. Safe to call more than once for the
// same id; the second call finds nothing to remove.
func (r *Router) Disconnect(connID string) error {
	select {
	case r.disconnect <- connID:
		return nil
	case <-time.After(enqueueTimeout):
		return ErrRouterUnavailable
	case <-r.ctx.Done():
		return ErrRouterUnavailable
	}
}

func (r *Router) handleConnect(req connectReq) {
	r.registry.Register(req.connID)
	r.senders[req.connID] = req.sender
	r.logger.Info("Connection registered", "connID", req.connID)
}

// handleFrame routes one inbound event. The recover scope isolates each
// event: a malformed or unexpected frame can never take down the loop or
// corrupt state held for other connections.
func (r *Router) handleFrame(in inboundFrame) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("Recovered from event handler panic",
				"connID", in.connID, "event", in.frame.Event, "panic", rec)
		}
	}()

	switch in.frame.Event {
	case EventUserConnected:
		r.handleUserConnected(in.connID, in.frame.Data)

	case EventChannelMessage, EventDirectMessage:
		r.handleRoomMessage(in.connID, in.frame.Event, in.frame.Data)

	case EventDisconnect:
		r.handleDisconnect(in.connID)

	default:
		r.logger.Debug("Unknown event dropped", "connID", in.connID, "event", in.frame.Event)
	}
}

func (r *Router) handleUserConnected(connID string, raw json.RawMessage) {
	var data UserConnectedData
	if err := json.Unmarshal(raw, &data); err != nil {
		r.logger.Warn("Malformed user-connected payload dropped", "connID", connID, "error", err)
		return
	}
	if err := data.Validate(); err != nil {
		r.logger.Warn("Invalid user-connected payload dropped", "connID", connID, "error", err)
		return
	}

	conn, ok := r.registry.Identity(connID)
	if !ok {
		// Disconnect raced the registration; nothing to identify.
		r.logger.Warn("user-connected for unknown connection dropped", "connID", connID)
		return
	}

	// A repeat user-connected (reconnect, tab refresh) replaces identity.
	// Leave the previously joined rooms first so a stale active room does
	// not keep receiving this connection's fan-out.
	if conn.Identified() {
		r.rooms.LeaveAll(connID)
	}

	r.registry.SetIdentity(connID, data.Username, data.WorkspaceName, data.ChannelName)
	r.rooms.Join(connID, data.WorkspaceName)
	r.rooms.Join(connID, data.ChannelName)

	snapshot := OccupantsData{Usernames: r.occupants(data.WorkspaceName)}
	r.broadcaster.SendToRoom(data.WorkspaceName, EventUserConnected, snapshot, "")

	r.logger.Info("Connection identified",
		"connID", connID, "username", data.Username,
		"workspaceRoom", data.WorkspaceName, "activeRoom", data.ChannelName)

	if r.presence != nil {
		go r.presence.UserOnline(context.Background(), data.Username, data.WorkspaceName)
	}
}

func (r *Router) handleRoomMessage(connID, event string, raw json.RawMessage) {
	conn, ok := r.registry.Identity(connID)
	if !ok || !conn.Identified() {
		r.logger.Debug("Message from unidentified connection dropped", "connID", connID, "event", event)
		return
	}
	if len(raw) == 0 {
		r.logger.Debug("Empty message payload dropped", "connID", connID, "event", event)
		return
	}

	// The sender is included in the fan-out: clients render from the
	// round-tripped event rather than optimistically.
	r.broadcaster.SendToRoom(conn.ActiveRoom, event, raw, "")
}

func (r *Router) handleDisconnect(connID string) {
	conn, ok := r.registry.Identity(connID)
	if ok && conn.Identified() {
		r.broadcaster.SendToRoom(conn.WorkspaceRoom, EventUserDisconnected, conn.Username, "")
		r.logger.Info("Connection departed", "connID", connID, "username", conn.Username)

		if r.presence != nil {
			go r.presence.UserOffline(context.Background(), conn.Username, conn.WorkspaceRoom)
		}
	}

	r.rooms.LeaveAll(connID)
	r.registry.Remove(connID)
	delete(r.senders, connID)
}

// occupants builds the occupant snapshot for a workspace room by resolving
// each member's username in the registry. Connections that have not
// identified yet contribute nothing.
func (r *Router) occupants(workspaceRoom string) []string {
	members := r.rooms.Members(workspaceRoom)
	usernames := make([]string, 0, len(members))
	for _, connID := range members {
		if conn, ok := r.registry.Identity(connID); ok && conn.Identified() {
			usernames = append(usernames, conn.Username)
		}
	}
	return usernames
}

// reapUnidentified tears down connections that opened a socket but never
// sent user-connected within the identify timeout.
func (r *Router) reapUnidentified() {
	cutoff := time.Now().Add(-r.cfg.IdentifyTimeout)
	for _, connID := range r.registry.UnidentifiedSince(cutoff) {
		r.logger.Info("Reaping connection that never identified", "connID", connID)
		if sender, ok := r.senders[connID]; ok {
			if closer, ok := sender.(interface{ Close() error }); ok {
				closer.Close()
			}
		}
		r.rooms.LeaveAll(connID)
		r.registry.Remove(connID)
		delete(r.senders, connID)
	}
}
