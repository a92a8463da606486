package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from peer
	maxMessageSize = 4096

	// Outbound frames buffered per connection
	sendBufferSize = 256
)

// Client binds one websocket connection to the router. The read pump
// feeds inbound frames to the router; the write pump drains the send
// buffer that Send fills during fan-out.
type Client struct {
	id     string
	router *Router
	conn   *websocket.Conn
	send   chan []byte

	ctx        context.Context
	cancel     context.CancelFunc
	closed     int32
	sendClosed int32
}

func NewClient(router *Router, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		id:     uuid.New().String(),
		router: router,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ID returns the opaque connection id assigned at upgrade time.
func (c *Client) ID() string {
	return c.id
}

// Send implements Sender. A full buffer closes the client instead of
// blocking: the router loop must never stall on one slow reader.
func (c *Client) Send(frame []byte) error {
	if c.isClosed() {
		return ErrClientDisconnected
	}

	select {
	case c.send <- frame:
		return nil
	case <-c.ctx.Done():
		return ErrClientDisconnected
	default:
		slog.Warn("Send buffer full, closing client", "connID", c.id)
		c.close()
		return ErrClientDisconnected
	}
}

// Close tears the transport down. Used by the router's sweep of
// connections that never identified.
func (c *Client) Close() error {
	c.close()
	return c.conn.Close()
}

func (c *Client) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// close marks the client closed exactly once and cancels its context.
func (c *Client) close() {
	if atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		c.cancel()
		slog.Debug("Client marked as closed", "connID", c.id)
	}
}

func (c *Client) closeSendChannel() {
	if atomic.CompareAndSwapInt32(&c.sendClosed, 0, 1) {
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.close()

		// The router absorbs a duplicate disconnect, so racing an
		// explicit disconnect frame is harmless.
		if err := c.router.Disconnect(c.id); err != nil {
			slog.Warn("Failed to enqueue disconnect", "connID", c.id, "error", err)
		}

		if err := c.conn.Close(); err != nil {
			slog.Debug("Error closing connection", "connID", c.id, "error", err)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		if c.isClosed() {
			return websocket.ErrCloseSent
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("WebSocket error", "connID", c.id, "error", err)
			} else {
				slog.Debug("WebSocket connection closed", "connID", c.id, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			// Malformed frames are dropped; the connection stays open.
			slog.Warn("Failed to unmarshal frame", "connID", c.id, "error", err)
			continue
		}

		if err := c.router.Dispatch(c.id, frame); err != nil {
			slog.Warn("Failed to enqueue frame", "connID", c.id, "event", frame.Event, "error", err)
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		slog.Debug("WritePump finished", "connID", c.id)
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if c.isClosed() {
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				slog.Debug("Error writing frame", "connID", c.id, "error", err)
				return
			}

		case <-ticker.C:
			if c.isClosed() {
				return
			}

			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.Debug("Error sending ping", "connID", c.id, "error", err)
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// ServeWS upgrades an HTTP request and plugs the resulting connection
// into the router. Identity arrives later, with the first user-connected
// frame; until then the connection contributes nothing to any room.
func ServeWS(router *Router, w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade WebSocket connection", "error", err)
		return
	}

	client := NewClient(router, conn)
	if err := router.Connect(client.id, client); err != nil {
		slog.Error("Failed to register connection", "connID", client.id, "error", err)
		conn.Close()
		return
	}

	slog.Info("New WebSocket connection established", "connID", client.id)

	go client.writePump()
	go client.readPump()
}
