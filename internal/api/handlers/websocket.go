package handlers

import (
	"collab-service/internal/realtime"

	"github.com/gin-gonic/gin"
)

type WebSocketHandler struct {
	router *realtime.Router
}

func NewWebSocketHandler(router *realtime.Router) *WebSocketHandler {
	return &WebSocketHandler{router: router}
}

// Connect upgrades the request to a websocket and hands it to the event
// router. The socket stays anonymous until the client sends a
// user-connected frame.
// GET /ws
func (h *WebSocketHandler) Connect(c *gin.Context) {
	realtime.ServeWS(h.router, c.Writer, c.Request)
}
