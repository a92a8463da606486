package handlers

import (
	"errors"
	"strconv"

	"collab-service/internal/api/middleware"
	"collab-service/internal/models"
	"collab-service/internal/services"
	"collab-service/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Create persists a channel message. Fan-out to live sockets happens on
// the websocket path; this endpoint is the durable record.
// POST /api/v1/messages
func (h *MessageHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	var req models.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	message, err := h.messageService.CreateMessage(userID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.InternalError(c, "failed to create message")
		return
	}

	response.Created(c, message)
}

// ListByChannel pages through a channel's history, newest first.
// GET /api/v1/channels/:id/messages?limit=50&offset=0
func (h *MessageHandler) ListByChannel(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	messages, err := h.messageService.GetChannelMessages(channelID, limit, offset)
	if err != nil {
		response.InternalError(c, "failed to load messages")
		return
	}

	response.OK(c, messages)
}
