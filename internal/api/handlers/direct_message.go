package handlers

import (
	"errors"

	"collab-service/internal/api/middleware"
	"collab-service/internal/models"
	"collab-service/internal/services"
	"collab-service/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DirectMessageHandler struct {
	dmService *services.DirectMessageService
}

func NewDirectMessageHandler(dmService *services.DirectMessageService) *DirectMessageHandler {
	return &DirectMessageHandler{dmService: dmService}
}

// Create persists a direct message between the caller and a teammate.
// POST /api/v1/direct-messages
func (h *DirectMessageHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	var req models.CreateDirectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	dm, err := h.dmService.CreateDirectMessage(userID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "teammate not found")
			return
		}
		response.InternalError(c, "failed to create direct message")
		return
	}

	response.Created(c, dm)
}

// Thread returns the two-way history between the caller and a teammate
// within one workspace, oldest first.
// GET /api/v1/direct-messages/:teammateId?workspaceId=<id>
func (h *DirectMessageHandler) Thread(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	teammateID, ok := pathID(c, "teammateId")
	if !ok {
		return
	}

	var query struct {
		WorkspaceID uint `form:"workspaceId" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	messages, err := h.dmService.GetThread(userID, teammateID, query.WorkspaceID)
	if err != nil {
		response.InternalError(c, "failed to load thread")
		return
	}

	response.OK(c, messages)
}
