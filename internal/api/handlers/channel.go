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

type ChannelHandler struct {
	channelService *services.ChannelService
}

func NewChannelHandler(channelService *services.ChannelService) *ChannelHandler {
	return &ChannelHandler{channelService: channelService}
}

// Create adds a channel to a workspace, with the creator as first member.
// POST /api/v1/channels
func (h *ChannelHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	var req models.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	channel, err := h.channelService.CreateChannel(&req, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "workspace not found")
			return
		}
		response.InternalError(c, "failed to create channel")
		return
	}

	response.Created(c, channel)
}

// Get returns one channel.
// GET /api/v1/channels/:id
func (h *ChannelHandler) Get(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channel, err := h.channelService.GetChannelByID(channelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.InternalError(c, "failed to load channel")
		return
	}

	response.OK(c, channel)
}

// ListByWorkspace returns the channels of a workspace.
// GET /api/v1/workspaces/:id/channels
func (h *ChannelHandler) ListByWorkspace(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	channels, err := h.channelService.GetWorkspaceChannels(workspaceID)
	if err != nil {
		response.InternalError(c, "failed to list channels")
		return
	}

	response.OK(c, channels)
}

// Update edits channel name or topic.
// PATCH /api/v1/channels/:id
func (h *ChannelHandler) Update(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.channelService.UpdateChannel(channelID, &req); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.InternalError(c, "failed to update channel")
		return
	}

	response.OK(c, gin.H{"updated": true})
}

// Delete removes a channel and its messages.
// DELETE /api/v1/channels/:id
func (h *ChannelHandler) Delete(c *gin.Context) {
	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.DeleteChannel(channelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.InternalError(c, "failed to delete channel")
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// Join adds the caller to a channel.
// POST /api/v1/channels/:id/members
func (h *ChannelHandler) Join(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.AddUserToChannel(channelID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "channel not found")
			return
		}
		response.InternalError(c, "failed to join channel")
		return
	}

	response.OK(c, gin.H{"joined": true})
}

// Leave removes the caller from a channel.
// DELETE /api/v1/channels/:id/members
func (h *ChannelHandler) Leave(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	channelID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.channelService.RemoveUserFromChannel(channelID, userID); err != nil {
		response.InternalError(c, "failed to leave channel")
		return
	}

	response.OK(c, gin.H{"left": true})
}
