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

type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
	presenceService  *services.PresenceService
}

func NewWorkspaceHandler(workspaceService *services.WorkspaceService, presenceService *services.PresenceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		presenceService:  presenceService,
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// Create makes a new workspace owned by the caller.
// POST /api/v1/workspaces
func (h *WorkspaceHandler) Create(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	var req models.CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	workspace, err := h.workspaceService.CreateWorkspace(req.Name, userID)
	if err != nil {
		response.InternalError(c, "failed to create workspace")
		return
	}

	response.Created(c, workspace)
}

// List returns the caller's workspaces.
// GET /api/v1/workspaces
func (h *WorkspaceHandler) List(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	workspaces, err := h.workspaceService.GetUserWorkspaces(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "failed to list workspaces")
		return
	}

	response.OK(c, workspaces)
}

// Update renames a workspace. Owner only.
// PUT /api/v1/workspaces/:id
func (h *WorkspaceHandler) Update(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	err := h.workspaceService.UpdateWorkspace(c.Request.Context(), workspaceID, userID, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotWorkspaceOwner):
			response.Forbidden(c, "only the workspace owner can rename it")
		case errors.Is(err, gorm.ErrRecordNotFound):
			response.NotFound(c, "workspace not found")
		default:
			response.InternalError(c, "failed to update workspace")
		}
		return
	}

	response.OK(c, gin.H{"updated": true})
}

// Teammates lists the members of a workspace.
// GET /api/v1/workspaces/:id/teammates
func (h *WorkspaceHandler) Teammates(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	teammates, err := h.workspaceService.GetTeammates(c.Request.Context(), workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "workspace not found")
			return
		}
		response.InternalError(c, "failed to list teammates")
		return
	}

	response.OK(c, teammates)
}

// AddMember joins a user to a workspace.
// POST /api/v1/workspaces/:id/members
func (h *WorkspaceHandler) AddMember(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uint `json:"userId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.workspaceService.AddMember(c.Request.Context(), workspaceID, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "workspace or user not found")
			return
		}
		response.InternalError(c, "failed to add member")
		return
	}

	response.OK(c, gin.H{"added": true})
}

// Online reports which members of a workspace room currently hold a live
// socket, from the Redis presence sets.
// GET /api/v1/workspaces/:id/online?name=<workspaceName>
func (h *WorkspaceHandler) Online(c *gin.Context) {
	workspaceID, ok := pathID(c, "id")
	if !ok {
		return
	}

	name := c.Query("name")
	if name == "" {
		response.BadRequest(c, "query parameter name is required")
		return
	}

	room := models.WorkspaceRoomKey(workspaceID, name)
	usernames, err := h.presenceService.OnlineUsers(c.Request.Context(), room)
	if err != nil {
		response.InternalError(c, "failed to read presence")
		return
	}

	response.OK(c, gin.H{"usernames": usernames})
}
