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

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Me returns the authenticated user's profile.
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to load profile")
		return
	}

	response.OK(c, user)
}

// UpdateMe applies partial profile edits.
// PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		response.Unauthorized(c, "not authenticated")
		return
	}

	var req models.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.InternalError(c, "failed to update profile")
		return
	}

	response.OK(c, user)
}

// Search looks up users by username prefix for invite flows.
// GET /api/v1/users/search?q=<prefix>
func (h *UserHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.BadRequest(c, "query parameter q is required")
		return
	}

	users, err := h.userService.SearchByUsername(query)
	if err != nil {
		response.InternalError(c, "failed to search users")
		return
	}

	response.OK(c, users)
}
