package handlers

import (
	"errors"

	"collab-service/internal/models"
	"collab-service/internal/repositories/postgres"
	"collab-service/internal/services"
	"collab-service/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthHandler struct {
	userService *services.UserService
}

func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Register creates a new account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			response.Conflict(c, "email already registered")
			return
		}
		response.InternalError(c, "failed to register user")
		return
	}

	response.Created(c, user)
}

// Login exchanges credentials for an access token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.userService.Login(&req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, gorm.ErrRecordNotFound) {
			response.Unauthorized(c, "invalid email or password")
			return
		}
		response.InternalError(c, "failed to log in")
		return
	}

	response.OK(c, result)
}
