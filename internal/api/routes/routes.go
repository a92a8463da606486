package routes

import (
	"net/http"

	"collab-service/internal/api/handlers"
	"collab-service/internal/api/middleware"
	"collab-service/internal/config"
	"collab-service/internal/services"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the HTTP surface needs.
type Handlers struct {
	Auth          *handlers.AuthHandler
	User          *handlers.UserHandler
	Workspace     *handlers.WorkspaceHandler
	Channel       *handlers.ChannelHandler
	Message       *handlers.MessageHandler
	DirectMessage *handlers.DirectMessageHandler
	Upload        *handlers.UploadHandler
	WebSocket     *handlers.WebSocketHandler
}

func Setup(cfg *config.Config, h Handlers, presence *services.PresenceService) *gin.Engine {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// The socket endpoint sits outside the versioned API group; clients
	// identify themselves in-band after the upgrade.
	r.GET("/ws", h.WebSocket.Connect)

	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.Use(middleware.RateLimitIP(presence, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	authed := v1.Group("")
	authed.Use(middleware.RequireAuth(cfg.JWT.Secret))
	authed.Use(middleware.RateLimit(presence, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	{
		authed.GET("/users/me", h.User.Me)
		authed.PATCH("/users/me", h.User.UpdateMe)
		authed.GET("/users/search", h.User.Search)

		authed.POST("/workspaces", h.Workspace.Create)
		authed.GET("/workspaces", h.Workspace.List)
		authed.PUT("/workspaces/:id", h.Workspace.Update)
		authed.GET("/workspaces/:id/teammates", h.Workspace.Teammates)
		authed.POST("/workspaces/:id/members", h.Workspace.AddMember)
		authed.GET("/workspaces/:id/online", h.Workspace.Online)
		authed.GET("/workspaces/:id/channels", h.Channel.ListByWorkspace)

		authed.POST("/channels", h.Channel.Create)
		authed.GET("/channels/:id", h.Channel.Get)
		authed.PATCH("/channels/:id", h.Channel.Update)
		authed.DELETE("/channels/:id", h.Channel.Delete)
		authed.POST("/channels/:id/members", h.Channel.Join)
		authed.DELETE("/channels/:id/members", h.Channel.Leave)
		authed.GET("/channels/:id/messages", h.Message.ListByChannel)

		authed.POST("/messages", h.Message.Create)

		authed.POST("/direct-messages", h.DirectMessage.Create)
		authed.GET("/direct-messages/:teammateId", h.DirectMessage.Thread)

		authed.POST("/uploads", h.Upload.Upload)
	}

	return r
}
