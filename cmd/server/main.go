package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"collab-service/internal/api/handlers"
	"collab-service/internal/api/routes"
	"collab-service/internal/config"
	"collab-service/internal/database"
	"collab-service/internal/realtime"
	"collab-service/internal/repositories/postgres"
	"collab-service/internal/services"
)

func main() {
	cfg := config.Load()

	logLevel := slog.LevelInfo
	if !cfg.Server.IsProduction() {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	db, err := database.NewPostgresConnection(cfg.Database.DSN())
	if err != nil {
		slog.Error("Failed to connect to Postgres", "error", err)
		os.Exit(1)
	}

	var storage *database.MinIOClient
	if cfg.MinIO.Enabled {
		storage, err = database.NewMinIOClient(
			cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket, cfg.MinIO.UseSSL,
		)
		if err != nil {
			slog.Error("Failed to connect to MinIO", "error", err)
			os.Exit(1)
		}
	}

	var publisher *services.EventPublisher
	if cfg.Kafka.Enabled {
		publisher = services.NewEventPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
	}

	userRepo := postgres.NewUserRepository(db)
	workspaceRepo := postgres.NewWorkspaceRepository(db)
	channelRepo := postgres.NewChannelRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	dmRepo := postgres.NewDirectMessageRepository(db)

	presenceService := services.NewPresenceService(redisClient)
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.Expire)
	workspaceService := services.NewWorkspaceService(workspaceRepo, userRepo, presenceService)
	channelService := services.NewChannelService(channelRepo, userRepo)
	messageService := services.NewMessageService(messageRepo, channelRepo, publisher)
	dmService := services.NewDirectMessageService(dmRepo, userRepo, publisher)

	eventRouter := realtime.NewRouter(realtime.DefaultConfig(), presenceService, logger)
	go eventRouter.Run()
	defer eventRouter.Stop()

	engine := routes.Setup(cfg, routes.Handlers{
		Auth:          handlers.NewAuthHandler(userService),
		User:          handlers.NewUserHandler(userService),
		Workspace:     handlers.NewWorkspaceHandler(workspaceService, presenceService),
		Channel:       handlers.NewChannelHandler(channelService),
		Message:       handlers.NewMessageHandler(messageService),
		DirectMessage: handlers.NewDirectMessageHandler(dmService),
		Upload:        handlers.NewUploadHandler(storage),
		WebSocket:     handlers.NewWebSocketHandler(eventRouter),
	}, presenceService)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		slog.Info("Server listening", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Forced shutdown", "error", err)
	}
	slog.Info("Server stopped")
}
