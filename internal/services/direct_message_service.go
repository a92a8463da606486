package services

import (
	"context"
	"fmt"
	"log/slog"

	"collab-service/internal/models"
	"collab-service/internal/repositories/postgres"
)

type DirectMessageService struct {
	dmRepo    *postgres.DirectMessageRepository
	userRepo  *postgres.UserRepository
	publisher *EventPublisher
}

func NewDirectMessageService(
	dmRepo *postgres.DirectMessageRepository,
	userRepo *postgres.UserRepository,
	publisher *EventPublisher,
) *DirectMessageService {
	return &DirectMessageService{
		dmRepo:    dmRepo,
		userRepo:  userRepo,
		publisher: publisher,
	}
}

func (s *DirectMessageService) CreateDirectMessage(userID uint, req *models.CreateDirectMessageRequest) (*models.DirectMessageResponse, error) {
	if _, err := s.userRepo.FindByID(req.TeammateID); err != nil {
		return nil, err
	}

	dm := &models.DirectMessage{
		UserID:      userID,
		TeammateID:  req.TeammateID,
		WorkspaceID: req.WorkspaceID,
		Content:     req.Content,
	}
	if err := s.dmRepo.Create(dm); err != nil {
		return nil, err
	}

	resp := dm.ToResponse()

	if s.publisher != nil {
		go func(payload models.DirectMessageResponse) {
			roomKey := fmt.Sprintf("dm:%d:%d", payload.UserID, payload.TeammateID)
			if err := s.publisher.Publish(context.Background(), EventDirectMessageCreated, roomKey, payload); err != nil {
				slog.Warn("Failed to archive direct message event", "directMessageID", payload.ID, "error", err)
			}
		}(resp)
	}

	return &resp, nil
}

func (s *DirectMessageService) GetThread(userID, teammateID, workspaceID uint) ([]models.DirectMessageResponse, error) {
	messages, err := s.dmRepo.FindByThread(userID, teammateID, workspaceID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.DirectMessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return responses, nil
}
