package services

import (
	"context"
	"fmt"
	"log/slog"

	"collab-service/internal/models"
	"collab-service/internal/repositories/postgres"
)

// MessageService persists chat history. Realtime fan-out is a separate
// path; this service never touches the socket layer.
type MessageService struct {
	messageRepo *postgres.MessageRepository
	channelRepo *postgres.ChannelRepository
	publisher   *EventPublisher
}

func NewMessageService(
	messageRepo *postgres.MessageRepository,
	channelRepo *postgres.ChannelRepository,
	publisher *EventPublisher,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		channelRepo: channelRepo,
		publisher:   publisher,
	}
}

func (s *MessageService) CreateMessage(userID uint, req *models.CreateMessageRequest) (*models.MessageResponse, error) {
	if _, err := s.channelRepo.FindByID(req.ChannelID); err != nil {
		return nil, err
	}

	message := &models.Message{
		UserID:    userID,
		ChannelID: req.ChannelID,
		Content:   req.Content,
	}
	if err := s.messageRepo.Create(message); err != nil {
		return nil, err
	}

	resp := message.ToResponse()

	// Archive to the firehose off the request path.
	if s.publisher != nil {
		go func(payload models.MessageResponse) {
			roomKey := fmt.Sprintf("channel:%d", payload.ChannelID)
			if err := s.publisher.Publish(context.Background(), EventMessageCreated, roomKey, payload); err != nil {
				slog.Warn("Failed to archive message event", "messageID", payload.ID, "error", err)
			}
		}(resp)
	}

	return &resp, nil
}

func (s *MessageService) GetChannelMessages(channelID uint, limit, offset int) ([]models.MessageResponse, error) {
	messages, err := s.messageRepo.FindByChannelID(channelID, limit, offset)
	if err != nil {
		return nil, err
	}

	responses := make([]models.MessageResponse, 0, len(messages))
	for i := range messages {
		responses = append(responses, messages[i].ToResponse())
	}
	return responses, nil
}
