package services

import (
	"collab-service/internal/models"
	"collab-service/internal/repositories/postgres"
)

type ChannelService struct {
	channelRepo *postgres.ChannelRepository
	userRepo    *postgres.UserRepository
}

func NewChannelService(channelRepo *postgres.ChannelRepository, userRepo *postgres.UserRepository) *ChannelService {
	return &ChannelService{
		channelRepo: channelRepo,
		userRepo:    userRepo,
	}
}

func (s *ChannelService) CreateChannel(req *models.CreateChannelRequest, creatorID uint) (*models.ChannelResponse, error) {
	creator, err := s.userRepo.FindByID(creatorID)
	if err != nil {
		return nil, err
	}

	channel := &models.Channel{
		WorkspaceID: req.WorkspaceID,
		Name:        req.Name,
		Description: req.Description,
		Private:     req.Private,
	}
	if err := s.channelRepo.Create(channel, creator); err != nil {
		return nil, err
	}

	resp := channel.ToResponse()
	return &resp, nil
}

func (s *ChannelService) GetChannelByID(id uint) (*models.ChannelResponse, error) {
	channel, err := s.channelRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	resp := channel.ToResponse()
	return &resp, nil
}

func (s *ChannelService) GetWorkspaceChannels(workspaceID uint) ([]models.ChannelResponse, error) {
	channels, err := s.channelRepo.FindByWorkspaceID(workspaceID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.ChannelResponse, 0, len(channels))
	for i := range channels {
		responses = append(responses, channels[i].ToResponse())
	}
	return responses, nil
}

func (s *ChannelService) UpdateChannel(id uint, req *models.UpdateChannelRequest) error {
	channel, err := s.channelRepo.FindByID(id)
	if err != nil {
		return err
	}

	if req.Name != nil {
		channel.Name = *req.Name
	}
	if req.Topic != nil {
		channel.Topic = *req.Topic
	}
	return s.channelRepo.Update(channel)
}

func (s *ChannelService) DeleteChannel(id uint) error {
	return s.channelRepo.Delete(id)
}

func (s *ChannelService) AddUserToChannel(channelID, userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	return s.channelRepo.AddMember(channelID, user)
}

func (s *ChannelService) RemoveUserFromChannel(channelID, userID uint) error {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		return err
	}
	return s.channelRepo.RemoveMember(channelID, user)
}
