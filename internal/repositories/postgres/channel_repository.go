package postgres

import (
	"errors"
	"fmt"

	"collab-service/internal/models"

	"gorm.io/gorm"
)

type ChannelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) *ChannelRepository {
	return &ChannelRepository{db: db}
}

func (r *ChannelRepository) Create(channel *models.Channel, creator *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(channel).Error; err != nil {
			return fmt.Errorf("failed to create channel: %w", err)
		}
		if err := tx.Model(channel).Association("Members").Append(creator); err != nil {
			return fmt.Errorf("failed to add creator as member: %w", err)
		}
		return nil
	})
}

func (r *ChannelRepository) FindByID(id uint) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.First(&channel, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("channel not found")
		}
		return nil, err
	}
	return &channel, nil
}

func (r *ChannelRepository) FindByWorkspaceID(workspaceID uint) ([]models.Channel, error) {
	var channels []models.Channel
	err := r.db.Where("workspace_id = ?", workspaceID).Find(&channels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace channels: %w", err)
	}
	return channels, nil
}

func (r *ChannelRepository) Update(channel *models.Channel) error {
	result := r.db.Model(&models.Channel{}).
		Where("id = ?", channel.ID).
		Updates(map[string]interface{}{
			"name":  channel.Name,
			"topic": channel.Topic,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ChannelRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Channel{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ChannelRepository) AddMember(channelID uint, user *models.User) error {
	channel := models.Channel{Model: gorm.Model{ID: channelID}}
	if err := r.db.Model(&channel).Association("Members").Append(user); err != nil {
		return fmt.Errorf("failed to add channel member: %w", err)
	}
	return nil
}

func (r *ChannelRepository) RemoveMember(channelID uint, user *models.User) error {
	channel := models.Channel{Model: gorm.Model{ID: channelID}}
	if err := r.db.Model(&channel).Association("Members").Delete(user); err != nil {
		return fmt.Errorf("failed to remove channel member: %w", err)
	}
	return nil
}
