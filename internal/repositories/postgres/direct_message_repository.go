package postgres

import (
	"fmt"

	"collab-service/internal/models"

	"gorm.io/gorm"
)

type DirectMessageRepository struct {
	db *gorm.DB
}

func NewDirectMessageRepository(db *gorm.DB) *DirectMessageRepository {
	return &DirectMessageRepository{db: db}
}

func (r *DirectMessageRepository) Create(dm *models.DirectMessage) error {
	if err := r.db.Create(dm).Error; err != nil {
		return fmt.Errorf("failed to create direct message: %w", err)
	}
	return nil
}

// FindByThread returns the conversation between two users inside one
// workspace, in either direction.
func (r *DirectMessageRepository) FindByThread(userID, teammateID, workspaceID uint) ([]models.DirectMessage, error) {
	var messages []models.DirectMessage
	err := r.db.Preload("User").
		Where("workspace_id = ?", workspaceID).
		Where(
			r.db.Where("user_id = ? AND teammate_id = ?", userID, teammateID).
				Or("user_id = ? AND teammate_id = ?", teammateID, userID),
		).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get direct messages: %w", err)
	}
	return messages, nil
}
