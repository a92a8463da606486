package postgres

import (
	"errors"
	"fmt"

	"collab-service/internal/models"

	"gorm.io/gorm"
)

type WorkspaceRepository struct {
	db *gorm.DB
}

func NewWorkspaceRepository(db *gorm.DB) *WorkspaceRepository {
	return &WorkspaceRepository{db: db}
}

// Create persists the workspace and enrolls the owner as its first member.
func (r *WorkspaceRepository) Create(workspace *models.Workspace, owner *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(workspace).Error; err != nil {
			return fmt.Errorf("failed to create workspace: %w", err)
		}
		if err := tx.Model(workspace).Association("Members").Append(owner); err != nil {
			return fmt.Errorf("failed to add owner as member: %w", err)
		}
		return nil
	})
}

func (r *WorkspaceRepository) FindByID(id uint) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := r.db.Preload("Members").First(&workspace, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("workspace not found")
		}
		return nil, err
	}
	return &workspace, nil
}

// FindByUserID returns the workspaces the user owns or has been invited to.
func (r *WorkspaceRepository) FindByUserID(userID uint) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	err := r.db.
		Joins("JOIN workspace_members ON workspace_members.workspace_id = workspaces.id").
		Where("workspace_members.user_id = ?", userID).
		Find(&workspaces).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *WorkspaceRepository) Update(id uint, name string) error {
	result := r.db.Model(&models.Workspace{}).Where("id = ?", id).Update("name", name)
	if result.Error != nil {
		return fmt.Errorf("failed to update workspace: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *WorkspaceRepository) AddMember(workspaceID uint, user *models.User) error {
	workspace := models.Workspace{Model: gorm.Model{ID: workspaceID}}
	if err := r.db.Model(&workspace).Association("Members").Append(user); err != nil {
		return fmt.Errorf("failed to add workspace member: %w", err)
	}
	return nil
}
