package postgres

import (
	"errors"
	"fmt"

	"collab-service/internal/models"

	"gorm.io/gorm"
)

var ErrEmailTaken = errors.New("email already exists")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *models.User) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var existing models.User
		if err := tx.Where("email = ?", user.Email).First(&existing).Error; err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check email existence: %w", err)
		}

		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Update(user *models.User) error {
	result := r.db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"email":    user.Email,
			"username": user.Username,
			"password": user.Password,
			"avatar":   user.Avatar,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SearchByUsername searches for users by username (partial match).
func (r *UserRepository) SearchByUsername(username string) ([]models.User, error) {
	var users []models.User
	err := r.db.Where("username ILIKE ?", "%"+username+"%").
		Limit(10). // Limit results to prevent abuse
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users by username: %w", err)
	}
	return users, nil
}
