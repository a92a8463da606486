package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// DirectMessage is a one-to-one message scoped to a workspace.
type DirectMessage struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index" json:"userId"`
	User        *User  `json:"user,omitempty"`
	TeammateID  uint   `gorm:"not null;index" json:"teammateId"`
	WorkspaceID uint   `gorm:"not null;index" json:"workspaceId"`
	Content     string `gorm:"not null" json:"content"`
}

/** -------------------- DTOs -------------------- */
type CreateDirectMessageRequest struct {
	TeammateID  uint   `json:"teammateId" binding:"required"`
	WorkspaceID uint   `json:"workspaceId" binding:"required"`
	Content     string `json:"content" binding:"required"`
}

type DirectMessageResponse struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"userId"`
	Username    string    `json:"username,omitempty"`
	TeammateID  uint      `json:"teammateId"`
	WorkspaceID uint      `json:"workspaceId"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (dm *DirectMessage) ToResponse() DirectMessageResponse {
	resp := DirectMessageResponse{
		ID:          dm.ID,
		UserID:      dm.UserID,
		TeammateID:  dm.TeammateID,
		WorkspaceID: dm.WorkspaceID,
		Content:     dm.Content,
		CreatedAt:   dm.CreatedAt,
	}
	if dm.User != nil {
		resp.Username = dm.User.Username
	}
	return resp
}
