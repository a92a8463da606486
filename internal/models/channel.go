package models

import (
	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Channel is a named conversation inside a workspace.
type Channel struct {
	gorm.Model
	WorkspaceID uint       `gorm:"not null;index" json:"workspaceId"`
	Workspace   *Workspace `json:"workspace,omitempty"`

	Name        string `gorm:"type:varchar(100);not null" json:"name"`
	Description string `json:"description"`
	Topic       string `gorm:"type:varchar(100);default:''" json:"topic"`
	Private     bool   `gorm:"default:true" json:"private"`

	Members  []*User    `gorm:"many2many:channel_members" json:"members,omitempty"`
	Messages []*Message `json:"messages,omitempty"`
}

/** -------------------- DTOs -------------------- */
type CreateChannelRequest struct {
	WorkspaceID uint   `json:"workspaceId" binding:"required"`
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

type UpdateChannelRequest struct {
	Name  *string `json:"name,omitempty" binding:"omitempty,min=1,max=100"`
	Topic *string `json:"topic,omitempty" binding:"omitempty,max=100"`
}

type ChannelResponse struct {
	ID          uint   `json:"id"`
	WorkspaceID uint   `json:"workspaceId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Topic       string `json:"topic"`
	Private     bool   `json:"private"`
}

func (c *Channel) ToResponse() ChannelResponse {
	return ChannelResponse{
		ID:          c.ID,
		WorkspaceID: c.WorkspaceID,
		Name:        c.Name,
		Description: c.Description,
		Topic:       c.Topic,
		Private:     c.Private,
	}
}
