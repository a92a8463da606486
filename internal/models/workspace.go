package models

import (
	"fmt"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Workspace groups channels and members under one team.
type Workspace struct {
	gorm.Model
	Name    string  `gorm:"type:varchar(100);not null" json:"name"`
	OwnerID uint    `gorm:"not null;index" json:"ownerId"`
	Owner   *User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Members []*User `gorm:"many2many:workspace_members" json:"members,omitempty"`

	Channels []*Channel `json:"channels,omitempty"`
}

/** -------------------- DTOs -------------------- */
type CreateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type UpdateWorkspaceRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type WorkspaceResponse struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	OwnerID uint   `json:"ownerId"`
}

// WorkspaceRoomKey builds the room key used by the realtime layer,
// conventionally "<id>:<name>".
func WorkspaceRoomKey(id uint, name string) string {
	return fmt.Sprintf("%d:%s", id, name)
}

// PresenceRoom returns the realtime room key for this workspace.
func (w *Workspace) PresenceRoom() string {
	return WorkspaceRoomKey(w.ID, w.Name)
}

func (w *Workspace) ToResponse() WorkspaceResponse {
	return WorkspaceResponse{
		ID:      w.ID,
		Name:    w.Name,
		OwnerID: w.OwnerID,
	}
}
