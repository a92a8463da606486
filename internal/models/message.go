package models

import (
	"time"

	"gorm.io/gorm"
)

/** --------------------ENTITIES-------------------- */
// Message is a channel message. The realtime layer never writes these;
// persistence happens on the HTTP POST path only.
type Message struct {
	gorm.Model
	UserID    uint     `gorm:"not null;index" json:"userId"`
	User      *User    `json:"user,omitempty"`
	ChannelID uint     `gorm:"not null;index" json:"channelId"`
	Channel   *Channel `json:"channel,omitempty"`
	Content   string   `gorm:"not null" json:"content"`
}

/** -------------------- DTOs -------------------- */
type CreateMessageRequest struct {
	ChannelID uint   `json:"channelId" binding:"required"`
	Content   string `json:"content" binding:"required"`
}

type MessageResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"userId"`
	Username  string    `json:"username,omitempty"`
	ChannelID uint      `json:"channelId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Message) ToResponse() MessageResponse {
	resp := MessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if m.User != nil {
		resp.Username = m.User.Username
	}
	return resp
}
