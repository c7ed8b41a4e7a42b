package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             string                      `gorm:"primaryKey;size:36" json:"id"`
	ConversationID string                      `gorm:"size:36;not null;index:idx_message_conversation_created,priority:1" json:"conversation_id"`
	UserID         string                      `gorm:"size:36;not null;index" json:"user_id"`
	Role           string                      `gorm:"size:20;not null" json:"role"` // "user" or "assistant"
	Content        string                      `gorm:"type:text;not null" json:"content"`
	Images         datatypes.JSONSlice[string] `json:"images,omitempty"`
	CreatedAt      time.Time                   `gorm:"index:idx_message_conversation_created,priority:2" json:"created_at"`
}
