package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message is one persisted row in a conversation. Only the read flag
// is ever mutated after creation, and only by the recipient.
type Message struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ConversationID string `gorm:"type:uuid;not null;index" json:"conversation_id"`
	SenderID       string `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID    string `gorm:"type:uuid;not null;index" json:"recipient_id"`

	Content string `gorm:"type:text;not null" json:"content"`
	IsRead  bool   `gorm:"not null;default:false;index" json:"is_read"`

	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"-"`
	Sender       Profile      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient    Profile      `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (Message) TableName() string {
	return "messages"
}
