package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Conversation is a direct channel between two profiles, independent
// of any case. The pair is conceptually unordered; participants are
// stored sorted by ID so the unique index covers both orderings.
type Conversation struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Participant1ID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_conversation_pair" json:"participant_1_id"`
	Participant2ID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_conversation_pair" json:"participant_2_id"`

	LastMessageAt *time.Time `gorm:"index" json:"last_message_at,omitempty"`

	Participant1 Profile   `gorm:"foreignKey:Participant1ID" json:"participant_1,omitempty"`
	Participant2 Profile   `gorm:"foreignKey:Participant2ID" json:"participant_2,omitempty"`
	Messages     []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

func (Conversation) TableName() string {
	return "conversations"
}

// HasParticipant checks if the profile is one of the two participants
func (c *Conversation) HasParticipant(profileID string) bool {
	return c.Participant1ID == profileID || c.Participant2ID == profileID
}

// OtherParticipantID returns the counterpart of the given profile
func (c *Conversation) OtherParticipantID(profileID string) string {
	if c.Participant1ID == profileID {
		return c.Participant2ID
	}
	return c.Participant1ID
}
