package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteLog is the audit row recorded each time an admin invites a
// new expert onto the panel through the external auth provider.
type InviteLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Email       string `gorm:"not null;index" json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	InvitedByID string `gorm:"type:uuid;not null" json:"invited_by_id"`
	RedirectURL string `json:"redirect_url"`

	InvitedBy Profile `gorm:"foreignKey:InvitedByID" json:"-"`
}

func (l *InviteLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (InviteLog) TableName() string {
	return "invite_logs"
}
