package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lead kinds
const (
	LeadKindContact   = "contact"
	LeadKindJoinPanel = "join_panel"
)

// Lead is a public form submission from the marketing site: either a
// contact enquiry or a join-the-panel application. Submissions caught
// by the anti-bot checks are never persisted.
type Lead struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Kind    string `gorm:"not null;index" json:"kind"`
	Name    string `gorm:"not null" json:"name"`
	Email   string `gorm:"not null" json:"email"`
	Phone   string `json:"phone"`
	Message string `gorm:"type:text" json:"message"`
	// Join-panel only: the applicant's stated field of expertise
	Specialty string `json:"specialty"`
}

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

func (Lead) TableName() string {
	return "leads"
}
