package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalendarEvent belongs to one expert's calendar. Staff/admin may act
// on it too; a mutation by anyone but the owner notifies the owner.
type CalendarEvent struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	ExpertID string  `gorm:"type:uuid;not null;index" json:"expert_id"`
	CaseID   *string `gorm:"type:uuid;index" json:"case_id,omitempty"`

	Title     string    `gorm:"not null" json:"title"`
	StartTime time.Time `gorm:"not null;index" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`
	Notes     string    `gorm:"type:text" json:"notes"`

	Expert Profile `gorm:"foreignKey:ExpertID" json:"expert,omitempty"`
	Case   *Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`
}

func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// IsValidInterval checks the end > start invariant
func (e *CalendarEvent) IsValidInterval() bool {
	return e.EndTime.After(e.StartTime)
}
