package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

// Specialty is a node in the two-level taxonomy: a top-level category
// when ParentID is nil, a subspecialty otherwise. Admin-managed
// reference data; depth beyond two is rejected at creation.
type Specialty struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string  `gorm:"not null" json:"name"`
	ParentID *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	Parent   *Specialty  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children []Specialty `gorm:"foreignKey:ParentID" json:"children,omitempty"`
}

func (s *Specialty) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

func (Specialty) TableName() string {
	return "specialties"
}

// IsTopLevel checks if the specialty is a top-level category
func (s *Specialty) IsTopLevel() bool {
	return s.ParentID == nil || *s.ParentID == ""
}
