package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusOpen   = "open"
	CaseStatusClosed = "closed"
)

// Case is a referral matter a client has brought to the agency.
// The single assigned-expert slot supersedes (but never mutates) that
// expert's invitation row; the invited-experts view filters it out.
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Sequential display number, e.g. EP-2026-00042
	CaseNumber  string `gorm:"not null;uniqueIndex" json:"case_number"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`

	ClientName   string `json:"client_name"`
	CaseType     string `json:"case_type"`
	Jurisdiction string `json:"jurisdiction"`

	Status string `gorm:"not null;default:open;index" json:"status"`

	CaseManagerID *string  `gorm:"type:uuid;index" json:"case_manager_id,omitempty"`
	CaseManager   *Profile `gorm:"foreignKey:CaseManagerID" json:"case_manager,omitempty"`

	AssignedExpertID *string  `gorm:"type:uuid;index" json:"assigned_expert_id,omitempty"`
	AssignedExpert   *Profile `gorm:"foreignKey:AssignedExpertID" json:"assigned_expert,omitempty"`

	// Free-text tag overflow, comma separated
	SpecialtyTags string `gorm:"type:text" json:"specialty_tags"`
	Notes         string `gorm:"type:text" json:"notes"`

	Specialties []Specialty  `gorm:"many2many:case_specialties;" json:"specialties,omitempty"`
	Invitations []Invitation `gorm:"foreignKey:CaseID" json:"invitations,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// IsOpen checks if the case is open
func (c *Case) IsOpen() bool {
	return c.Status == CaseStatusOpen
}

// IsClosed checks if the case is closed
func (c *Case) IsClosed() bool {
	return c.Status == CaseStatusClosed
}

// HasAssignedExpert checks if the single expert slot is filled
func (c *Case) HasAssignedExpert() bool {
	return c.AssignedExpertID != nil && *c.AssignedExpertID != ""
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	return status == CaseStatusOpen || status == CaseStatusClosed
}
