package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile roles
const (
	RoleExpert = "expert"
	RoleStaff  = "staff"
	RoleAdmin  = "admin"
)

// Expert availability
const (
	AvailabilityAvailable   = "available"
	AvailabilityLimited     = "limited"
	AvailabilityUnavailable = "unavailable"
)

// Profile review status
const (
	ReviewStatusPending  = "pending"
	ReviewStatusApproved = "approved"
	ReviewStatusRejected = "rejected"
)

// Profile is one principal of the portal: an expert witness or an
// internal staff/admin user. Role is immutable through normal flows.
type Profile struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Role      string `gorm:"not null;default:expert;index" json:"role"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string `json:"phone"`
	Bio       string `gorm:"type:text" json:"bio"`

	// Hourly rates in whole currency units
	RateReview     *int `json:"rate_review,omitempty"`
	RateDeposition *int `json:"rate_deposition,omitempty"`
	RateTrial      *int `json:"rate_trial,omitempty"`

	Availability string `gorm:"not null;default:available" json:"availability"`
	// Free-text tag overflow, comma separated
	Tags         string     `gorm:"type:text" json:"tags"`
	OnboardedAt  *time.Time `json:"onboarded_at,omitempty"`
	ReviewStatus string     `gorm:"not null;default:pending" json:"review_status"`

	Specialties []Specialty `gorm:"many2many:profile_specialties;" json:"specialties,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Profile model
func (Profile) TableName() string {
	return "profiles"
}

// FullName joins the name parts, falling back to email when both are empty
func (p *Profile) FullName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

// IsExpert checks if the profile has the expert role
func (p *Profile) IsExpert() bool {
	return p.Role == RoleExpert
}

// IsInternal checks if the profile is staff or admin
func (p *Profile) IsInternal() bool {
	return p.Role == RoleStaff || p.Role == RoleAdmin
}

// TagList splits the comma separated tag column
func (p *Profile) TagList() []string {
	if p.Tags == "" {
		return nil
	}
	parts := strings.Split(p.Tags, ",")
	tags := make([]string, 0, len(parts))
	for _, t := range parts {
		if trimmed := strings.TrimSpace(t); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// IsValidRole checks if the role is valid
func IsValidRole(role string) bool {
	return role == RoleExpert || role == RoleStaff || role == RoleAdmin
}

// IsValidAvailability checks if the availability value is valid
func IsValidAvailability(availability string) bool {
	switch availability {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilityUnavailable:
		return true
	}
	return false
}

// IsValidReviewStatus checks if the review status is valid
func IsValidReviewStatus(status string) bool {
	switch status {
	case ReviewStatusPending, ReviewStatusApproved, ReviewStatusRejected:
		return true
	}
	return false
}

// Capabilities is the explicit permission set resolved from a role.
// Handlers consume this instead of comparing role strings in place.
type Capabilities struct {
	ManageCases      bool // create/update cases, assign experts, invite experts to cases
	AssignManagers   bool // set/clear the case manager slot
	DeleteEntities   bool // delete cases and expert profiles
	InviteMembers    bool // invite new experts onto the panel
	ViewStats        bool // internal dashboards and exports
	RespondToInvites bool // act on case invitations addressed to them
	ManageTaxonomy   bool // maintain the specialty tree
}

// Capabilities resolves the permission set for the profile's role.
func (p *Profile) Capabilities() Capabilities {
	switch p.Role {
	case RoleAdmin:
		return Capabilities{
			ManageCases:    true,
			AssignManagers: true,
			DeleteEntities: true,
			InviteMembers:  true,
			ViewStats:      true,
			ManageTaxonomy: true,
		}
	case RoleStaff:
		return Capabilities{
			ManageCases: true,
		}
	case RoleExpert:
		return Capabilities{
			RespondToInvites: true,
		}
	}
	return Capabilities{}
}
