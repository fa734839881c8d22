package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Invitation status constants
const (
	InvitationStatusPending       = "pending"
	InvitationStatusAccepted      = "accepted"
	InvitationStatusDeclined      = "declined"
	InvitationStatusInfoRequested = "info_requested"
)

// Invitation asks one expert to take one case. At most one row exists
// per (case, expert) pair. Only the invited expert moves the status;
// pending is the one-way departure point, the other states allow the
// expert to reverse a response.
type Invitation struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CaseID   string `gorm:"type:uuid;not null;index;uniqueIndex:idx_case_expert" json:"case_id"`
	ExpertID string `gorm:"type:uuid;not null;index;uniqueIndex:idx_case_expert" json:"expert_id"`

	Status      string     `gorm:"not null;default:pending" json:"status"`
	Note        string     `gorm:"type:text" json:"note"`
	InvitedAt   time.Time  `gorm:"not null" json:"invited_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`

	Case   Case    `gorm:"foreignKey:CaseID" json:"case,omitempty"`
	Expert Profile `gorm:"foreignKey:ExpertID" json:"expert,omitempty"`
}

func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	if i.InvitedAt.IsZero() {
		i.InvitedAt = time.Now()
	}
	return nil
}

func (Invitation) TableName() string {
	return "invitations"
}

// IsPending checks if the expert has not yet responded
func (i *Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}

// CanTransition reports whether the expert may move the invitation
// from its current status to the target status.
func (i *Invitation) CanTransition(to string) bool {
	switch i.Status {
	case InvitationStatusPending:
		return to == InvitationStatusAccepted || to == InvitationStatusDeclined || to == InvitationStatusInfoRequested
	case InvitationStatusAccepted:
		return to == InvitationStatusDeclined
	case InvitationStatusDeclined:
		return to == InvitationStatusAccepted
	case InvitationStatusInfoRequested:
		return to == InvitationStatusAccepted || to == InvitationStatusDeclined
	}
	return false
}

// ActionLabel returns the human-readable label used in response
// notifications to the internal team.
func ActionLabel(status string) string {
	switch status {
	case InvitationStatusAccepted:
		return "Accepted"
	case InvitationStatusDeclined:
		return "Declined"
	case InvitationStatusInfoRequested:
		return "Requested More Info"
	}
	return status
}

// IsValidInvitationStatus checks if the status is valid
func IsValidInvitationStatus(status string) bool {
	switch status {
	case InvitationStatusPending, InvitationStatusAccepted, InvitationStatusDeclined, InvitationStatusInfoRequested:
		return true
	}
	return false
}
