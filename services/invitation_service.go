package services

import (
	"errors"
	"fmt"
	"time"

	"expert_panel_go/models"

	"gorm.io/gorm"
)

// ErrDuplicateInvitation is returned when the (case, expert) pair is
// already invited.
var ErrDuplicateInvitation = errors.New("expert already invited to this case")

// ErrInvalidTransition is returned for a status move the state
// machine does not allow.
var ErrInvalidTransition = errors.New("invitation status transition not allowed")

// ErrNotInvitee is returned when someone other than the invited
// expert tries to respond.
var ErrNotInvitee = errors.New("invitation belongs to another expert")

// InviteExpert creates a pending invitation for the (case, expert)
// pair. The existence check runs first so the caller gets a clean
// duplicate error; the composite unique index backstops the race
// between check and insert.
func InviteExpert(db *gorm.DB, caseID, expertID string) (*models.Invitation, error) {
	var record models.Case
	if err := db.First(&record, "id = ?", caseID).Error; err != nil {
		return nil, fmt.Errorf("case not found: %w", err)
	}

	var expert models.Profile
	if err := db.First(&expert, "id = ? AND role = ?", expertID, models.RoleExpert).Error; err != nil {
		return nil, fmt.Errorf("expert not found: %w", err)
	}

	var count int64
	if err := db.Model(&models.Invitation{}).
		Where("case_id = ? AND expert_id = ?", caseID, expertID).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing invitation: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateInvitation
	}

	invitation := &models.Invitation{
		CaseID:   caseID,
		ExpertID: expertID,
		Status:   models.InvitationStatusPending,
	}
	if err := db.Create(invitation).Error; err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	invitation.Case = record
	invitation.Expert = expert
	return invitation, nil
}

// RespondToInvitation applies an expert's status transition. Sets
// responded_at on every transition; the note is only overwritten when
// a new one is supplied.
func RespondToInvitation(db *gorm.DB, invitationID, expertID, status, note string) (*models.Invitation, error) {
	if !models.IsValidInvitationStatus(status) {
		return nil, fmt.Errorf("invalid invitation status %q", status)
	}

	var invitation models.Invitation
	if err := db.Preload("Case").Preload("Expert").
		First(&invitation, "id = ?", invitationID).Error; err != nil {
		return nil, fmt.Errorf("invitation not found: %w", err)
	}

	if invitation.ExpertID != expertID {
		return nil, ErrNotInvitee
	}

	if !invitation.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, invitation.Status, status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       status,
		"responded_at": now,
	}
	if note != "" {
		updates["note"] = note
	}

	if err := db.Model(&invitation).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update invitation: %w", err)
	}

	invitation.Status = status
	invitation.RespondedAt = &now
	if note != "" {
		invitation.Note = note
	}
	return &invitation, nil
}

// InvitedExperts is the derived read model for a case's "invited, not
// yet assigned" list: all invitation rows except the one belonging to
// the currently assigned expert. Assignment never mutates invitation
// rows, so removing the assigned expert makes the row visible again.
func InvitedExperts(db *gorm.DB, caseID string) ([]models.Invitation, error) {
	var record models.Case
	if err := db.First(&record, "id = ?", caseID).Error; err != nil {
		return nil, fmt.Errorf("case not found: %w", err)
	}

	query := db.Preload("Expert").Where("case_id = ?", caseID)
	if record.HasAssignedExpert() {
		query = query.Where("expert_id != ?", *record.AssignedExpertID)
	}

	var invitations []models.Invitation
	if err := query.Order("invited_at ASC").Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

// InvitationsForExpert lists an expert's invitations, newest first
func InvitationsForExpert(db *gorm.DB, expertID string) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := db.Preload("Case").
		Where("expert_id = ?", expertID).
		Order("invited_at DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}
