package services

import (
	"fmt"
	"time"

	"expert_panel_go/models"

	"gorm.io/gorm"
)

// GenerateCaseNumber generates a sequential display number.
// Format: EP-{YEAR}-{SEQUENCE}, e.g. EP-2026-00042
func GenerateCaseNumber(db *gorm.DB) (string, error) {
	currentYear := time.Now().Year()
	prefix := fmt.Sprintf("EP-%d-", currentYear)

	var maxCase models.Case
	err := db.Where("case_number LIKE ?", prefix+"%").
		Order("case_number DESC").
		First(&maxCase).Error

	sequence := 1
	if err == nil {
		var parsedSeq int
		if _, scanErr := fmt.Sscanf(maxCase.CaseNumber, "EP-%d-%d", &currentYear, &parsedSeq); scanErr == nil {
			sequence = parsedSeq + 1
		}
	} else if err != gorm.ErrRecordNotFound {
		return "", fmt.Errorf("failed to query max case number: %w", err)
	}

	return fmt.Sprintf("%s%05d", prefix, sequence), nil
}

// EnsureUniqueCaseNumber generates a unique case number with retry logic
func EnsureUniqueCaseNumber(db *gorm.DB) (string, error) {
	const maxRetries = 10

	for i := 0; i < maxRetries; i++ {
		caseNumber, err := GenerateCaseNumber(db)
		if err != nil {
			return "", err
		}

		var count int64
		if err := db.Model(&models.Case{}).Where("case_number = ?", caseNumber).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check case number uniqueness: %w", err)
		}

		if count == 0 {
			return caseNumber, nil
		}
		// Collision detected, retry
	}

	return "", fmt.Errorf("failed to generate unique case number after %d retries", maxRetries)
}

// CreateCase inserts the case and its specialty join rows. The
// optional manager-assignment notification is the caller's concern so
// that persistence failures and email delivery stay decoupled.
func CreateCase(db *gorm.DB, record *models.Case, specialtyIDs []string) error {
	if record.Title == "" || record.Description == "" {
		return fmt.Errorf("title and description are required")
	}

	if record.CaseNumber == "" {
		number, err := EnsureUniqueCaseNumber(db)
		if err != nil {
			return err
		}
		record.CaseNumber = number
	}

	if record.Status == "" {
		record.Status = models.CaseStatusOpen
	}

	if err := db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}

	if len(specialtyIDs) > 0 {
		var specialties []models.Specialty
		if err := db.Where("id IN ?", specialtyIDs).Find(&specialties).Error; err != nil {
			return fmt.Errorf("failed to load specialties: %w", err)
		}
		if err := db.Model(record).Association("Specialties").Append(&specialties); err != nil {
			return fmt.Errorf("failed to link specialties: %w", err)
		}
	}

	return nil
}

// AssignExpert sets the single assigned-expert slot. The expert's
// invitation row, whatever its status, is left untouched; the
// invited-experts view hides the assigned expert instead.
func AssignExpert(db *gorm.DB, caseID, expertID string) (*models.Case, *models.Profile, error) {
	var record models.Case
	if err := db.First(&record, "id = ?", caseID).Error; err != nil {
		return nil, nil, fmt.Errorf("case not found: %w", err)
	}

	var expert models.Profile
	if err := db.First(&expert, "id = ? AND role = ?", expertID, models.RoleExpert).Error; err != nil {
		return nil, nil, fmt.Errorf("expert not found: %w", err)
	}

	if err := db.Model(&record).Update("assigned_expert_id", expertID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to assign expert: %w", err)
	}
	record.AssignedExpertID = &expert.ID

	return &record, &expert, nil
}

// RemoveAssignedExpert clears the slot. The expert's original
// invitation becomes visible again in the invited-experts view. No
// notification is sent, asymmetric with assignment.
func RemoveAssignedExpert(db *gorm.DB, caseID string) error {
	result := db.Model(&models.Case{}).Where("id = ?", caseID).Update("assigned_expert_id", nil)
	if result.Error != nil {
		return fmt.Errorf("failed to remove assigned expert: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AssignManager sets or clears the case manager. Returns the manager
// profile when one was set so the caller can notify it.
func AssignManager(db *gorm.DB, caseID string, managerID *string) (*models.Case, *models.Profile, error) {
	var record models.Case
	if err := db.First(&record, "id = ?", caseID).Error; err != nil {
		return nil, nil, fmt.Errorf("case not found: %w", err)
	}

	var manager *models.Profile
	if managerID != nil && *managerID != "" {
		var m models.Profile
		if err := db.First(&m, "id = ? AND role IN (?, ?)", *managerID, models.RoleStaff, models.RoleAdmin).Error; err != nil {
			return nil, nil, fmt.Errorf("manager not found: %w", err)
		}
		manager = &m
	} else {
		managerID = nil
	}

	if err := db.Model(&record).Update("case_manager_id", managerID).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to assign manager: %w", err)
	}
	record.CaseManagerID = managerID

	return &record, manager, nil
}

// UpdateCaseStatus toggles the case between open and closed. No side
// effects beyond persistence; reopening does not re-notify anyone.
func UpdateCaseStatus(db *gorm.DB, caseID, status string) error {
	if !models.IsValidCaseStatus(status) {
		return fmt.Errorf("invalid case status %q", status)
	}

	result := db.Model(&models.Case{}).Where("id = ?", caseID).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update case status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCase removes the case, its invitations, and its specialty
// join rows.
func DeleteCase(db *gorm.DB, caseID string) error {
	var record models.Case
	if err := db.First(&record, "id = ?", caseID).Error; err != nil {
		return fmt.Errorf("case not found: %w", err)
	}

	if err := db.Where("case_id = ?", caseID).Delete(&models.Invitation{}).Error; err != nil {
		return fmt.Errorf("failed to cascade invitations: %w", err)
	}
	if err := db.Model(&record).Association("Specialties").Clear(); err != nil {
		return fmt.Errorf("failed to clear specialty links: %w", err)
	}
	if err := db.Delete(&record).Error; err != nil {
		return fmt.Errorf("failed to delete case: %w", err)
	}
	return nil
}
