package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"expert_panel_go/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
)

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession creates a new session for a profile
func CreateSession(db *gorm.DB, profileID, ipAddress, userAgent string) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Token:     token,
		ExpiresAt: time.Now().Add(DefaultSessionDuration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	if err := db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// ValidateSession validates a session token and returns the session if valid
func ValidateSession(db *gorm.DB, token string) (*models.Session, error) {
	var session models.Session

	err := db.Preload("Profile").
		Where("token = ?", token).
		First(&session).Error
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	if session.IsExpired() {
		// Prune the row so the token cannot linger
		db.Delete(&session)
		return nil, fmt.Errorf("session expired")
	}

	// A session whose profile is gone must not resolve to a zero-value
	// principal
	if session.Profile.ID == "" {
		db.Delete(&session)
		return nil, fmt.Errorf("session principal no longer exists")
	}

	return &session, nil
}

// DeleteSessionsForProfile revokes every session belonging to a profile
func DeleteSessionsForProfile(db *gorm.DB, profileID string) error {
	return db.Where("profile_id = ?", profileID).Delete(&models.Session{}).Error
}

// DeleteSession removes a session by token (logout)
func DeleteSession(db *gorm.DB, token string) error {
	return db.Where("token = ?", token).Delete(&models.Session{}).Error
}

// CleanupExpiredSessions removes all expired sessions
func CleanupExpiredSessions(db *gorm.DB) error {
	return db.Where("expires_at < ?", time.Now()).Delete(&models.Session{}).Error
}
