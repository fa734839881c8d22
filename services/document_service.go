package services

import (
	"errors"
	"fmt"
	"strings"

	"expert_panel_go/models"

	"gorm.io/gorm"
)

// ErrUnsafeStorageKey is returned for keys containing traversal or
// empty segments, before any storage call is attempted.
var ErrUnsafeStorageKey = errors.New("unsafe storage key")

// ValidateStorageKey rejects path traversal. Every segment of the raw
// key must be non-empty and must not be "." or ".."; the key must not
// be absolute. The raw input is checked segment by segment rather than
// cleaned, so a normalized-but-different key also fails.
func ValidateStorageKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return ErrUnsafeStorageKey
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return ErrUnsafeStorageKey
		}
	}
	return nil
}

// KeyOwner returns the leading path segment of a storage key, which
// is the owning profile's ID.
func KeyOwner(key string) string {
	if idx := strings.Index(key, "/"); idx > 0 {
		return key[:idx]
	}
	return ""
}

// CreateDocument persists metadata for an uploaded file
func CreateDocument(db *gorm.DB, doc *models.Document) error {
	if !models.IsValidDocumentType(doc.Type) {
		return fmt.Errorf("invalid document type %q", doc.Type)
	}
	if err := ValidateStorageKey(doc.StorageKey); err != nil {
		return err
	}
	if err := db.Create(doc).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// ListDocuments returns an expert's documents, newest first
func ListDocuments(db *gorm.DB, ownerID string) ([]models.Document, error) {
	var documents []models.Document
	err := db.Where("owner_id = ?", ownerID).
		Order("uploaded_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return documents, nil
}
