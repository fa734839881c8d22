package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document types
const (
	DocumentTypeCV            = "cv"
	DocumentTypeLicense       = "license"
	DocumentTypeCertification = "certification"
	DocumentTypeSampleReport  = "sample_report"
	DocumentTypeOther         = "other"
)

// Document is metadata only; binary content lives in the object store
// under StorageKey, whose leading path segment is the owner's ID.
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OwnerID string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Type    string `gorm:"not null;default:other" json:"type"`

	FileName   string    `gorm:"not null" json:"file_name"`
	StorageKey string    `gorm:"not null;uniqueIndex" json:"storage_key"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`

	Owner Profile `gorm:"foreignKey:OwnerID" json:"-"`
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.UploadedAt.IsZero() {
		d.UploadedAt = time.Now()
	}
	return nil
}

func (Document) TableName() string {
	return "documents"
}

// IsValidDocumentType checks if the document type is valid
func IsValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeCV, DocumentTypeLicense, DocumentTypeCertification, DocumentTypeSampleReport, DocumentTypeOther:
		return true
	}
	return false
}
