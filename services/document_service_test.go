package services

import (
	"testing"

	"expert_panel_go/models"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupDocumentTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(&models.Profile{}, &models.Document{})
	return db
}

func TestValidateStorageKey(t *testing.T) {
	valid := []string{
		"owner-1/documents/report.pdf",
		"owner-1/documents/a_b-c.1.pdf",
		"single-segment",
	}
	for _, key := range valid {
		assert.NoError(t, ValidateStorageKey(key), key)
	}

	invalid := []string{
		"",
		"/owner-1/documents/report.pdf",
		"owner-1/../other/report.pdf",
		"../etc/passwd",
		"owner-1/./report.pdf",
		"owner-1//report.pdf",
		"owner-1/documents/",
		`owner-1\documents\report.pdf`,
		".",
		"..",
	}
	for _, key := range invalid {
		assert.ErrorIs(t, ValidateStorageKey(key), ErrUnsafeStorageKey, key)
	}
}

func TestKeyOwner(t *testing.T) {
	assert.Equal(t, "owner-1", KeyOwner("owner-1/documents/report.pdf"))
	assert.Equal(t, "", KeyOwner("no-slash"))
	assert.Equal(t, "", KeyOwner("/leading"))
}

func TestCreateDocument(t *testing.T) {
	db := setupDocumentTestDB()

	t.Run("Valid document", func(t *testing.T) {
		doc := &models.Document{
			OwnerID:    "owner-1",
			Type:       models.DocumentTypeCV,
			FileName:   "cv.pdf",
			StorageKey: "owner-1/documents/cv.pdf",
			MimeType:   "application/pdf",
		}
		assert.NoError(t, CreateDocument(db, doc))
		assert.NotEmpty(t, doc.ID)
	})

	t.Run("Unknown type rejected", func(t *testing.T) {
		doc := &models.Document{
			OwnerID:    "owner-1",
			Type:       "screenplay",
			FileName:   "x.pdf",
			StorageKey: "owner-1/documents/x.pdf",
		}
		assert.Error(t, CreateDocument(db, doc))
	})

	t.Run("Traversal key rejected", func(t *testing.T) {
		doc := &models.Document{
			OwnerID:    "owner-1",
			Type:       models.DocumentTypeOther,
			FileName:   "x.pdf",
			StorageKey: "owner-1/../x.pdf",
		}
		assert.ErrorIs(t, CreateDocument(db, doc), ErrUnsafeStorageKey)
	})
}

func TestListDocuments(t *testing.T) {
	db := setupDocumentTestDB()

	for _, key := range []string{"a.pdf", "b.pdf"} {
		assert.NoError(t, CreateDocument(db, &models.Document{
			OwnerID:    "owner-1",
			Type:       models.DocumentTypeLicense,
			FileName:   key,
			StorageKey: "owner-1/documents/" + key,
		}))
	}
	assert.NoError(t, CreateDocument(db, &models.Document{
		OwnerID:    "owner-2",
		Type:       models.DocumentTypeLicense,
		FileName:   "other.pdf",
		StorageKey: "owner-2/documents/other.pdf",
	}))

	docs, err := ListDocuments(db, "owner-1")
	assert.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestGenerateDocumentKey(t *testing.T) {
	key := GenerateDocumentKey("owner-1", "résumé v2.pdf")
	assert.NoError(t, ValidateStorageKey(key))
	assert.Equal(t, "owner-1", KeyOwner(key))
	assert.Contains(t, key, "/documents/")
	assert.Contains(t, key, ".pdf")
}
