package handlers

import (
	"errors"
	"net/http"

	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

const maxDocumentSize = 25 << 20 // 25 MB

// UploadDocument stores an expert document in the object store and
// records its metadata. Experts upload to their own profile;
// staff/admin may upload on an expert's behalf.
func UploadDocument(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	ownerID := c.FormValue("owner_id")
	if ownerID == "" {
		ownerID = currentProfile.ID
	}
	if ownerID != currentProfile.ID && !currentProfile.IsInternal() {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	docType := c.FormValue("type")
	if docType == "" {
		docType = models.DocumentTypeOther
	}
	if !models.IsValidDocumentType(docType) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid document type",
		})
	}

	var owner models.Profile
	if err := db.DB.First(&owner, "id = ? AND role = ?", ownerID, models.RoleExpert).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Expert not found",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "A file is required",
		})
	}
	if file.Size > maxDocumentSize {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "File exceeds the 25MB limit",
		})
	}

	key := services.GenerateDocumentKey(owner.ID, file.Filename)
	result, err := services.Storage.Upload(c.Request().Context(), file, key)
	if err != nil {
		c.Logger().Errorf("Failed to upload document for %s: %v", owner.ID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to store file",
		})
	}

	doc := &models.Document{
		OwnerID:    owner.ID,
		Type:       docType,
		FileName:   file.Filename,
		StorageKey: result.Key,
		FileSize:   result.FileSize,
		MimeType:   result.MimeType,
	}
	if err := services.CreateDocument(db.DB, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to record document",
		})
	}

	return c.JSON(http.StatusCreated, doc)
}

// GetDocuments lists an expert's documents
func GetDocuments(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	ownerID := c.QueryParam("owner_id")
	if ownerID == "" {
		ownerID = currentProfile.ID
	}
	if ownerID != currentProfile.ID && !currentProfile.IsInternal() {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	documents, err := services.ListDocuments(db.DB, ownerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch documents",
		})
	}

	return c.JSON(http.StatusOK, documents)
}

// DownloadDocument issues a short-lived signed URL for a storage key.
// The raw key is validated against traversal segments before any
// storage or database call; the caller must own the key's leading
// segment or be admin.
func DownloadDocument(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	key := c.QueryParam("key")
	if err := services.ValidateStorageKey(key); err != nil {
		if errors.Is(err, services.ErrUnsafeStorageKey) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid file path",
			})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "A file key is required",
		})
	}

	owner := services.KeyOwner(key)
	if owner != currentProfile.ID && currentProfile.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var doc models.Document
	if err := db.DB.First(&doc, "storage_key = ?", key).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Document not found",
		})
	}

	url, err := services.Storage.GetSignedURL(c.Request().Context(), key, services.SignedURLTTL)
	if err != nil {
		c.Logger().Errorf("Failed to sign URL for %s: %v", key, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to generate download link",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// DeleteDocument removes a document's metadata and stored file
func DeleteDocument(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	var doc models.Document
	if err := db.DB.First(&doc, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Document not found",
		})
	}
	if doc.OwnerID != currentProfile.ID && currentProfile.Role != models.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	if err := services.Storage.Delete(c.Request().Context(), doc.StorageKey); err != nil {
		c.Logger().Errorf("Failed to delete stored file %s: %v", doc.StorageKey, err)
	}
	if err := db.DB.Delete(&doc).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete document",
		})
	}

	return c.NoContent(http.StatusNoContent)
}
