package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func multipartUpload(t *testing.T, fields map[string]string, filename, content string) (*bytes.Buffer, string) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		assert.NoError(t, writer.WriteField(key, value))
	}
	part, err := writer.CreateFormFile("file", filename)
	assert.NoError(t, err)
	_, err = part.Write([]byte(content))
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func TestUploadDocument(t *testing.T) {
	database := setupTestDB(t)

	expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana9@test.com")
	staff := createTestProfile(t, database, models.RoleStaff, "Max", "Hart", "max9@test.com")

	upload := func(actor *models.Profile, fields map[string]string) (*httptest.ResponseRecorder, error) {
		buf, contentType := multipartUpload(t, fields, "cv.pdf", "pdf bytes")
		_, c, rec := setupEcho(http.MethodPost, "/api/documents", buf)
		c.Request().Header.Set("Content-Type", contentType)
		c.Set("profile", actor)
		return rec, UploadDocument(c)
	}

	t.Run("Expert uploads to own profile", func(t *testing.T) {
		rec, err := upload(expert, map[string]string{"type": models.DocumentTypeCV})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)

		var doc models.Document
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, expert.ID, doc.OwnerID)
		assert.Equal(t, expert.ID, services.KeyOwner(doc.StorageKey))
	})

	t.Run("Staff uploads on the expert's behalf", func(t *testing.T) {
		rec, err := upload(staff, map[string]string{"type": models.DocumentTypeLicense, "owner_id": expert.ID})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("Expert cannot upload for someone else", func(t *testing.T) {
		other := createTestProfile(t, database, models.RoleExpert, "Noa", "Lane", "noa9@test.com")
		_, err := upload(other, map[string]string{"owner_id": expert.ID})
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})

	t.Run("Unknown type rejected", func(t *testing.T) {
		rec, err := upload(expert, map[string]string{"type": "screenplay"})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDownloadDocument(t *testing.T) {
	database := setupTestDB(t)

	expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana10@test.com")
	other := createTestProfile(t, database, models.RoleExpert, "Noa", "Lane", "noa10@test.com")
	admin := createTestProfile(t, database, models.RoleAdmin, "Ada", "Root", "ada10@test.com")

	key := expert.ID + "/documents/report.pdf"
	assert.NoError(t, services.CreateDocument(database, &models.Document{
		OwnerID:    expert.ID,
		Type:       models.DocumentTypeSampleReport,
		FileName:   "report.pdf",
		StorageKey: key,
	}))

	download := func(actor *models.Profile, key string) (*httptest.ResponseRecorder, error) {
		_, c, rec := setupEcho(http.MethodGet, "/api/documents/download", nil)
		c.QueryParams().Set("key", key)
		c.Set("profile", actor)
		return rec, DownloadDocument(c)
	}

	t.Run("Traversal key rejected before any lookup", func(t *testing.T) {
		rec, err := download(admin, "../../etc/passwd")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Non-owner expert denied", func(t *testing.T) {
		_, err := download(other, key)
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})

	t.Run("Owner receives a link", func(t *testing.T) {
		rec, err := download(expert, key)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)

		var response map[string]string
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.NotEmpty(t, response["url"])
	})

	t.Run("Admin may fetch any key", func(t *testing.T) {
		rec, err := download(admin, key)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Unknown key is a 404 for its owner", func(t *testing.T) {
		rec, err := download(expert, expert.ID+"/documents/gone.pdf")
		assert.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestDeleteDocument(t *testing.T) {
	database := setupTestDB(t)

	expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana11@test.com")
	other := createTestProfile(t, database, models.RoleExpert, "Noa", "Lane", "noa11@test.com")

	doc := &models.Document{
		OwnerID:    expert.ID,
		Type:       models.DocumentTypeOther,
		FileName:   "notes.pdf",
		StorageKey: expert.ID + "/documents/notes.pdf",
	}
	assert.NoError(t, services.CreateDocument(database, doc))

	t.Run("Non-owner denied", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodDelete, "/api/documents/"+doc.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		c.Set("profile", other)

		err := DeleteDocument(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})

	t.Run("Owner deletes", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/api/documents/"+doc.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(doc.ID)
		c.Set("profile", expert)

		assert.NoError(t, DeleteDocument(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var count int64
		database.Model(&models.Document{}).Where("id = ?", doc.ID).Count(&count)
		assert.Zero(t, count)
	})
}
