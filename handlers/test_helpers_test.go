package handlers

import (
	"io"
	"net/http/httptest"
	"testing"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dbName := "mem_" + uuid.New().String()
	testDB, err := gorm.Open(sqlite.Open("file:"+dbName+"?mode=memory&cache=shared&_busy_timeout=5000"), &gorm.Config{})
	assert.NoError(t, err)

	err = testDB.Exec("PRAGMA journal_mode=WAL;").Error
	assert.NoError(t, err)

	// Initialize Storage for tests if not already set
	if services.Storage == nil {
		services.Storage = services.NewLocalStorage("tmp/test_uploads")
	}

	err = testDB.AutoMigrate(
		&models.Profile{},
		&models.Session{},
		&models.Specialty{},
		&models.Case{},
		&models.Invitation{},
		&models.Conversation{},
		&models.Message{},
		&models.CalendarEvent{},
		&models.Document{},
		&models.InviteLog{},
		&models.Lead{},
	)
	assert.NoError(t, err)

	// Set global DB
	db.DB = testDB

	return testDB
}

// setupRecorder swaps the global mailer for a recorder and returns it
func setupRecorder() *services.RecorderSender {
	recorder := &services.RecorderSender{}
	services.Mail = recorder
	return recorder
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment:       "test",
		EmailTestMode:     true,
		AdminNotifyEmails: []string{"cases@expertpanel.example.com", "intake@expertpanel.example.com"},
		AllowedOrigins:    []string{"http://localhost:8080"},
	})

	return e, c, rec
}

func createTestProfile(t *testing.T, testDB *gorm.DB, role, firstName, lastName, email string) *models.Profile {
	profile := &models.Profile{
		Role:         role,
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		ReviewStatus: models.ReviewStatusApproved,
	}
	assert.NoError(t, testDB.Create(profile).Error)
	return profile
}

func createTestCase(t *testing.T, testDB *gorm.DB, title string) *models.Case {
	record := &models.Case{
		Title:       title,
		Description: "Test case description",
		ClientName:  "Test Client",
		Status:      models.CaseStatusOpen,
	}
	assert.NoError(t, services.CreateCase(testDB, record, nil))
	return record
}

func stringToPtr(s string) *string {
	return &s
}
