package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

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
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	err = testDB.AutoMigrate(&models.Profile{}, &models.Session{})
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	profile := models.Profile{
		ID:        uuid.New().String(),
		Role:      models.RoleExpert,
		FirstName: "Dana",
		LastName:  "Reed",
		Email:     "dana@test.com",
	}
	testDB.Create(&profile)

	session, err := services.CreateSession(testDB, profile.ID, "127.0.0.1", "test-agent")
	assert.NoError(t, err)

	handler := RequireAuth()(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	t.Run("ValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+session.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, handler(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, profile.ID, GetCurrentProfile(c).ID)
	})

	t.Run("MissingHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})

	t.Run("MalformedHeader", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Token abc123")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})

	t.Run("UnknownToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer not-a-real-token")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := handler(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	newContext := func(profile *models.Profile) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if profile != nil {
			c.Set(ContextKeyProfile, profile)
		}
		return c
	}

	handler := RequireRole(models.RoleStaff, models.RoleAdmin)(func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})

	t.Run("AllowedRole", func(t *testing.T) {
		c := newContext(&models.Profile{ID: uuid.New().String(), Role: models.RoleStaff})
		assert.NoError(t, handler(c))
	})

	t.Run("ForbiddenRole", func(t *testing.T) {
		c := newContext(&models.Profile{ID: uuid.New().String(), Role: models.RoleExpert})
		err := handler(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
	})

	t.Run("NotAuthenticated", func(t *testing.T) {
		c := newContext(nil)
		err := handler(c)
		assert.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, err.(*echo.HTTPError).Code)
	})
}

func TestGetCapabilities(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, models.Capabilities{}, GetCapabilities(c))

	c.Set(ContextKeyProfile, &models.Profile{Role: models.RoleAdmin})
	caps := GetCapabilities(c)
	assert.True(t, caps.DeleteEntities)
	assert.True(t, caps.ManageTaxonomy)
}
