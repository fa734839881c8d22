package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/stretchr/testify/assert"
)

func TestExchangeToken(t *testing.T) {
	database := setupTestDB(t)
	fake := setupFakeAuth()

	profile := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana17@test.com")

	exchange := func(body string) (int, string) {
		_, c, rec := setupEcho(http.MethodPost, "/auth/token", strings.NewReader(body))
		c.Request().Header.Set("Content-Type", "application/json")
		assert.NoError(t, ExchangeToken(c))
		return rec.Code, rec.Body.String()
	}

	t.Run("Valid token opens a session", func(t *testing.T) {
		fake.emailFor = "dana17@test.com"
		code, body := exchange(`{"token": "provider-token"}`)
		assert.Equal(t, http.StatusCreated, code)

		var response struct {
			Token   string         `json:"token"`
			Profile models.Profile `json:"profile"`
		}
		assert.NoError(t, json.Unmarshal([]byte(body), &response))
		assert.NotEmpty(t, response.Token)
		assert.Equal(t, profile.ID, response.Profile.ID)

		session, err := services.ValidateSession(database, response.Token)
		assert.NoError(t, err)
		assert.Equal(t, profile.ID, session.ProfileID)
	})

	t.Run("Rejected provider token", func(t *testing.T) {
		fake.emailFor = ""
		code, _ := exchange(`{"token": "bad"}`)
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("No profile for the email", func(t *testing.T) {
		fake.emailFor = "stranger@test.com"
		code, _ := exchange(`{"token": "provider-token"}`)
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("Missing token", func(t *testing.T) {
		code, _ := exchange(`{}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestLogout(t *testing.T) {
	database := setupTestDB(t)

	profile := createTestProfile(t, database, models.RoleStaff, "Max", "Hart", "max17@test.com")
	session, err := services.CreateSession(database, profile.ID, "", "")
	assert.NoError(t, err)

	_, c, rec := setupEcho(http.MethodPost, "/logout", nil)
	c.Set(middleware.ContextKeySession, session)

	assert.NoError(t, Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	_, err = services.ValidateSession(database, session.Token)
	assert.Error(t, err)
}

func TestGetCurrentProfileHandler(t *testing.T) {
	database := setupTestDB(t)
	admin := createTestProfile(t, database, models.RoleAdmin, "Ada", "Root", "ada17@test.com")

	_, c, rec := setupEcho(http.MethodGet, "/api/me", nil)
	c.Set("profile", admin)

	assert.NoError(t, GetCurrentProfile(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response struct {
		Capabilities models.Capabilities `json:"capabilities"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.True(t, response.Capabilities.DeleteEntities)
	assert.True(t, response.Capabilities.ManageTaxonomy)
}
