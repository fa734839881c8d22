package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestInviteExpertToCase(t *testing.T) {
	database := setupTestDB(t)
	recorder := setupRecorder()

	expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana4@test.com")
	record := createTestCase(t, database, "Invitation case")

	invite := func() int {
		body := `{"expert_id": "` + expert.ID + `"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+record.ID+"/invitations", strings.NewReader(body))
		c.Request().Header.Set("Content-Type", "application/json")
		c.SetParamNames("id")
		c.SetParamValues(record.ID)
		assert.NoError(t, InviteExpertToCase(c))
		return rec.Code
	}

	t.Run("First invite notifies the expert", func(t *testing.T) {
		code := invite()
		assert.Equal(t, http.StatusCreated, code)

		sent := recorder.Sent()
		assert.Len(t, sent, 1)
		assert.Equal(t, []string{"dana4@test.com"}, sent[0].To)
	})

	t.Run("Duplicate invite rejected without a second email", func(t *testing.T) {
		code := invite()
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Len(t, recorder.Sent(), 1)
	})

	t.Run("Unknown expert", func(t *testing.T) {
		body := `{"expert_id": "missing"}`
		_, c, rec := setupEcho(http.MethodPost, "/api/cases/"+record.ID+"/invitations", strings.NewReader(body))
		c.Request().Header.Set("Content-Type", "application/json")
		c.SetParamNames("id")
		c.SetParamValues(record.ID)

		assert.NoError(t, InviteExpertToCase(c))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRespondToInvitationHandler(t *testing.T) {
	database := setupTestDB(t)
	recorder := setupRecorder()

	expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana5@test.com")
	other := createTestProfile(t, database, models.RoleExpert, "Noa", "Lane", "noa5@test.com")
	record := createTestCase(t, database, "Response case")

	invitation, err := services.InviteExpert(database, record.ID, expert.ID)
	assert.NoError(t, err)

	respond := func(profile *models.Profile, body string) (echo.Context, *json.RawMessage, int, error) {
		_, c, rec := setupEcho(http.MethodPut, "/api/invitations/"+invitation.ID+"/respond", strings.NewReader(body))
		c.Request().Header.Set("Content-Type", "application/json")
		c.SetParamNames("id")
		c.SetParamValues(invitation.ID)
		c.Set("profile", profile)
		err := RespondToInvitation(c)
		raw := json.RawMessage(rec.Body.Bytes())
		return c, &raw, rec.Code, err
	}

	t.Run("Non-invitee denied", func(t *testing.T) {
		_, _, _, err := respond(other, `{"status": "accepted"}`)
		assert.Error(t, err)
		assert.Equal(t, http.StatusForbidden, err.(*echo.HTTPError).Code)
		assert.Empty(t, recorder.Sent())
	})

	t.Run("Unknown status rejected", func(t *testing.T) {
		_, _, code, err := respond(expert, `{"status": "maybe"}`)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Info request notifies the distribution list", func(t *testing.T) {
		_, raw, code, err := respond(expert, `{"status": "info_requested", "note": "Need the <b>scene</b> photos"}`)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)

		var updated models.Invitation
		assert.NoError(t, json.Unmarshal(*raw, &updated))
		assert.Equal(t, models.InvitationStatusInfoRequested, updated.Status)
		assert.NotNil(t, updated.RespondedAt)
		// Markup stripped on the way in
		assert.Equal(t, "Need the scene photos", updated.Note)

		sent := recorder.Sent()
		assert.Len(t, sent, 1)
		assert.Equal(t, []string{"cases@expertpanel.example.com", "intake@expertpanel.example.com"}, sent[0].To)
		assert.Contains(t, sent[0].Subject, "Requested More Info")
	})

	t.Run("Invalid transition rejected", func(t *testing.T) {
		_, _, code, err := respond(expert, `{"status": "accepted"}`)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, code)

		// info_requested is unreachable from accepted
		_, _, code, err = respond(expert, `{"status": "info_requested"}`)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, code)
	})
}

func TestGetMyInvitations(t *testing.T) {
	database := setupTestDB(t)

	expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana6@test.com")
	record := createTestCase(t, database, "Listing case")
	_, err := services.InviteExpert(database, record.ID, expert.ID)
	assert.NoError(t, err)

	_, c, rec := setupEcho(http.MethodGet, "/api/my-invitations", nil)
	c.Set("profile", expert)

	assert.NoError(t, GetMyInvitations(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var invitations []models.Invitation
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &invitations))
	assert.Len(t, invitations, 1)
	assert.Equal(t, "Listing case", invitations[0].Case.Title)
}
