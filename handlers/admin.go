package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

const maxNameLength = 100

// InviteExpertRequest is the body for POST /invite
type InviteExpertRequest struct {
	Email     string `json:"email" form:"email"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
}

// InviteMember invites a new expert onto the panel through the
// external auth provider, recording an audit row and creating the
// profile stub so later profile reads find name fields populated.
func InviteMember(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)
	cfg := c.Get("config").(*config.Config)

	req := new(InviteExpertRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "A valid email address is required",
		})
	}
	if len(req.FirstName) > maxNameLength || len(req.LastName) > maxNameLength {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Name fields are too long",
		})
	}

	redirectURL, err := inviteRedirectURL(cfg)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "No allowed redirect origin configured",
		})
	}

	if err := services.Auth.InviteByEmail(req.Email, redirectURL); err != nil {
		c.Logger().Errorf("Auth provider invite failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to send invitation",
		})
	}

	// Create the profile stub unless one already exists; pre-populate
	// name fields either way
	var profile models.Profile
	err = db.DB.First(&profile, "email = ?", req.Email).Error
	if err == nil {
		updates := map[string]interface{}{}
		if profile.FirstName == "" && req.FirstName != "" {
			updates["first_name"] = req.FirstName
		}
		if profile.LastName == "" && req.LastName != "" {
			updates["last_name"] = req.LastName
		}
		if len(updates) > 0 {
			db.DB.Model(&profile).Updates(updates)
		}
	} else {
		profile = models.Profile{
			Role:      models.RoleExpert,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
		}
		if err := db.DB.Create(&profile).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to create profile",
			})
		}
	}

	auditRow := &models.InviteLog{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		InvitedByID: currentProfile.ID,
		RedirectURL: redirectURL,
	}
	if err := db.DB.Create(auditRow).Error; err != nil {
		c.Logger().Errorf("Failed to record invite audit row for %s: %v", req.Email, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"profile": profile,
	})
}

// inviteRedirectURL picks the first configured origin and appends the
// onboarding path. Origins not on the allow-list never reach the auth
// provider.
func inviteRedirectURL(cfg *config.Config) (string, error) {
	for _, origin := range cfg.AllowedOrigins {
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			continue
		}
		return parsed.Scheme + "://" + parsed.Host + "/onboarding", nil
	}
	return "", errors.New("no allowed origins configured")
}

// DeleteExpert removes an expert from the panel via the external auth
// provider's admin API. Non-expert targets are refused; dependent
// rows go with the profile.
func DeleteExpert(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Expert id is required",
		})
	}

	var profile models.Profile
	if err := db.DB.First(&profile, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Expert not found",
		})
	}

	if profile.Role != models.RoleExpert {
		return echo.NewHTTPError(http.StatusForbidden, "Target is not an expert")
	}

	if err := services.Auth.DeleteUser(profile.ID); err != nil {
		c.Logger().Errorf("Auth provider delete failed for %s: %v", profile.ID, err)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete expert",
		})
	}

	// Revoke live sessions, cascade dependent rows, then the profile
	// itself. The profile is removed outright so the email can be
	// re-invited later without tripping its unique index.
	services.DeleteSessionsForProfile(db.DB, profile.ID)
	db.DB.Where("owner_id = ?", profile.ID).Delete(&models.Document{})
	db.DB.Where("expert_id = ?", profile.ID).Delete(&models.Invitation{})
	db.DB.Where("expert_id = ?", profile.ID).Delete(&models.CalendarEvent{})
	db.DB.Model(&profile).Association("Specialties").Clear()
	if err := db.DB.Unscoped().Delete(&profile).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete expert",
		})
	}

	return c.NoContent(http.StatusNoContent)
}
