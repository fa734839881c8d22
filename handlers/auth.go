package handlers

import (
	"net/http"

	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// ExchangeTokenRequest carries the external auth provider token
type ExchangeTokenRequest struct {
	Token string `json:"token" form:"token"`
}

// ExchangeToken verifies a provider-issued token and opens a portal
// session for the matching profile.
func ExchangeToken(c echo.Context) error {
	req := new(ExchangeTokenRequest)
	if err := c.Bind(req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Token is required",
		})
	}

	email, err := services.Auth.ResolveEmail(req.Token)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
	}

	var profile models.Profile
	if err := db.DB.First(&profile, "email = ?", email).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "No profile for this account",
		})
	}

	session, err := services.CreateSession(db.DB, profile.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create session",
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"profile":    profile,
	})
}

// Logout deletes the current session
func Logout(c echo.Context) error {
	session, ok := c.Get(middleware.ContextKeySession).(*models.Session)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	if err := services.DeleteSession(db.DB, session.Token); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to log out",
		})
	}
	return c.NoContent(http.StatusNoContent)
}

// GetCurrentProfile returns the authenticated profile with its
// resolved capability set.
func GetCurrentProfile(c echo.Context) error {
	profile := middleware.GetCurrentProfile(c)
	if profile == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"profile":      profile,
		"capabilities": profile.Capabilities(),
	})
}
