package middleware

import (
	"net/http"
	"strings"

	"expert_panel_go/db"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

const (
	// ContextKeyProfile is the context key for the authenticated profile
	ContextKeyProfile = "profile"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
)

// RequireAuth resolves the bearer session token to a profile and
// stores it in the request context. 401 on missing or invalid token.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			session, err := services.ValidateSession(db.DB, token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired session")
			}

			c.Set(ContextKeyProfile, &session.Profile)
			c.Set(ContextKeySession, session)

			return next(c)
		}
	}
}

// RequireRole is middleware that requires specific roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			profile := GetCurrentProfile(c)
			if profile == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			for _, role := range roles {
				if profile.Role == role {
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// GetCurrentProfile retrieves the authenticated profile from context
func GetCurrentProfile(c echo.Context) *models.Profile {
	profile, ok := c.Get(ContextKeyProfile).(*models.Profile)
	if !ok {
		return nil
	}
	return profile
}

// GetCapabilities resolves the permission set for the authenticated
// profile. Empty set when unauthenticated.
func GetCapabilities(c echo.Context) models.Capabilities {
	profile := GetCurrentProfile(c)
	if profile == nil {
		return models.Capabilities{}
	}
	return profile.Capabilities()
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
