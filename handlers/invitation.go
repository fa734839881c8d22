package handlers

import (
	"errors"
	"net/http"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// InviteExpertToCaseRequest is the body for POST /api/cases/:id/invitations
type InviteExpertToCaseRequest struct {
	ExpertID string `json:"expert_id"`
}

// InviteExpertToCase creates a pending invitation and notifies the
// expert. A second invite for the same (case, expert) pair is
// rejected.
func InviteExpertToCase(c echo.Context) error {
	caseID := c.Param("id")

	req := new(InviteExpertToCaseRequest)
	if err := c.Bind(req); err != nil || req.ExpertID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "expert_id is required",
		})
	}

	invitation, err := services.InviteExpert(db.DB, caseID, req.ExpertID)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateInvitation) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Expert already invited to this case",
			})
		}
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case or expert not found",
		})
	}

	services.Dispatch(services.BuildExpertInvitedEmail(invitation.Expert.Email, services.ExpertInvitedEmailData{
		ExpertName: invitation.Expert.FullName(),
		CaseTitle:  invitation.Case.Title,
		CaseNumber: invitation.Case.CaseNumber,
	}))

	return c.JSON(http.StatusCreated, invitation)
}

// GetMyInvitations lists the authenticated expert's invitations
func GetMyInvitations(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	invitations, err := services.InvitationsForExpert(db.DB, currentProfile.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch invitations",
		})
	}

	return c.JSON(http.StatusOK, invitations)
}

// RespondToInvitationRequest is the body for POST /api/invitations/:id/respond
type RespondToInvitationRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// RespondToInvitation applies the expert's status transition and
// notifies the internal distribution list. The notification is
// best-effort; the transition stands either way.
func RespondToInvitation(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)
	cfg := c.Get("config").(*config.Config)

	req := new(RespondToInvitationRequest)
	if err := c.Bind(req); err != nil || !models.IsValidInvitationStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "A valid status is required",
		})
	}

	invitation, err := services.RespondToInvitation(db.DB, id, currentProfile.ID, req.Status, services.SanitizeText(req.Note))
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Transition not allowed",
			})
		}
		if errors.Is(err, services.ErrNotInvitee) {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		}
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Invitation not found",
		})
	}

	services.Dispatch(services.BuildInvitationResponseEmail(cfg.AdminNotifyEmails, services.InvitationResponseEmailData{
		ExpertName: invitation.Expert.FullName(),
		CaseTitle:  invitation.Case.Title,
		Action:     models.ActionLabel(invitation.Status),
		Note:       invitation.Note,
	}))

	return c.JSON(http.StatusOK, invitation)
}
