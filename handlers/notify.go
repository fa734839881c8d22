package handlers

import (
	"net/http"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// Thin role-gated wrappers around notification dispatch, for flows
// where the triggering mutation happened elsewhere (e.g. a bulk tool)
// and the notification is re-sent separately. The mutation itself was
// already authorized; these endpoints only re-check role and resolve
// recipients.

// NotifyAssignedExpertRequest is the body for POST /api/notify/assigned-expert
type NotifyAssignedExpertRequest struct {
	CaseID   string `json:"case_id"`
	ExpertID string `json:"expert_id"`
}

// NotifyAssignedExpert re-sends the assignment notification to an expert
func NotifyAssignedExpert(c echo.Context) error {
	req := new(NotifyAssignedExpertRequest)
	if err := c.Bind(req); err != nil || req.CaseID == "" || req.ExpertID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "case_id and expert_id are required",
		})
	}

	var record models.Case
	if err := db.DB.First(&record, "id = ?", req.CaseID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Case not found"})
	}
	var expert models.Profile
	if err := db.DB.First(&expert, "id = ?", req.ExpertID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Expert not found"})
	}

	services.Dispatch(services.BuildExpertAssignedEmail(expert.Email, services.ExpertAssignedEmailData{
		ExpertName: expert.FullName(),
		CaseTitle:  record.Title,
		CaseNumber: record.CaseNumber,
	}))

	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

// NotifyCaseManagerRequest is the body for POST /api/notify/case-manager
type NotifyCaseManagerRequest struct {
	CaseID string `json:"case_id"`
}

// NotifyCaseManager re-sends the manager-assignment notification
func NotifyCaseManager(c echo.Context) error {
	req := new(NotifyCaseManagerRequest)
	if err := c.Bind(req); err != nil || req.CaseID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "case_id is required",
		})
	}

	var record models.Case
	if err := db.DB.Preload("CaseManager").First(&record, "id = ?", req.CaseID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Case not found"})
	}
	if record.CaseManager == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Case has no manager",
		})
	}

	services.Dispatch(services.BuildManagerAssignedEmail(record.CaseManager.Email, services.ManagerAssignedEmailData{
		ManagerName: record.CaseManager.FullName(),
		CaseTitle:   record.Title,
		CaseNumber:  record.CaseNumber,
	}))

	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

// NotifyCaseResponseRequest is the body for POST /api/notify/case-response
type NotifyCaseResponseRequest struct {
	InvitationID string `json:"invitation_id"`
}

// NotifyCaseResponse re-sends an invitation-response summary to the
// internal distribution list.
func NotifyCaseResponse(c echo.Context) error {
	cfg := c.Get("config").(*config.Config)

	req := new(NotifyCaseResponseRequest)
	if err := c.Bind(req); err != nil || req.InvitationID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invitation_id is required",
		})
	}

	var invitation models.Invitation
	if err := db.DB.Preload("Case").Preload("Expert").
		First(&invitation, "id = ?", req.InvitationID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Invitation not found"})
	}
	if invitation.IsPending() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Expert has not responded yet",
		})
	}

	services.Dispatch(services.BuildInvitationResponseEmail(cfg.AdminNotifyEmails, services.InvitationResponseEmailData{
		ExpertName: invitation.Expert.FullName(),
		CaseTitle:  invitation.Case.Title,
		Action:     models.ActionLabel(invitation.Status),
		Note:       invitation.Note,
	}))

	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

// NotifyCalendarEventRequest is the body for POST /api/notify/calendar-event
type NotifyCalendarEventRequest struct {
	EventID string `json:"event_id"`
	Action  string `json:"action"`
}

// NotifyCalendarEvent re-sends a calendar-change notification to the
// calendar owner.
func NotifyCalendarEvent(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	req := new(NotifyCalendarEventRequest)
	if err := c.Bind(req); err != nil || req.EventID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "event_id is required",
		})
	}
	if req.Action != "created" && req.Action != "updated" {
		req.Action = "updated"
	}

	var event models.CalendarEvent
	if err := db.DB.Preload("Expert").First(&event, "id = ?", req.EventID).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Event not found"})
	}

	notifyCalendarOwner(&event.Expert, currentProfile, &event, req.Action)
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}
