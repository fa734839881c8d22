package handlers

import (
	"net/http"
	"time"

	"expert_panel_go/config"
	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// CalendarEventRequest is the body for create and update
type CalendarEventRequest struct {
	ExpertID  string    `json:"expert_id"`
	CaseID    *string   `json:"case_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Notes     string    `json:"notes"`
}

// UpdateCalendarEventRequest is the body for update. Notes and CaseID
// sit behind pointers so an omitted field is left alone rather than
// cleared.
type UpdateCalendarEventRequest struct {
	CaseID    *string   `json:"case_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Notes     *string   `json:"notes"`
}

// canActOnCalendar reports whether the principal may touch the
// expert's calendar: the owning expert, or staff/admin.
func canActOnCalendar(profile *models.Profile, expertID string) bool {
	return profile.ID == expertID || profile.IsInternal()
}

// CreateCalendarEvent creates an event on an expert's calendar. A
// non-owner creating the event notifies the owner.
func CreateCalendarEvent(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	req := new(CalendarEventRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	expertID := req.ExpertID
	if expertID == "" {
		expertID = currentProfile.ID
	}
	if !canActOnCalendar(currentProfile, expertID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Title is required",
		})
	}

	event := &models.CalendarEvent{
		ExpertID:  expertID,
		CaseID:    req.CaseID,
		Title:     req.Title,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Notes:     req.Notes,
	}
	if !event.IsValidInterval() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "End time must be after start time",
		})
	}

	var owner models.Profile
	if err := db.DB.First(&owner, "id = ? AND role = ?", expertID, models.RoleExpert).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Expert not found",
		})
	}

	if err := db.DB.Create(event).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create event",
		})
	}

	if currentProfile.ID != owner.ID {
		notifyCalendarOwner(&owner, currentProfile, event, "created")
	}

	return c.JSON(http.StatusCreated, event)
}

// GetCalendarEvents lists an expert's events in a time window
func GetCalendarEvents(c echo.Context) error {
	currentProfile := middleware.GetCurrentProfile(c)

	expertID := c.QueryParam("expert_id")
	if expertID == "" {
		expertID = currentProfile.ID
	}
	if !canActOnCalendar(currentProfile, expertID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	query := db.DB.Where("expert_id = ?", expertID)
	if from := c.QueryParam("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			query = query.Where("start_time >= ?", parsed)
		}
	}
	if to := c.QueryParam("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			query = query.Where("start_time < ?", parsed.Add(24*time.Hour))
		}
	}

	var events []models.CalendarEvent
	if err := query.Order("start_time ASC").Find(&events).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch events",
		})
	}

	return c.JSON(http.StatusOK, events)
}

// UpdateCalendarEvent mutates an event. A non-owner updating it
// notifies the owner.
func UpdateCalendarEvent(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	var event models.CalendarEvent
	if err := db.DB.Preload("Expert").First(&event, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Event not found",
		})
	}
	if !canActOnCalendar(currentProfile, event.ExpertID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	req := new(UpdateCalendarEventRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.Title != "" {
		event.Title = req.Title
	}
	if !req.StartTime.IsZero() {
		event.StartTime = req.StartTime
	}
	if !req.EndTime.IsZero() {
		event.EndTime = req.EndTime
	}
	if req.Notes != nil {
		event.Notes = *req.Notes
	}
	if req.CaseID != nil {
		// Empty string detaches the case link
		if *req.CaseID == "" {
			event.CaseID = nil
		} else {
			event.CaseID = req.CaseID
		}
	}

	if !event.IsValidInterval() {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "End time must be after start time",
		})
	}

	if err := db.DB.Save(&event).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update event",
		})
	}

	if currentProfile.ID != event.ExpertID {
		notifyCalendarOwner(&event.Expert, currentProfile, &event, "updated")
	}

	return c.JSON(http.StatusOK, event)
}

// DeleteCalendarEvent removes an event
func DeleteCalendarEvent(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	var event models.CalendarEvent
	if err := db.DB.First(&event, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Event not found",
		})
	}
	if !canActOnCalendar(currentProfile, event.ExpertID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	if err := db.DB.Delete(&event).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete event",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// DownloadCalendarEventICS returns the event as an ICS file
func DownloadCalendarEventICS(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)
	cfg := c.Get("config").(*config.Config)

	var event models.CalendarEvent
	if err := db.DB.Preload("Case").First(&event, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Event not found",
		})
	}
	if !canActOnCalendar(currentProfile, event.ExpertID) {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	ics, err := services.GenerateEventICS(&event, cfg.EmailFromName, cfg.EmailFrom)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to generate calendar file",
		})
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="event.ics"`)
	return c.Blob(http.StatusOK, "text/calendar", ics)
}

func notifyCalendarOwner(owner *models.Profile, actor *models.Profile, event *models.CalendarEvent, action string) {
	services.Dispatch(services.BuildCalendarEventEmail(owner.Email, services.CalendarEventEmailData{
		OwnerName:  owner.FullName(),
		ActorName:  actor.FullName(),
		Action:     action,
		EventTitle: event.Title,
		StartTime:  event.StartTime.Format("Jan 2, 2006 3:04 PM"),
		EndTime:    event.EndTime.Format("Jan 2, 2006 3:04 PM"),
		Notes:      event.Notes,
	}))
}
