package handlers

import (
	"net/http"
	"strconv"

	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// CreateCaseRequest is the body for POST /api/cases
type CreateCaseRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ClientName    string   `json:"client_name"`
	CaseType      string   `json:"case_type"`
	Jurisdiction  string   `json:"jurisdiction"`
	CaseManagerID *string  `json:"case_manager_id"`
	SpecialtyIDs  []string `json:"specialty_ids"`
	SpecialtyTags string   `json:"specialty_tags"`
	Notes         string   `json:"notes"`
}

// CreateCase creates a case with its specialty links. When a manager
// is set at creation the manager notification fires; its failure does
// not roll back the case.
func CreateCase(c echo.Context) error {
	req := new(CreateCaseRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	if req.Title == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Title and description are required",
		})
	}

	record := &models.Case{
		Title:         req.Title,
		Description:   req.Description,
		ClientName:    req.ClientName,
		CaseType:      req.CaseType,
		Jurisdiction:  req.Jurisdiction,
		SpecialtyTags: req.SpecialtyTags,
		Notes:         req.Notes,
	}

	var manager *models.Profile
	if req.CaseManagerID != nil && *req.CaseManagerID != "" {
		var m models.Profile
		if err := db.DB.First(&m, "id = ? AND role IN (?, ?)", *req.CaseManagerID, models.RoleStaff, models.RoleAdmin).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{
				"error": "Case manager not found",
			})
		}
		manager = &m
		record.CaseManagerID = &m.ID
	}

	if err := services.CreateCase(db.DB, record, req.SpecialtyIDs); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create case",
		})
	}

	if manager != nil {
		services.Dispatch(services.BuildManagerAssignedEmail(manager.Email, services.ManagerAssignedEmailData{
			ManagerName: manager.FullName(),
			CaseTitle:   record.Title,
			CaseNumber:  record.CaseNumber,
		}))
	}

	return c.JSON(http.StatusCreated, record)
}

// GetCases returns cases with filtering and pagination for the
// internal team.
func GetCases(c echo.Context) error {
	status := c.QueryParam("status")

	page := 1
	limit := 20
	if pageParam := c.QueryParam("page"); pageParam != "" {
		if p, err := strconv.Atoi(pageParam); err == nil && p > 0 {
			page = p
		}
	}
	if limitParam := c.QueryParam("limit"); limitParam != "" {
		if l, err := strconv.Atoi(limitParam); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	query := db.DB.Model(&models.Case{})
	if status != "" && models.IsValidCaseStatus(status) {
		query = query.Where("status = ?", status)
	}
	if keyword := c.QueryParam("keyword"); keyword != "" {
		pattern := "%" + keyword + "%"
		query = query.Where(
			db.DB.Where("case_number LIKE ?", pattern).
				Or("title LIKE ?", pattern).
				Or("client_name LIKE ?", pattern),
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to count cases")
	}

	offset := (page - 1) * limit
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	var cases []models.Case
	if err := query.
		Preload("CaseManager").
		Preload("AssignedExpert").
		Preload("Specialties").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&cases).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch cases")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data": cases,
		"pagination": map[string]interface{}{
			"page":        page,
			"limit":       limit,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}

// GetCase returns a single case with relationships. Experts see only
// cases they have been invited to or assigned.
func GetCase(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	var record models.Case
	if err := db.DB.
		Preload("CaseManager").
		Preload("AssignedExpert").
		Preload("Specialties").
		First(&record, "id = ?", id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Case not found")
	}

	if currentProfile.IsExpert() {
		assigned := record.AssignedExpertID != nil && *record.AssignedExpertID == currentProfile.ID
		var invited int64
		db.DB.Model(&models.Invitation{}).
			Where("case_id = ? AND expert_id = ?", id, currentProfile.ID).
			Count(&invited)
		if !assigned && invited == 0 {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		}
	}

	return c.JSON(http.StatusOK, record)
}

// UpdateCaseStatusRequest is the body for PUT /api/cases/:id/status
type UpdateCaseStatusRequest struct {
	Status string `json:"status"`
}

// UpdateCaseStatus toggles a case between open and closed
func UpdateCaseStatus(c echo.Context) error {
	id := c.Param("id")

	req := new(UpdateCaseStatusRequest)
	if err := c.Bind(req); err != nil || !models.IsValidCaseStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Status must be open or closed",
		})
	}

	if err := services.UpdateCaseStatus(db.DB, id, req.Status); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

// AssignManagerRequest is the body for PUT /api/cases/:id/manager
type AssignManagerRequest struct {
	ManagerID *string `json:"manager_id"`
}

// AssignManager sets or clears the case manager. Setting notifies the
// manager; clearing does not.
func AssignManager(c echo.Context) error {
	id := c.Param("id")

	req := new(AssignManagerRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	record, manager, err := services.AssignManager(db.DB, id, req.ManagerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case or manager not found",
		})
	}

	if manager != nil {
		services.Dispatch(services.BuildManagerAssignedEmail(manager.Email, services.ManagerAssignedEmailData{
			ManagerName: manager.FullName(),
			CaseTitle:   record.Title,
			CaseNumber:  record.CaseNumber,
		}))
	}

	return c.JSON(http.StatusOK, record)
}

// AssignExpertRequest is the body for PUT /api/cases/:id/expert
type AssignExpertRequest struct {
	ExpertID string `json:"expert_id"`
}

// AssignExpert fills the single assigned-expert slot and notifies the
// expert. The expert's invitation row is untouched; the invited-
// experts view simply stops listing them.
func AssignExpert(c echo.Context) error {
	id := c.Param("id")

	req := new(AssignExpertRequest)
	if err := c.Bind(req); err != nil || req.ExpertID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "expert_id is required",
		})
	}

	record, expert, err := services.AssignExpert(db.DB, id, req.ExpertID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case or expert not found",
		})
	}

	services.Dispatch(services.BuildExpertAssignedEmail(expert.Email, services.ExpertAssignedEmailData{
		ExpertName: expert.FullName(),
		CaseTitle:  record.Title,
		CaseNumber: record.CaseNumber,
	}))

	return c.JSON(http.StatusOK, record)
}

// RemoveAssignedExpert clears the assigned-expert slot. No
// notification is sent, asymmetric with assignment.
func RemoveAssignedExpert(c echo.Context) error {
	id := c.Param("id")

	if err := services.RemoveAssignedExpert(db.DB, id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// DeleteCase removes a case, cascading its invitations
func DeleteCase(c echo.Context) error {
	id := c.Param("id")

	if err := services.DeleteCase(db.DB, id); err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	return c.NoContent(http.StatusNoContent)
}

// GetInvitedExperts returns the derived "invited, not yet assigned"
// view for a case.
func GetInvitedExperts(c echo.Context) error {
	id := c.Param("id")

	invitations, err := services.InvitedExperts(db.DB, id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Case not found",
		})
	}

	return c.JSON(http.StatusOK, invitations)
}
