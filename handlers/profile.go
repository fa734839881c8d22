package handlers

import (
	"net/http"

	"expert_panel_go/db"
	"expert_panel_go/middleware"
	"expert_panel_go/models"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// GetExperts lists expert profiles for the internal team, optionally
// filtered by availability and review status.
func GetExperts(c echo.Context) error {
	query := db.DB.Where("role = ?", models.RoleExpert)

	if availability := c.QueryParam("availability"); availability != "" {
		if !models.IsValidAvailability(availability) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid availability filter",
			})
		}
		query = query.Where("availability = ?", availability)
	}
	if status := c.QueryParam("review_status"); status != "" {
		if !models.IsValidReviewStatus(status) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid review status filter",
			})
		}
		query = query.Where("review_status = ?", status)
	}

	var experts []models.Profile
	if err := query.Preload("Specialties").Order("last_name ASC").Find(&experts).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch experts",
		})
	}

	return c.JSON(http.StatusOK, experts)
}

// GetProfile returns a single profile. Experts may only read their
// own; staff and admin may read anyone's.
func GetProfile(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	if !currentProfile.IsInternal() && currentProfile.ID != id {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var profile models.Profile
	if err := db.DB.Preload("Specialties").First(&profile, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Profile not found",
		})
	}

	return c.JSON(http.StatusOK, profile)
}

// UpdateProfileRequest is the mutable subset of a profile. Role is
// deliberately absent: it is immutable through normal flows.
type UpdateProfileRequest struct {
	FirstName      *string `json:"first_name"`
	LastName       *string `json:"last_name"`
	Phone          *string `json:"phone"`
	Bio            *string `json:"bio"`
	RateReview     *int    `json:"rate_review"`
	RateDeposition *int    `json:"rate_deposition"`
	RateTrial      *int    `json:"rate_trial"`
	Availability   *string `json:"availability"`
	Tags           *string `json:"tags"`
	ReviewStatus   *string `json:"review_status"`
}

// UpdateProfile updates a profile. The owning expert may edit their
// own fields; staff/admin may also set the review status. Only admin
// may edit arbitrary profiles.
func UpdateProfile(c echo.Context) error {
	id := c.Param("id")
	currentProfile := middleware.GetCurrentProfile(c)

	isSelf := currentProfile.ID == id
	if !isSelf && !currentProfile.IsInternal() {
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	}

	var profile models.Profile
	if err := db.DB.First(&profile, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Profile not found",
		})
	}

	req := new(UpdateProfileRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Bio != nil {
		updates["bio"] = services.SanitizeText(*req.Bio)
	}
	if req.RateReview != nil {
		updates["rate_review"] = *req.RateReview
	}
	if req.RateDeposition != nil {
		updates["rate_deposition"] = *req.RateDeposition
	}
	if req.RateTrial != nil {
		updates["rate_trial"] = *req.RateTrial
	}
	if req.Availability != nil {
		if !models.IsValidAvailability(*req.Availability) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid availability",
			})
		}
		updates["availability"] = *req.Availability
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.ReviewStatus != nil {
		// Review status is an internal-team field
		if !currentProfile.IsInternal() {
			return echo.NewHTTPError(http.StatusForbidden, "Access denied")
		}
		if !models.IsValidReviewStatus(*req.ReviewStatus) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Invalid review status",
			})
		}
		updates["review_status"] = *req.ReviewStatus
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&profile).Updates(updates).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "Failed to update profile",
			})
		}
	}

	return c.JSON(http.StatusOK, profile)
}
