package handlers

import (
	"net/http"
	"strings"

	"expert_panel_go/db"
	"expert_panel_go/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SpecialtyRequest is the body for specialty create/update
type SpecialtyRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// GetSpecialties returns the taxonomy as top-level categories with
// their subspecialties nested.
func GetSpecialties(c echo.Context) error {
	var specialties []models.Specialty
	if err := db.DB.Preload("Children").
		Where("parent_id IS NULL").
		Order("name ASC").
		Find(&specialties).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to fetch specialties",
		})
	}
	return c.JSON(http.StatusOK, specialties)
}

// CreateSpecialty adds a category or subspecialty. The taxonomy is two
// levels deep: a parent must itself be top-level.
func CreateSpecialty(c echo.Context) error {
	req := new(SpecialtyRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name is required"})
	}

	if req.ParentID != nil && *req.ParentID != "" {
		var parent models.Specialty
		if err := db.DB.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Parent specialty not found"})
		}
		if !parent.IsTopLevel() {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": "Subspecialties cannot have children",
			})
		}
	} else {
		req.ParentID = nil
	}

	var count int64
	query := db.DB.Model(&models.Specialty{}).Where("name = ?", req.Name)
	if req.ParentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *req.ParentID)
	}
	if err := query.Count(&count).Error; err == nil && count > 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "A specialty with this name already exists at this level",
		})
	}

	specialty := models.Specialty{
		Name:     req.Name,
		ParentID: req.ParentID,
	}
	if err := db.DB.Create(&specialty).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to create specialty",
		})
	}

	return c.JSON(http.StatusCreated, specialty)
}

// UpdateSpecialty renames a specialty. Moving nodes between levels is
// not supported; delete and recreate instead.
func UpdateSpecialty(c echo.Context) error {
	id := c.Param("id")

	var specialty models.Specialty
	if err := db.DB.First(&specialty, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Specialty not found"})
	}

	req := new(SpecialtyRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name is required"})
	}

	if err := db.DB.Model(&specialty).Update("name", req.Name).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to update specialty",
		})
	}

	return c.JSON(http.StatusOK, specialty)
}

// DeleteSpecialty removes a specialty, its subspecialties, and all
// profile/case associations pointing at them.
func DeleteSpecialty(c echo.Context) error {
	id := c.Param("id")

	var specialty models.Specialty
	if err := db.DB.First(&specialty, "id = ?", id).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Specialty not found"})
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		var children []models.Specialty
		if err := tx.Where("parent_id = ?", specialty.ID).Find(&children).Error; err != nil {
			return err
		}
		ids := []string{specialty.ID}
		for _, child := range children {
			ids = append(ids, child.ID)
		}

		if err := tx.Exec("DELETE FROM profile_specialties WHERE specialty_id IN ?", ids).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM case_specialties WHERE specialty_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&models.Specialty{}).Error
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to delete specialty",
		})
	}

	return c.NoContent(http.StatusNoContent)
}
