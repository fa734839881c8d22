package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"expert_panel_go/models"

	"github.com/stretchr/testify/assert"
)

func createSpecialtyVia(t *testing.T, body string) (int, models.Specialty) {
	_, c, rec := setupEcho(http.MethodPost, "/api/specialties", strings.NewReader(body))
	c.Request().Header.Set("Content-Type", "application/json")
	assert.NoError(t, CreateSpecialty(c))

	var created models.Specialty
	if rec.Code == http.StatusCreated {
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	}
	return rec.Code, created
}

func TestSpecialtyTaxonomy(t *testing.T) {
	database := setupTestDB(t)

	code, medicine := createSpecialtyVia(t, `{"name": "Medicine"}`)
	assert.Equal(t, http.StatusCreated, code)
	assert.Nil(t, medicine.ParentID)

	code, ortho := createSpecialtyVia(t, `{"name": "Orthopedics", "parent_id": "`+medicine.ID+`"}`)
	assert.Equal(t, http.StatusCreated, code)

	t.Run("Third level rejected", func(t *testing.T) {
		code, _ := createSpecialtyVia(t, `{"name": "Spine", "parent_id": "`+ortho.ID+`"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Duplicate sibling name rejected", func(t *testing.T) {
		code, _ := createSpecialtyVia(t, `{"name": "Orthopedics", "parent_id": "`+medicine.ID+`"}`)
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("Same name allowed under a different parent", func(t *testing.T) {
		code, _ := createSpecialtyVia(t, `{"name": "Orthopedics"}`)
		assert.Equal(t, http.StatusCreated, code)
	})

	t.Run("Listing nests subspecialties", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/public/specialties", nil)
		assert.NoError(t, GetSpecialties(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var tree []models.Specialty
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tree))
		assert.Len(t, tree, 2) // Medicine + top-level Orthopedics

		for _, node := range tree {
			if node.ID == medicine.ID {
				assert.Len(t, node.Children, 1)
			}
		}
	})

	t.Run("Rename", func(t *testing.T) {
		body := `{"name": "Orthopedic Surgery"}`
		_, c, rec := setupEcho(http.MethodPut, "/api/specialties/"+ortho.ID, strings.NewReader(body))
		c.Request().Header.Set("Content-Type", "application/json")
		c.SetParamNames("id")
		c.SetParamValues(ortho.ID)

		assert.NoError(t, UpdateSpecialty(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var reloaded models.Specialty
		assert.NoError(t, database.First(&reloaded, "id = ?", ortho.ID).Error)
		assert.Equal(t, "Orthopedic Surgery", reloaded.Name)
	})

	t.Run("Delete removes children and associations", func(t *testing.T) {
		expert := createTestProfile(t, database, models.RoleExpert, "Dana", "Reed", "dana18@test.com")
		assert.NoError(t, database.Model(expert).Association("Specialties").Append(&models.Specialty{ID: ortho.ID}))

		_, c, rec := setupEcho(http.MethodDelete, "/api/specialties/"+medicine.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(medicine.ID)

		assert.NoError(t, DeleteSpecialty(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		var remaining int64
		database.Model(&models.Specialty{}).Count(&remaining)
		assert.EqualValues(t, 1, remaining) // only the top-level Orthopedics

		var joins int64
		database.Table("profile_specialties").Where("profile_id = ?", expert.ID).Count(&joins)
		assert.Zero(t, joins)
	})
}
