package handlers

import (
	"fmt"
	"net/http"
	"time"

	"expert_panel_go/db"
	"expert_panel_go/services"

	"github.com/labstack/echo/v4"
)

// ExportCases streams the full case roster as an Excel workbook
func ExportCases(c echo.Context) error {
	buf, err := services.GenerateCaseWorkbook(db.DB)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to generate export",
		})
	}

	filename := fmt.Sprintf("cases_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}
