package services

import (
	"bytes"
	"fmt"

	"expert_panel_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var caseExportHeaders = []string{
	"Case Number", "Title", "Client", "Case Type", "Jurisdiction",
	"Status", "Case Manager", "Assigned Expert", "Created",
}

// GenerateCaseWorkbook renders the case roster as a spreadsheet. A
// failure partway through discards the partial workbook.
func GenerateCaseWorkbook(db *gorm.DB) (*bytes.Buffer, error) {
	var cases []models.Case
	if err := db.Preload("CaseManager").Preload("AssignedExpert").
		Order("created_at DESC").
		Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to load cases: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cases"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range caseExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, record := range cases {
		manager := ""
		if record.CaseManager != nil {
			manager = record.CaseManager.FullName()
		}
		expert := ""
		if record.AssignedExpert != nil {
			expert = record.AssignedExpert.FullName()
		}

		values := []interface{}{
			record.CaseNumber,
			record.Title,
			record.ClientName,
			record.CaseType,
			record.Jurisdiction,
			record.Status,
			manager,
			expert,
			record.CreatedAt.Format("2006-01-02"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}
