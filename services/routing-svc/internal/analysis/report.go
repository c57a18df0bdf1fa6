package analysis

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"transitroute/pkg/domain"
)

// WriteXLSX renders a ranked edge-improvement list to an .xlsx workbook at
// path, for planners who want the analyse subcommand's output outside a
// terminal. sheetName defaults to "EdgeImprovements" if empty.
func WriteXLSX(improvements []domain.EdgeImprovement, path, sheetName string) error {
	if sheetName == "" {
		sheetName = "EdgeImprovements"
	}

	f := excelize.NewFile()
	defer f.Close()

	f.NewSheet(sheetName)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})

	headers := []string{"From", "To", "Issue", "Current Cost", "Potential Savings", "Affected Routes", "Impact Score", "Priority"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheetName, cell, h)
	}
	if last, err := excelize.CoordinatesToCellName(len(headers), 1); err == nil {
		f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	for i, imp := range improvements {
		row := i + 2
		values := []any{
			imp.From, imp.To, imp.IssueType, imp.CurrentCost,
			imp.PotentialSavings, imp.AffectedRoutes, imp.ImpactScore, imp.Priority.String(),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("writing xlsx report: %w", err)
	}
	return nil
}
