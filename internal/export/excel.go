package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/runaround/internal/model"
)

// SheetName is the worksheet the path list is written to.
const SheetName = "Laufwege"

var excelColWidths = []float64{5, 30, 20, 30, 30, 12}

// ExportExcel writes the path list in draw order to an .xlsx workbook.
// Text fields are written as entered; distance is a number.
func ExportExcel(path string, p model.Project) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"5FB3B3"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, title := range TableHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, excelColWidths[i]); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(TableHeaders), 1)
	if err := f.SetCellStyle(SheetName, "A1", last, header); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range Table(p) {
		values := []any{row.Number, row.Description, row.Crux, row.Reason, row.Comment, row.Distance}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", row.Number, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	return f.SaveAs(path)
}
