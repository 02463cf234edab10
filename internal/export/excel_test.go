package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/runaround/internal/model"
)

func TestExportExcel_WritesPathList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laufwege.xlsx")

	if err := ExportExcel(path, buildTestProject()); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("cannot reopen workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("expected a single %q sheet, got %v", SheetName, sheets)
	}

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header and 3 rows, got %d", len(rows))
	}
	for i, h := range TableHeaders {
		if rows[0][i] != h {
			t.Errorf("header %d: expected %q, got %q", i, h, rows[0][i])
		}
	}

	first := rows[1]
	want := []string{"1", "Anlieferung", "Enge Tür", "Kürzester Weg", "Täglich", "250"}
	for i, w := range want {
		if first[i] != w {
			t.Errorf("cell %d: expected %q, got %q", i, w, first[i])
		}
	}
	if rows[2][0] != "2" {
		t.Errorf("expected second row numbered 2, got %q", rows[2][0])
	}
}

func TestExportExcel_DistanceIsNumeric(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laufwege.xlsx")
	if err := ExportExcel(path, buildTestProject()); err != nil {
		t.Fatal(err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	typ, err := f.GetCellType(SheetName, "F2")
	if err != nil {
		t.Fatal(err)
	}
	if typ != excelize.CellTypeNumber && typ != excelize.CellTypeUnset {
		t.Errorf("expected a numeric distance cell, got type %v", typ)
	}
}

func TestExportExcel_EmptyProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := ExportExcel(path, model.NewProject()); err != nil {
		t.Fatalf("ExportExcel returned error: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Errorf("expected only the header row, got %d rows", len(rows))
	}
}
