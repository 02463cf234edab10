package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/runaround/internal/model"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter_Comma(t *testing.T) {
	data := []byte("Name,X,Y,Width,Height\nDesk,10,20,100,60\nShelf,200,20,80,40\n")
	if got := DetectCSVDelimiter(data); got != ',' {
		t.Errorf("expected comma delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Semicolon(t *testing.T) {
	data := []byte("Name;X;Y;Width;Height\nDesk;10;20;100,5;60\nShelf;200;20;80;40\n")
	if got := DetectCSVDelimiter(data); got != ';' {
		t.Errorf("expected semicolon delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Tab(t *testing.T) {
	data := []byte("Name\tX\tY\tWidth\tHeight\nDesk\t10\t20\t100\t60\n")
	if got := DetectCSVDelimiter(data); got != '\t' {
		t.Errorf("expected tab delimiter, got %q", got)
	}
}

func TestDetectCSVDelimiter_Pipe(t *testing.T) {
	data := []byte("Name|X|Y|Width|Height\nDesk|10|20|100|60\n")
	if got := DetectCSVDelimiter(data); got != '|' {
		t.Errorf("expected pipe delimiter, got %q", got)
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Name", "X", "Y", "Width", "Height", "Color"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Name: 0, X: 1, Y: 2, Width: 3, Height: 4, Color: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_GermanAndReordered(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Breite", "HÖHE", "Bezeichnung", "Farbe"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	if mapping.Width != 0 || mapping.Height != 1 || mapping.Name != 2 || mapping.Color != 3 {
		t.Errorf("unexpected mapping %+v", mapping)
	}
	if mapping.X != -1 || mapping.Y != -1 {
		t.Errorf("expected no position columns, got x=%d y=%d", mapping.X, mapping.Y)
	}
}

func TestDetectColumns_FirstMatchWins(t *testing.T) {
	mapping, _ := DetectColumns([]string{"W", "Width", "H"})
	if mapping.Width != 0 {
		t.Errorf("expected first width column, got %d", mapping.Width)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Desk", "10", "20", "100", "60"})

	if isHeader {
		t.Error("expected no header")
	}
	want := ColumnMapping{Name: 0, X: 1, Y: 2, Width: 3, Height: 4, Color: 5}
	if mapping != want {
		t.Errorf("expected positional mapping %+v, got %+v", want, mapping)
	}
}

// ─── CSV Reader Import Tests ───────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	input := "Name,X,Y,Width,Height,Color\nDesk,10,20,100,60,#FF0000\nShelf,200,20,80,40,\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(result.Rects))
	}

	r := result.Rects[0]
	if r.Name != "Desk" || r.X != 10 || r.Y != 20 || r.Width != 100 || r.Height != 60 {
		t.Errorf("unexpected rect %+v", r)
	}
	if r.Color != "#ff0000" {
		t.Errorf("expected lower-cased color, got %s", r.Color)
	}
	if r.ID == "" || r.ID == result.Rects[1].ID {
		t.Errorf("expected distinct generated IDs, got %q and %q", r.ID, result.Rects[1].ID)
	}
	if result.Rects[1].Color != model.DefaultRectColor {
		t.Errorf("expected default color, got %s", result.Rects[1].Color)
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Desk,10,20,100,60\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rects) != 1 || result.Rects[0].Width != 100 {
		t.Fatalf("expected one 100 wide rect, got %+v", result.Rects)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	input := "Raum,PosX,PosY,Size1,Size2\nDesk,10,20,100,60\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rects) != 1 {
		t.Fatalf("expected 1 rect, got %d", len(result.Rects))
	}
}

func TestImportCSVFromReader_SemicolonWithDecimalComma(t *testing.T) {
	input := "Name;Width;Height\nDesk;100,5;60\n"
	result := ImportCSVFromReader(strings.NewReader(input), ';')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Rects[0].Width != 100.5 {
		t.Errorf("expected width 100.5, got %f", result.Rects[0].Width)
	}
	if result.Rects[0].X != 0 || result.Rects[0].Y != 0 {
		t.Errorf("expected origin position without x/y columns, got %f,%f", result.Rects[0].X, result.Rects[0].Y)
	}
}

func TestImportCSVFromReader_EmptyFile(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

func TestImportCSVFromReader_InvalidWidth(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height\nDesk,wide,60\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid width") {
		t.Errorf("expected invalid width error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_InvalidPosition(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,X,Width,Height\nDesk,left,100,60\n"), ',')
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Invalid position") {
		t.Errorf("expected invalid position error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_NegativeValues(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height\nDesk,-100,60\n"), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for negative width")
	}
}

func TestImportCSVFromReader_SmallRectRaised(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height\nPost,10,10\n"), ',')

	if len(result.Rects) != 1 {
		t.Fatalf("expected 1 rect, got %d (errors %v)", len(result.Rects), result.Errors)
	}
	if result.Rects[0].Width != model.MinRectSize || result.Rects[0].Height != model.MinRectSize {
		t.Errorf("expected minimum size, got %fx%f", result.Rects[0].Width, result.Rects[0].Height)
	}
	if !containsWarning(result.Warnings, "minimum") {
		t.Errorf("expected minimum size warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_BadColorWarns(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width,Height,Color\nDesk,100,60,teal\n"), ',')

	if len(result.Rects) != 1 {
		t.Fatalf("expected 1 rect, got %d", len(result.Rects))
	}
	if result.Rects[0].Color != model.DefaultRectColor {
		t.Errorf("expected default color, got %s", result.Rects[0].Color)
	}
	if !containsWarning(result.Warnings, "Unknown color") {
		t.Errorf("expected color warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	input := "Name,Width,Height\nDesk,100,60\nBroken,,60\nShelf,80,40\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Rects) != 2 {
		t.Errorf("expected 2 valid rects, got %d", len(result.Rects))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyRowsAndNames(t *testing.T) {
	input := "Name,Width,Height\n,100,60\n\n,80,40\n"
	result := ImportCSVFromReader(strings.NewReader(input), ',')

	if len(result.Rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(result.Rects))
	}
	if result.Rects[0].Name != "Rect 1" || result.Rects[1].Name != "Rect 2" {
		t.Errorf("expected generated names, got %q and %q", result.Rects[0].Name, result.Rects[1].Name)
	}
}

func TestImportCSVFromReader_MissingRequiredColumnInHeader(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Name,Width\nDesk,100\n"), ',')

	if !containsWarning(result.Errors, "Required columns not found in header: Height") {
		t.Errorf("expected missing height error, got %v", result.Errors)
	}
}

// ─── CSV File Import Tests ─────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rects.csv")
	content := "Name;X;Y;Width;Height\nDesk;10;20;100;60\nShelf;200;20;80;40\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	result := ImportCSV(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(result.Rects))
	}
	if !containsWarning(result.Warnings, "semicolon") {
		t.Errorf("expected delimiter warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected empty file error, got %v", result.Errors)
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func writeExcel(t *testing.T, rows [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, val := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, cellRef, val); err != nil {
				t.Fatal(err)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "rects.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := writeExcel(t, [][]string{
		{"Name", "X", "Y", "Width", "Height"},
		{"Desk", "10", "20", "100", "60"},
		{"Shelf", "200", "20", "80", "40"},
	})

	result := ImportExcel(path)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rects) != 2 {
		t.Fatalf("expected 2 rects, got %d", len(result.Rects))
	}
	if result.Rects[1].Name != "Shelf" || result.Rects[1].X != 200 {
		t.Errorf("unexpected second rect %+v", result.Rects[1])
	}
}

func TestImportExcel_ErrorsReferenceRows(t *testing.T) {
	path := writeExcel(t, [][]string{
		{"Name", "Width", "Height"},
		{"Desk", "abc", "60"},
	})

	result := ImportExcel(path)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Row 2") {
		t.Errorf("expected error on row 2, got %v", result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}

// ─── AddToProject Tests ────────────────────────────────────

func TestAddToProject_ClampsIntoRoom(t *testing.T) {
	p := model.NewProject()
	rects := []model.Rect{
		model.NewRect("Left", -50, 10, 100, 60),
		model.NewRect("Low", 100, 580, 100, 60),
	}

	n := AddToProject(&p, rects)

	if n != 2 || len(p.Rects) != 2 {
		t.Fatalf("expected 2 rects added, got %d", len(p.Rects))
	}
	if p.Rects[0].X != 0 {
		t.Errorf("expected x clamped to 0, got %f", p.Rects[0].X)
	}
	// the room grows to hold the low rect instead of moving it
	if p.Room.Height != 640 {
		t.Errorf("expected room height 640, got %f", p.Room.Height)
	}
	if p.Rects[1].Y != 580 {
		t.Errorf("expected y 580, got %f", p.Rects[1].Y)
	}
}

func TestAddToProject_RoomLimit(t *testing.T) {
	p := model.NewProject()
	AddToProject(&p, []model.Rect{model.NewRect("Far", 9990, 0, 100, 60)})

	if p.Room.Width != model.MaxRoomWidth {
		t.Errorf("expected room width at limit, got %f", p.Room.Width)
	}
	if got := p.Rects[0].Right(); got > p.Room.Width {
		t.Errorf("rect extends past the room: right=%f", got)
	}
}

func containsWarning(msgs []string, sub string) bool {
	for _, m := range msgs {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

// ─── ImportFile Tests ──────────────────────────────────────

func TestImportFile_ByExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rects.CSV")
	if err := os.WriteFile(path, []byte("Name,X,Y,Width,Height\nDesk,10,20,100,60\n"), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
	result := ImportFile(path)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Rects) != 1 || result.Rects[0].Name != "Desk" {
		t.Errorf("unexpected rects: %+v", result.Rects)
	}
}

func TestImportFile_Unsupported(t *testing.T) {
	result := ImportFile("layout.svg")
	if !containsWarning(result.Errors, "Unsupported file type") {
		t.Errorf("expected unsupported type error, got %v", result.Errors)
	}
}
