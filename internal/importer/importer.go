// Package importer reads rectangle lists from CSV, Excel and DXF files.
// CSV import detects the delimiter automatically, and both tabular formats map
// columns by case-insensitive header names.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/runaround/internal/model"
)

// ImportResult collects what an import produced. Errors are per row unless
// the whole file was unreadable; rows with errors are skipped.
type ImportResult struct {
	Rects    []model.Rect
	Errors   []string
	Warnings []string
}

func (r *ImportResult) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ImportResult) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// ColumnMapping holds the column index of each field, -1 when absent.
type ColumnMapping struct {
	Name   int
	X      int
	Y      int
	Width  int
	Height int
	Color  int
}

// positional is used for files without a recognizable header.
var positional = ColumnMapping{Name: 0, X: 1, Y: 2, Width: 3, Height: 4, Color: 5}

// columnRoles lists accepted header spellings per field, lower-case.
var columnRoles = []struct {
	aliases []string
	slot    func(*ColumnMapping) *int
}{
	{[]string{"name", "label", "rect", "bereich", "bezeichnung", "description"}, func(m *ColumnMapping) *int { return &m.Name }},
	{[]string{"x", "left", "pos x", "position x"}, func(m *ColumnMapping) *int { return &m.X }},
	{[]string{"y", "top", "pos y", "position y"}, func(m *ColumnMapping) *int { return &m.Y }},
	{[]string{"width", "w", "breite"}, func(m *ColumnMapping) *int { return &m.Width }},
	{[]string{"height", "h", "höhe", "hoehe", "depth"}, func(m *ColumnMapping) *int { return &m.Height }},
	{[]string{"color", "colour", "farbe", "fill"}, func(m *ColumnMapping) *int { return &m.Color }},
}

var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

var delimiterNames = map[rune]string{',': "comma", ';': "semicolon", '\t': "tab", '|': "pipe"}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	return cr.ReadAll()
}

// DetectCSVDelimiter guesses the delimiter among comma, semicolon, tab and
// pipe. A candidate must split the first line into at least two fields; the
// one whose line lengths agree most often wins, wider splits breaking ties.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		width := len(records[0])
		agree := 0
		for _, rec := range records {
			if len(rec) == width {
				agree++
			}
		}
		if score := agree*10 + width; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// DetectColumns maps header cells to fields. When no cell is a known header
// it returns the positional mapping (name, x, y, width, height, color) and
// false. The first column matching a field wins.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Name: -1, X: -1, Y: -1, Width: -1, Height: -1, Color: -1}
	found := false
	for i, cell := range row {
		key := strings.ToLower(strings.TrimSpace(cell))
		for _, role := range columnRoles {
			for _, alias := range role.aliases {
				if key != alias {
					continue
				}
				found = true
				if slot := role.slot(&m); *slot < 0 {
					*slot = i
				}
			}
		}
	}
	if !found {
		return positional, false
	}
	return m, true
}

// parseNumber accepts both "12.5" and the decimal comma "12,5".
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowParser turns table rows into rectangles.
type rowParser struct {
	cols   ColumnMapping
	prefix string // "Line" for CSV, "Row" for Excel
	result *ImportResult
}

// size reads a required positive dimension.
func (p rowParser) size(row []string, idx int, field, where string) (float64, bool) {
	s := cell(row, idx)
	if s == "" {
		p.result.errorf("%s: Missing %s value", where, field)
		return 0, false
	}
	v, err := parseNumber(s)
	if err != nil {
		p.result.errorf("%s: Invalid %s '%s'", where, field, s)
		return 0, false
	}
	return v, true
}

// parse adds the rectangle on row n (1-based) or records why it was skipped.
func (p rowParser) parse(row []string, n int) {
	where := fmt.Sprintf("%s %d", p.prefix, n)

	w, ok := p.size(row, p.cols.Width, "width", where)
	if !ok {
		return
	}
	h, ok := p.size(row, p.cols.Height, "height", where)
	if !ok {
		return
	}
	if w <= 0 || h <= 0 {
		p.result.errorf("%s: Width and height must be positive", where)
		return
	}

	var x, y float64
	for _, c := range []struct {
		idx int
		dst *float64
	}{{p.cols.X, &x}, {p.cols.Y, &y}} {
		s := cell(row, c.idx)
		if s == "" {
			continue
		}
		v, err := parseNumber(s)
		if err != nil {
			p.result.errorf("%s: Invalid position '%s'", where, s)
			return
		}
		*c.dst = v
	}

	if w < model.MinRectSize || h < model.MinRectSize {
		p.result.warnf("%s: Size raised to the %.0f px minimum", where, model.MinRectSize)
		w, h = max(w, model.MinRectSize), max(h, model.MinRectSize)
	}

	name := cell(row, p.cols.Name)
	if name == "" {
		name = fmt.Sprintf("Rect %d", len(p.result.Rects)+1)
	}
	rect := model.NewRect(name, x, y, w, h)
	if c := cell(row, p.cols.Color); c != "" {
		if hexColor.MatchString(c) {
			rect.Color = strings.ToLower(c)
		} else {
			p.result.warnf("%s: Unknown color '%s', using default", where, c)
		}
	}
	p.result.Rects = append(p.result.Rects, rect)
}

// importRows is shared by the CSV and Excel importers.
func importRows(rows [][]string, prefix string, result ImportResult) ImportResult {
	if len(rows) == 0 {
		result.errorf("File is empty")
		return result
	}

	cols, header := DetectColumns(rows[0])
	first := 0
	switch {
	case header:
		first = 1
		result.warnf("Detected header row, skipping")
		var missing []string
		if cols.Width < 0 {
			missing = append(missing, "Width")
		}
		if cols.Height < 0 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.errorf("Required columns not found in header: %s", strings.Join(missing, ", "))
			return result
		}
	case len(rows[0]) >= 5:
		// An unrecognized header still has text where the width belongs.
		if _, err := parseNumber(cell(rows[0], positional.Width)); err != nil {
			first = 1
			result.warnf("Detected header row, skipping")
		}
	}

	p := rowParser{cols: cols, prefix: prefix, result: &result}
	for i := first; i < len(rows); i++ {
		if !blank(rows[i]) {
			p.parse(rows[i], i+1)
		}
	}
	return result
}

// ImportFile picks the importer from the file extension: .csv/.txt, .xlsx/.xlsm
// or .dxf.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	}
	return ImportResult{Errors: []string{fmt.Sprintf("Unsupported file type %q", filepath.Ext(path))}}
}

// ImportCSV imports rectangles from a CSV file with any supported delimiter.
func ImportCSV(path string) ImportResult {
	var result ImportResult
	data, err := os.ReadFile(path)
	if err != nil {
		result.errorf("Cannot open file: %v", err)
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.errorf("File is empty")
		return result
	}

	delim := DetectCSVDelimiter(data)
	if delim != ',' {
		result.warnf("Detected %s delimiter", delimiterNames[delim])
	}
	rows, err := readCSV(bytes.NewReader(data), delim)
	if err != nil {
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	return importRows(rows, "Line", result)
}

// ImportCSVFromReader imports rectangles from CSV with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	rows, err := readCSV(r, delimiter)
	if err != nil {
		var result ImportResult
		result.errorf("Cannot read CSV: %v", err)
		return result
	}
	return importRows(rows, "Line", ImportResult{})
}

// ImportExcel imports rectangles from the first sheet of a workbook.
func ImportExcel(path string) ImportResult {
	var result ImportResult
	f, err := excelize.OpenFile(path)
	if err != nil {
		result.errorf("Cannot open Excel file: %v", err)
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.errorf("Excel file has no sheets")
		return result
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.errorf("Cannot read Excel data: %v", err)
		return result
	}
	if len(rows) == 0 {
		result.errorf("Sheet is empty")
		return result
	}
	return importRows(rows, "Row", result)
}

// AddToProject appends the imported rectangles to p. Rectangles are moved
// inside the room where they fit; the room grows (up to its limits) to hold
// the widest and tallest one. It returns the number of rectangles added.
func AddToProject(p *model.Project, rects []model.Rect) int {
	needW, needH := p.Room.Width, p.Room.Height
	for _, r := range rects {
		needW = max(needW, r.Right())
		needH = max(needH, r.Bottom())
	}
	if needW != p.Room.Width || needH != p.Room.Height {
		p.SetRoomSize(needW, needH)
	}

	for _, r := range rects {
		r.X = min(max(0, r.X), max(0, p.Room.Width-r.Width))
		r.Y = min(max(0, r.Y), max(0, p.Room.Height-r.Height))
		p.Rects = append(p.Rects, r)
	}
	return len(rects)
}
