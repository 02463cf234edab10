package export

import (
	"path/filepath"
	"strings"

	"github.com/piwi3910/runaround/internal/model"
)

// Format is one export target selectable by name.
type Format struct {
	Name        string
	Extension   string
	Description string
	Write       func(path string, p model.Project) error
}

// Formats lists every export target. The first format for an extension is
// the one FormatForPath picks.
var Formats = []Format{
	{Name: "pdf", Extension: ".pdf", Description: "PDF diagram followed by the path table", Write: ExportPDFCombined},
	{Name: "pdf-diagram", Extension: ".pdf", Description: "PDF diagram only", Write: ExportPDFDiagram},
	{Name: "pdf-table", Extension: ".pdf", Description: "PDF path table only", Write: ExportPDFTable},
	{Name: "labels", Extension: ".pdf", Description: "Avery 5160 path labels with QR codes", Write: ExportLabels},
	{Name: "xlsx", Extension: ".xlsx", Description: "Excel path list", Write: ExportExcel},
	{Name: "dxf", Extension: ".dxf", Description: "DXF drawing with room, rectangle and path layers", Write: ExportDXF},
	{Name: "png", Extension: ".png", Description: "PNG image of the diagram", Write: func(path string, p model.Project) error {
		return ExportPNG(path, p, DefaultPNGOptions())
	}},
}

// FormatByName looks a format up by its name.
func FormatByName(name string) (Format, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, f := range Formats {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}

// FormatForPath picks a format from the file extension of path.
func FormatForPath(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats {
		if f.Extension == ext {
			return f, true
		}
	}
	return Format{}, false
}

// FormatNames returns the names of all formats in order.
func FormatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = f.Name
	}
	return names
}
