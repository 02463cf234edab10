// Package export writes room layouts and their path lists to PDF, Excel,
// DXF and PNG files.
package export

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/piwi3910/runaround/internal/model"
	"github.com/piwi3910/runaround/internal/routing"
)

// rgb is an 8-bit color triple shared by the PDF and PNG renderers.
type rgb struct {
	R, G, B int
}

var (
	pathColor   = rgb{233, 69, 96}
	roomFill    = rgb{30, 42, 58}
	roomStroke  = rgb{58, 90, 138}
	rectStroke  = rgb{55, 65, 81}
	headerColor = rgb{95, 179, 179}
)

// Arrowhead size in room pixels.
const (
	arrowLength = 12.0
	arrowWidth  = 10.0
)

// now is replaced in tests.
var now = time.Now

func dateString() string {
	return now().Format("02.01.2006")
}

// ScenePath is a path ready for drawing: its lane offsets are applied.
type ScenePath struct {
	Number int // 1-based position in draw order
	Row    model.PathRow
	Points []float64
}

// Scene is everything a renderer needs to draw a layout.
type Scene struct {
	Room      model.Room
	Rects     []model.Rect
	Paths     []ScenePath
	Thickness float64
	FontSize  float64
}

// BuildScene resolves overlap offsets for every routed path of p and returns
// the paths in draw order. Paths without a usable polyline keep their
// number but are left out of Paths.
func BuildScene(p model.Project) Scene {
	ordered := p.OrderedPaths()
	points := make(map[string][]float64, len(ordered))
	order := make([]string, 0, len(ordered))
	for _, row := range ordered {
		points[row.ID] = row.Points
		order = append(order, row.ID)
	}
	offsets := routing.ResolveAll(points, order, p.OverlapSpacing)

	s := Scene{
		Room:      p.Room,
		Rects:     p.Rects,
		Thickness: p.PathThickness,
		FontSize:  p.RectFontSize,
	}
	for i, row := range ordered {
		if !row.HasRoute() {
			continue
		}
		s.Paths = append(s.Paths, ScenePath{
			Number: i + 1,
			Row:    row,
			Points: routing.ApplyOffsets(row.Points, offsets[row.ID]),
		})
	}
	return s
}

// TableRow is one line of the path list as it appears in exports.
type TableRow struct {
	Number      int
	Description string
	Crux        string
	Reason      string
	Comment     string
	Distance    float64
}

// TableHeaders are the column titles of the path list.
var TableHeaders = []string{"Nr.", "Beschreibung", "Knackpunkt", "Begründung", "Kommentar", "Distanz (px)"}

// Table returns the path list in draw order. Distance is the Manhattan
// length of the stored polyline.
func Table(p model.Project) []TableRow {
	ordered := p.OrderedPaths()
	rows := make([]TableRow, len(ordered))
	for i, row := range ordered {
		rows[i] = TableRow{
			Number:      i + 1,
			Description: row.Fields.Description,
			Crux:        row.Fields.Crux,
			Reason:      row.Fields.Reason,
			Comment:     row.Fields.Comment,
			Distance:    row.Length(),
		}
	}
	return rows
}

// Cells returns the row as display strings; empty fields show as "-".
func (r TableRow) Cells() []string {
	dash := func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	}
	return []string{
		strconv.Itoa(r.Number),
		dash(r.Description),
		dash(r.Crux),
		dash(r.Reason),
		dash(r.Comment),
		fmt.Sprintf("%.0f px", r.Distance),
	}
}

// ArrowHead returns the tip and the two base corners of the arrowhead at the
// end of a polyline. ok is false for polylines whose last segment has no length.
func ArrowHead(points []float64) (tip, left, right model.Point, ok bool) {
	pts := model.FlatToPoints(points)
	if len(pts) < 2 {
		return tip, left, right, false
	}
	a, b := pts[len(pts)-2], pts[len(pts)-1]
	dx, dy := b.X-a.X, b.Y-a.Y
	n := math.Hypot(dx, dy)
	if n == 0 {
		return tip, left, right, false
	}
	dx, dy = dx/n, dy/n
	base := model.Point{X: b.X - dx*arrowLength, Y: b.Y - dy*arrowLength}
	half := arrowWidth / 2
	left = model.Point{X: base.X - dy*half, Y: base.Y + dx*half}
	right = model.Point{X: base.X + dy*half, Y: base.Y - dx*half}
	return b, left, right, true
}

// RectFill returns the fill color of a rectangle, falling back to the
// default gray for missing or malformed colors.
func RectFill(r model.Rect) color.RGBA {
	return toRGBA(parseHexColor(r.Color, parseHexColor(model.DefaultRectColor, rgb{})))
}

// PathColor is the stroke color of routed paths.
func PathColor() color.RGBA { return toRGBA(pathColor) }

// parseHexColor reads "#rgb" or "#rrggbb"; anything else yields fallback.
func parseHexColor(s string, fallback rgb) rgb {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return fallback
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return fallback
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}
}
