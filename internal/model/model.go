package model

import (
	"math"

	"github.com/google/uuid"
)

// DockSide names the side of a rectangle a path attaches to.
type DockSide string

const (
	SideTop    DockSide = "top"
	SideRight  DockSide = "right"
	SideBottom DockSide = "bottom"
	SideLeft   DockSide = "left"
)

// DockSides lists all sides in clockwise order starting at the top.
var DockSides = []DockSide{SideTop, SideRight, SideBottom, SideLeft}

// Valid reports whether s is one of the four known sides.
func (s DockSide) Valid() bool {
	switch s {
	case SideTop, SideRight, SideBottom, SideLeft:
		return true
	}
	return false
}

// ExitDirection returns the outward unit vector of the side.
func (s DockSide) ExitDirection() (dx, dy float64) {
	switch s {
	case SideTop:
		return 0, -1
	case SideRight:
		return 1, 0
	case SideBottom:
		return 0, 1
	case SideLeft:
		return -1, 0
	}
	return 0, 0
}

// Point is a 2D coordinate in room pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Room is the bounding rectangle every path must stay inside.
type Room struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clamp moves p into [0, Width] x [0, Height].
func (r Room) Clamp(p Point) Point {
	return Point{
		X: math.Max(0, math.Min(r.Width, p.X)),
		Y: math.Max(0, math.Min(r.Height, p.Y)),
	}
}

// Contains reports whether p lies inside the room, bounds inclusive.
func (r Room) Contains(p Point) bool {
	return p.X >= 0 && p.X <= r.Width && p.Y >= 0 && p.Y <= r.Height
}

// Rect is an axis-aligned obstacle placed in the room.
type Rect struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Color  string  `json:"color"`
}

// NewRect creates a rectangle with a fresh ID and the default color.
func NewRect(name string, x, y, w, h float64) Rect {
	return Rect{
		ID:     "rect-" + uuid.New().String()[:8],
		Name:   name,
		X:      x,
		Y:      y,
		Width:  w,
		Height: h,
		Color:  DefaultRectColor,
	}
}

func (r Rect) Left() float64   { return r.X }
func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Top() float64    { return r.Y }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// DockPoint returns the midpoint of the given side.
func (r Rect) DockPoint(side DockSide) Point {
	switch side {
	case SideTop:
		return Point{X: r.X + r.Width/2, Y: r.Y}
	case SideRight:
		return Point{X: r.X + r.Width, Y: r.Y + r.Height/2}
	case SideBottom:
		return Point{X: r.X + r.Width/2, Y: r.Y + r.Height}
	default:
		return Point{X: r.X, Y: r.Y + r.Height/2}
	}
}

// Contains reports whether p lies inside the rectangle grown by margin on
// every side. Bounds are inclusive.
func (r Rect) Contains(p Point, margin float64) bool {
	return p.X >= r.X-margin &&
		p.X <= r.X+r.Width+margin &&
		p.Y >= r.Y-margin &&
		p.Y <= r.Y+r.Height+margin
}

// SegmentIntersects reports whether the axis-aligned segment a-b touches the
// rectangle grown by margin. Diagonal segments never intersect.
func (r Rect) SegmentIntersects(a, b Point, margin float64) bool {
	left := r.X - margin
	right := r.X + r.Width + margin
	top := r.Y - margin
	bottom := r.Y + r.Height + margin

	if a.Y == b.Y {
		minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
		return a.Y >= top && a.Y <= bottom && maxX >= left && minX <= right
	}
	if a.X == b.X {
		minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
		return a.X >= left && a.X <= right && maxY >= top && minY <= bottom
	}
	return false
}

// DockPoint references one side of a rectangle by ID.
type DockPoint struct {
	RectID string   `json:"rectId"`
	Side   DockSide `json:"side"`
}

// PathFields holds the free-text columns of the paths table.
type PathFields struct {
	Description string `json:"description"`
	Crux        string `json:"knackpunkt"`
	Reason      string `json:"begruendung"`
	Comment     string `json:"kommentar"`
}

// PathRow is one routed path together with its table data.
type PathRow struct {
	ID               string     `json:"id"`
	From             DockPoint  `json:"from"`
	To               DockPoint  `json:"to"`
	Points           []float64  `json:"points"` // flat x,y pairs
	Fields           PathFields `json:"fields"`
	CreatedAt        int64      `json:"createdAt"` // unix millis
	IsManuallyEdited bool       `json:"isManuallyEdited"`
	IsPlaceholder    bool       `json:"isPlaceholder,omitempty"`
}

// HasRoute reports whether the row carries a drawable polyline.
func (p PathRow) HasRoute() bool {
	return len(p.Points) >= 4 && len(p.Points)%2 == 0
}

// Length returns the Manhattan length of the row's polyline.
func (p PathRow) Length() float64 {
	return ManhattanLength(p.Points)
}

// ManhattanLength sums |dx|+|dy| over a flat x,y polyline.
func ManhattanLength(points []float64) float64 {
	var total float64
	for i := 0; i+3 < len(points); i += 2 {
		total += math.Abs(points[i+2]-points[i]) + math.Abs(points[i+3]-points[i+1])
	}
	return total
}

// FlatToPoints converts a flat x,y slice into points. A trailing odd value is ignored.
func FlatToPoints(flat []float64) []Point {
	pts := make([]Point, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		pts = append(pts, Point{X: flat[i], Y: flat[i+1]})
	}
	return pts
}

// PointsToFlat converts points into a flat x,y slice.
func PointsToFlat(pts []Point) []float64 {
	flat := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		flat = append(flat, p.X, p.Y)
	}
	return flat
}
