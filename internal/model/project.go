package model

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// ProjectVersion is the only project file version understood so far.
const ProjectVersion = 1

// Layout limits shared by the editor and the project loader.
const (
	MinRoomWidth  = 200.0
	MaxRoomWidth  = 10000.0
	MinRoomHeight = 200.0
	MaxRoomHeight = 5000.0
	MinRectSize   = 40.0

	MinOverlapSpacing = 4.0
	MaxOverlapSpacing = 12.0
	MinPathThickness  = 1.0
	MaxPathThickness  = 8.0
	MinRectFontSize   = 8.0
	MaxRectFontSize   = 24.0

	DefaultRectColor = "#d1d5db"
)

// Project is the complete editable layout: room, rectangles and paths.
type Project struct {
	Version        int       `json:"version"`
	Name           string    `json:"name,omitempty"`
	Room           Room      `json:"room"`
	Rects          []Rect    `json:"rects"`
	Paths          []PathRow `json:"paths"`
	PathOrder      []string  `json:"pathOrder"`
	OverlapSpacing float64   `json:"overlapSpacing,omitempty"`
	PathThickness  float64   `json:"pathThickness,omitempty"`
	RectFontSize   float64   `json:"rectFontSize,omitempty"`

	rectCounter int
}

// NewProject returns an empty project with the default room.
func NewProject() Project {
	return Project{
		Version:        ProjectVersion,
		Name:           "Untitled",
		Room:           Room{Width: 1200, Height: 600},
		Rects:          []Rect{},
		Paths:          []PathRow{},
		PathOrder:      []string{},
		OverlapSpacing: 6,
		PathThickness:  2,
		RectFontSize:   12,
	}
}

// FindRect returns the rectangle with the given ID, or nil.
func (p *Project) FindRect(id string) *Rect {
	for i := range p.Rects {
		if p.Rects[i].ID == id {
			return &p.Rects[i]
		}
	}
	return nil
}

// FindPath returns the path with the given ID, or nil.
func (p *Project) FindPath(id string) *PathRow {
	for i := range p.Paths {
		if p.Paths[i].ID == id {
			return &p.Paths[i]
		}
	}
	return nil
}

// SetRoomSize resizes the room within the supported limits.
func (p *Project) SetRoomSize(w, h float64) {
	p.Room.Width = clamp(w, MinRoomWidth, MaxRoomWidth)
	p.Room.Height = clamp(h, MinRoomHeight, MaxRoomHeight)
}

// AddRect places a new rectangle near the top-left corner of the room and
// returns it. An empty name gets a running default ("Rect 1", "Rect 2", ...).
func (p *Project) AddRect(name string, w, h float64) Rect {
	w = math.Max(w, MinRectSize)
	h = math.Max(h, MinRectSize)
	if name == "" {
		p.rectCounter++
		name = fmt.Sprintf("Rect %d", p.rectCounter)
	}
	x := math.Max(0, math.Min(50, p.Room.Width-w))
	y := math.Max(0, math.Min(50, p.Room.Height-h))
	r := NewRect(name, x, y, w, h)
	p.Rects = append(p.Rects, r)
	return r
}

// RectPatch carries optional changes for UpdateRect. Nil fields are left alone.
type RectPatch struct {
	Name   *string
	X, Y   *float64
	Width  *float64
	Height *float64
	Color  *string
}

// UpdateRect applies patch to the rectangle with the given ID.
// It returns false when no such rectangle exists.
func (p *Project) UpdateRect(id string, patch RectPatch) bool {
	r := p.FindRect(id)
	if r == nil {
		return false
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.X != nil {
		r.X = *patch.X
	}
	if patch.Y != nil {
		r.Y = *patch.Y
	}
	if patch.Width != nil {
		r.Width = math.Max(*patch.Width, MinRectSize)
	}
	if patch.Height != nil {
		r.Height = math.Max(*patch.Height, MinRectSize)
	}
	if patch.Color != nil {
		r.Color = *patch.Color
	}
	return true
}

// DeleteRect removes a rectangle and every path attached to it.
func (p *Project) DeleteRect(id string) {
	rects := p.Rects[:0]
	for _, r := range p.Rects {
		if r.ID != id {
			rects = append(rects, r)
		}
	}
	p.Rects = rects

	removed := make(map[string]bool)
	paths := p.Paths[:0]
	for _, row := range p.Paths {
		if row.From.RectID == id || row.To.RectID == id {
			removed[row.ID] = true
			continue
		}
		paths = append(paths, row)
	}
	p.Paths = paths
	p.PathOrder = filterIDs(p.PathOrder, removed)
}

// AddPath appends a routed path and puts it last in draw order.
func (p *Project) AddPath(from, to DockPoint, points []float64) PathRow {
	row := PathRow{
		ID:        "path-" + uuid.New().String()[:8],
		From:      from,
		To:        to,
		Points:    points,
		CreatedAt: time.Now().UnixMilli(),
	}
	p.Paths = append(p.Paths, row)
	p.PathOrder = append(p.PathOrder, row.ID)
	return row
}

// AddPlaceholderPath appends a table row that is not yet connected to any rectangle.
func (p *Project) AddPlaceholderPath() PathRow {
	row := PathRow{
		ID:            "path-" + uuid.New().String()[:8],
		From:          DockPoint{Side: SideTop},
		To:            DockPoint{Side: SideTop},
		Points:        []float64{},
		CreatedAt:     time.Now().UnixMilli(),
		IsPlaceholder: true,
	}
	p.Paths = append(p.Paths, row)
	p.PathOrder = append(p.PathOrder, row.ID)
	return row
}

// UpdatePathFields replaces the table fields of a path.
func (p *Project) UpdatePathFields(id string, fields PathFields) bool {
	row := p.FindPath(id)
	if row == nil {
		return false
	}
	row.Fields = fields
	return true
}

// UpdatePathPoints stores hand-edited points; the path is excluded from
// automatic recomputation afterwards.
func (p *Project) UpdatePathPoints(id string, points []float64) bool {
	row := p.FindPath(id)
	if row == nil {
		return false
	}
	row.Points = points
	row.IsManuallyEdited = true
	return true
}

// ResetManualEdit puts a path back under automatic routing.
func (p *Project) ResetManualEdit(id string) bool {
	row := p.FindPath(id)
	if row == nil {
		return false
	}
	row.IsManuallyEdited = false
	return true
}

// DeletePath removes a path and its draw order entry.
func (p *Project) DeletePath(id string) {
	paths := p.Paths[:0]
	for _, row := range p.Paths {
		if row.ID != id {
			paths = append(paths, row)
		}
	}
	p.Paths = paths
	p.PathOrder = filterIDs(p.PathOrder, map[string]bool{id: true})
}

// ReorderPaths replaces the draw order.
func (p *Project) ReorderPaths(order []string) {
	p.PathOrder = append([]string(nil), order...)
}

// MovePath shifts a path by delta positions in the draw order.
func (p *Project) MovePath(id string, delta int) bool {
	idx := -1
	for i, pid := range p.PathOrder {
		if pid == id {
			idx = i
			break
		}
	}
	target := idx + delta
	if idx < 0 || target < 0 || target >= len(p.PathOrder) {
		return false
	}
	p.PathOrder[idx], p.PathOrder[target] = p.PathOrder[target], p.PathOrder[idx]
	return true
}

// OrderedPaths returns the paths in draw order, skipping stale order entries.
func (p *Project) OrderedPaths() []PathRow {
	byID := make(map[string]PathRow, len(p.Paths))
	for _, row := range p.Paths {
		byID[row.ID] = row
	}
	out := make([]PathRow, 0, len(p.PathOrder))
	for _, id := range p.PathOrder {
		if row, ok := byID[id]; ok {
			out = append(out, row)
		}
	}
	return out
}

func (p *Project) SetOverlapSpacing(v float64) {
	p.OverlapSpacing = clamp(v, MinOverlapSpacing, MaxOverlapSpacing)
}

func (p *Project) SetPathThickness(v float64) {
	p.PathThickness = clamp(v, MinPathThickness, MaxPathThickness)
}

func (p *Project) SetRectFontSize(v float64) {
	p.RectFontSize = clamp(v, MinRectFontSize, MaxRectFontSize)
}

// Clone returns a deep copy safe to mutate independently.
func (p Project) Clone() Project {
	cp := p
	cp.Rects = append([]Rect(nil), p.Rects...)
	cp.PathOrder = append([]string(nil), p.PathOrder...)
	cp.Paths = make([]PathRow, len(p.Paths))
	for i, row := range p.Paths {
		cp.Paths[i] = row
		cp.Paths[i].Points = append([]float64(nil), row.Points...)
	}
	return cp
}

func filterIDs(ids []string, drop map[string]bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
