package widgets

import (
	"fmt"
	"image/color"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"github.com/piwi3910/runaround/internal/export"
	"github.com/piwi3910/runaround/internal/model"
)

const (
	canvasPadding  = 10
	dockRadius     = 4  // screen pixels
	dockHitRadius  = 10 // screen pixels
	minStrokeWidth = 1
)

var (
	roomFill      = color.NRGBA{R: 30, G: 42, B: 58, A: 255}
	roomStroke    = color.NRGBA{R: 58, G: 90, B: 138, A: 255}
	rectStroke    = color.NRGBA{R: 55, G: 65, B: 81, A: 255}
	selectStroke  = color.NRGBA{R: 250, G: 204, B: 21, A: 255}
	dockFill      = color.NRGBA{R: 255, G: 255, B: 255, A: 160}
	dockPending   = color.NRGBA{R: 34, G: 197, B: 94, A: 255}
	pathNumberInk = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// viewport maps room coordinates onto the widget.
type viewport struct {
	scale  float32
	ox, oy float32
}

// fitViewport scales the room to fit size, keeping its aspect ratio and
// centring it inside the padding.
func fitViewport(room model.Room, size fyne.Size) viewport {
	availW := size.Width - 2*canvasPadding
	availH := size.Height - 2*canvasPadding
	if room.Width <= 0 || room.Height <= 0 || availW <= 0 || availH <= 0 {
		return viewport{scale: 1, ox: canvasPadding, oy: canvasPadding}
	}
	scale := float32(math.Min(float64(availW)/room.Width, float64(availH)/room.Height))
	return viewport{
		scale: scale,
		ox:    canvasPadding + (availW-float32(room.Width)*scale)/2,
		oy:    canvasPadding + (availH-float32(room.Height)*scale)/2,
	}
}

func (v viewport) toScreen(p model.Point) fyne.Position {
	return fyne.NewPos(v.ox+float32(p.X)*v.scale, v.oy+float32(p.Y)*v.scale)
}

func (v viewport) toRoom(pos fyne.Position) model.Point {
	return model.Point{
		X: float64((pos.X - v.ox) / v.scale),
		Y: float64((pos.Y - v.oy) / v.scale),
	}
}

// rectAt returns the topmost rectangle containing p.
func rectAt(rects []model.Rect, p model.Point) (model.Rect, bool) {
	for i := len(rects) - 1; i >= 0; i-- {
		if rects[i].Contains(p, 0) {
			return rects[i], true
		}
	}
	return model.Rect{}, false
}

// dockAt returns the dock nearest to p within radius room units.
func dockAt(rects []model.Rect, p model.Point, radius float64) (model.DockPoint, bool) {
	best := radius
	var found model.DockPoint
	ok := false
	for i := len(rects) - 1; i >= 0; i-- {
		for _, side := range model.DockSides {
			d := rects[i].DockPoint(side)
			if dist := math.Hypot(d.X-p.X, d.Y-p.Y); dist <= best {
				best = dist
				found = model.DockPoint{RectID: rects[i].ID, Side: side}
				ok = true
			}
		}
	}
	return found, ok
}

// clampInRoom keeps a rectangle of size w x h fully inside the room.
func clampInRoom(x, y, w, h float64, room model.Room) (float64, float64) {
	x = math.Max(0, math.Min(x, room.Width-w))
	y = math.Max(0, math.Min(y, room.Height-h))
	return math.Round(x), math.Round(y)
}

// dragState tracks a rectangle being moved.
type dragState struct {
	id     string
	grab   model.Point // pointer offset from the rect origin
	active bool
}

// RoomCanvas draws a room layout: rectangles with their dock markers and the
// routed paths with lane offsets applied. Dragging a rectangle moves it;
// in connect mode two taps on dock markers pick the ends of a new path.
type RoomCanvas struct {
	widget.BaseWidget

	scene       export.Scene
	selected    string
	connectMode bool
	pending     *model.DockPoint
	drag        dragState

	// OnRectMoved fires once per drag, when the pointer is released.
	OnRectMoved    func(id string, x, y float64)
	OnRectSelected func(id string)
	OnDocksPicked  func(from, to model.DockPoint)
}

// NewRoomCanvas creates an empty canvas.
func NewRoomCanvas() *RoomCanvas {
	rc := &RoomCanvas{}
	rc.ExtendBaseWidget(rc)
	return rc
}

// SetScene replaces the drawn layout. A drag in progress keeps its preview.
func (rc *RoomCanvas) SetScene(s export.Scene) {
	s.Rects = append([]model.Rect(nil), s.Rects...)
	if rc.drag.active {
		if r := findRect(rc.scene.Rects, rc.drag.id); r != nil {
			if nr := findRect(s.Rects, rc.drag.id); nr != nil {
				nr.X, nr.Y = r.X, r.Y
			}
		}
	}
	rc.scene = s
	if rc.selected != "" && findRect(s.Rects, rc.selected) == nil {
		rc.selected = ""
	}
	rc.Refresh()
}

// SetConnectMode toggles dock picking. Leaving connect mode drops a
// half-picked path.
func (rc *RoomCanvas) SetConnectMode(on bool) {
	rc.connectMode = on
	rc.pending = nil
	rc.Refresh()
}

// ConnectMode reports whether taps pick docks.
func (rc *RoomCanvas) ConnectMode() bool { return rc.connectMode }

// Selected returns the ID of the selected rectangle, or "".
func (rc *RoomCanvas) Selected() string { return rc.selected }

// SetSelected highlights a rectangle without firing OnRectSelected.
func (rc *RoomCanvas) SetSelected(id string) {
	rc.selected = id
	rc.Refresh()
}

func (rc *RoomCanvas) viewport() viewport {
	return fitViewport(rc.scene.Room, rc.Size())
}

// Tapped selects a rectangle, or in connect mode picks a dock.
func (rc *RoomCanvas) Tapped(e *fyne.PointEvent) {
	vp := rc.viewport()
	pt := vp.toRoom(e.Position)

	if rc.connectMode {
		dp, ok := dockAt(rc.scene.Rects, pt, dockHitRadius/float64(vp.scale))
		if !ok {
			return
		}
		if rc.pending == nil {
			rc.pending = &dp
			rc.Refresh()
			return
		}
		from := *rc.pending
		rc.pending = nil
		rc.Refresh()
		if from == dp {
			return
		}
		if rc.OnDocksPicked != nil {
			rc.OnDocksPicked(from, dp)
		}
		return
	}

	id := ""
	if r, ok := rectAt(rc.scene.Rects, pt); ok {
		id = r.ID
	}
	rc.selected = id
	rc.Refresh()
	if rc.OnRectSelected != nil {
		rc.OnRectSelected(id)
	}
}

// Dragged moves the rectangle under the pointer.
func (rc *RoomCanvas) Dragged(e *fyne.DragEvent) {
	vp := rc.viewport()
	if !rc.drag.active {
		start := vp.toRoom(e.Position.Subtract(e.Dragged))
		r, ok := rectAt(rc.scene.Rects, start)
		if !ok {
			return
		}
		rc.drag = dragState{
			id:     r.ID,
			grab:   model.Point{X: start.X - r.X, Y: start.Y - r.Y},
			active: true,
		}
		rc.selected = r.ID
	}

	r := findRect(rc.scene.Rects, rc.drag.id)
	if r == nil {
		rc.drag = dragState{}
		return
	}
	cur := vp.toRoom(e.Position)
	r.X, r.Y = clampInRoom(cur.X-rc.drag.grab.X, cur.Y-rc.drag.grab.Y, r.Width, r.Height, rc.scene.Room)
	rc.Refresh()
}

// DragEnd reports the final rectangle position.
func (rc *RoomCanvas) DragEnd() {
	d := rc.drag
	rc.drag = dragState{}
	if !d.active {
		return
	}
	r := findRect(rc.scene.Rects, d.id)
	if r == nil || rc.OnRectMoved == nil {
		return
	}
	rc.OnRectMoved(d.id, r.X, r.Y)
}

func (rc *RoomCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &roomCanvasRenderer{rc: rc}
}

// findRect returns a pointer into rects so drag previews can edit in place.
func findRect(rects []model.Rect, id string) *model.Rect {
	for i := range rects {
		if rects[i].ID == id {
			return &rects[i]
		}
	}
	return nil
}

type roomCanvasRenderer struct {
	rc      *RoomCanvas
	objects []fyne.CanvasObject
	size    fyne.Size
}

func (r *roomCanvasRenderer) rebuild() {
	r.objects = nil
	rc := r.rc
	s := rc.scene
	vp := fitViewport(s.Room, r.size)

	room := canvas.NewRectangle(roomFill)
	room.StrokeColor = roomStroke
	room.StrokeWidth = 2
	room.Move(vp.toScreen(model.Point{}))
	room.Resize(fyne.NewSize(float32(s.Room.Width)*vp.scale, float32(s.Room.Height)*vp.scale))
	r.objects = append(r.objects, room)

	fontSize := float32(s.FontSize) * vp.scale
	if fontSize < 8 {
		fontSize = 8
	}
	for _, rect := range s.Rects {
		box := canvas.NewRectangle(export.RectFill(rect))
		box.StrokeColor = rectStroke
		box.StrokeWidth = 1
		if rect.ID == rc.selected {
			box.StrokeColor = selectStroke
			box.StrokeWidth = 2
		}
		box.Move(vp.toScreen(model.Point{X: rect.X, Y: rect.Y}))
		box.Resize(fyne.NewSize(float32(rect.Width)*vp.scale, float32(rect.Height)*vp.scale))
		r.objects = append(r.objects, box)

		label := canvas.NewText(rect.Name, color.Black)
		label.TextSize = fontSize
		label.Alignment = fyne.TextAlignCenter
		c := vp.toScreen(rect.Center())
		ls := fyne.MeasureText(rect.Name, fontSize, label.TextStyle)
		label.Move(fyne.NewPos(c.X-ls.Width/2, c.Y-ls.Height/2))
		label.Resize(ls)
		r.objects = append(r.objects, label)
	}

	stroke := float32(s.Thickness) * vp.scale
	if stroke < minStrokeWidth {
		stroke = minStrokeWidth
	}
	ink := export.PathColor()
	for _, sp := range s.Paths {
		pts := model.FlatToPoints(sp.Points)
		for i := 1; i < len(pts); i++ {
			r.objects = append(r.objects, r.line(vp.toScreen(pts[i-1]), vp.toScreen(pts[i]), ink, stroke))
		}
		if tip, left, right, ok := export.ArrowHead(sp.Points); ok {
			t := vp.toScreen(tip)
			r.objects = append(r.objects,
				r.line(vp.toScreen(left), t, ink, stroke),
				r.line(vp.toScreen(right), t, ink, stroke))
		}
		if len(pts) > 0 {
			r.objects = append(r.objects, r.pathNumber(vp.toScreen(pts[0]), sp.Number, ink)...)
		}
	}

	if rc.connectMode || rc.selected != "" {
		for _, rect := range s.Rects {
			if !rc.connectMode && rect.ID != rc.selected {
				continue
			}
			for _, side := range model.DockSides {
				fill := dockFill
				if rc.pending != nil && rc.pending.RectID == rect.ID && rc.pending.Side == side {
					fill = dockPending
				}
				dot := canvas.NewCircle(fill)
				dot.StrokeColor = rectStroke
				dot.StrokeWidth = 1
				p := vp.toScreen(rect.DockPoint(side))
				dot.Move(fyne.NewPos(p.X-dockRadius, p.Y-dockRadius))
				dot.Resize(fyne.NewSquareSize(2 * dockRadius))
				r.objects = append(r.objects, dot)
			}
		}
	}
}

func (r *roomCanvasRenderer) line(a, b fyne.Position, c color.Color, width float32) *canvas.Line {
	l := canvas.NewLine(c)
	l.StrokeWidth = width
	l.Position1 = a
	l.Position2 = b
	return l
}

// pathNumber draws the draw-order number in a filled circle at the path start.
func (r *roomCanvasRenderer) pathNumber(at fyne.Position, n int, c color.Color) []fyne.CanvasObject {
	const radius = 8
	dot := canvas.NewCircle(c)
	dot.Move(fyne.NewPos(at.X-radius, at.Y-radius))
	dot.Resize(fyne.NewSquareSize(2 * radius))
	txt := canvas.NewText(fmt.Sprintf("%d", n), pathNumberInk)
	txt.TextSize = 9
	txt.TextStyle = fyne.TextStyle{Bold: true}
	ts := fyne.MeasureText(txt.Text, txt.TextSize, txt.TextStyle)
	txt.Move(fyne.NewPos(at.X-ts.Width/2, at.Y-ts.Height/2))
	txt.Resize(ts)
	return []fyne.CanvasObject{dot, txt}
}

func (r *roomCanvasRenderer) Layout(size fyne.Size) {
	r.size = size
	r.rebuild()
}

func (r *roomCanvasRenderer) MinSize() fyne.Size { return fyne.NewSize(320, 200) }

func (r *roomCanvasRenderer) Refresh() {
	r.size = r.rc.Size()
	r.rebuild()
	canvas.Refresh(r.rc)
}

func (r *roomCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *roomCanvasRenderer) Destroy()                     {}
