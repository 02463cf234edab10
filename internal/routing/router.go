// Package routing turns dock-to-dock connections into orthogonal polylines
// that avoid rectangles, and spreads overlapping polylines into lanes.
package routing

import (
	"log/slog"
	"math"

	"github.com/piwi3910/runaround/internal/log"
	"github.com/piwi3910/runaround/internal/model"
)

const defaultStubCells = 3

// Result describes how a route was produced.
type Result struct {
	Points   []float64 // flat x,y pairs; empty when an endpoint is missing
	Attempt  int       // index into Settings.Attempts() that succeeded, -1 otherwise
	Fallback bool      // true when the edge-corridor construction was used
}

// Bends returns the number of direction changes in the route.
func (r Result) Bends() int {
	pts := model.FlatToPoints(r.Points)
	if len(pts) < 3 {
		return 0
	}
	return len(pts) - 2
}

// Router routes paths using a fixed set of settings. A Router holds no state
// between calls and is safe for concurrent use.
type Router struct {
	Settings model.RouteSettings
	logger   *slog.Logger
}

// NewRouter creates a router for the given settings.
func NewRouter(settings model.RouteSettings) *Router {
	return &Router{Settings: settings, logger: log.WithComponent("router")}
}

// RoutePath routes with the default settings.
func RoutePath(from, to model.DockPoint, rects []model.Rect, room model.Room) []float64 {
	return NewRouter(model.DefaultRouteSettings()).Route(from, to, rects, room)
}

// Route returns the polyline connecting two dock points.
func (r *Router) Route(from, to model.DockPoint, rects []model.Rect, room model.Room) []float64 {
	return r.RouteDetailed(from, to, rects, room).Points
}

// endpoint is a resolved dock: the rectangle, the dock coordinate and its
// outward direction.
type endpoint struct {
	rect   model.Rect
	dock   model.Point
	dx, dy float64
}

func resolve(dp model.DockPoint, rects []model.Rect) (endpoint, bool) {
	for _, rect := range rects {
		if rect.ID == dp.RectID {
			dx, dy := dp.Side.ExitDirection()
			return endpoint{rect: rect, dock: rect.DockPoint(dp.Side), dx: dx, dy: dy}, true
		}
	}
	return endpoint{}, false
}

// stub projects the dock outward by distance and clamps it into the room.
func (e endpoint) stub(distance float64, room model.Room) model.Point {
	return room.Clamp(model.Point{X: e.dock.X + e.dx*distance, Y: e.dock.Y + e.dy*distance})
}

// RouteDetailed is Route with information about which attempt succeeded.
//
// The search ladder runs coarse to fine with every rectangle treated as an
// obstacle. The first attempt whose polyline passes validation wins. When no
// attempt passes, a corridor along the room edge is built instead, so every
// call with resolvable docks produces a polyline.
func (r *Router) RouteDetailed(from, to model.DockPoint, rects []model.Rect, room model.Room) Result {
	src, ok := resolve(from, rects)
	if !ok {
		return Result{Points: []float64{}, Attempt: -1}
	}
	dst, ok := resolve(to, rects)
	if !ok {
		return Result{Points: []float64{}, Attempt: -1}
	}

	if src.dock == dst.dock && src.dx == dst.dx && src.dy == dst.dy {
		return Result{Points: model.PointsToFlat(r.outAndBack(src, room)), Attempt: -1}
	}

	for i, attempt := range r.Settings.Attempts() {
		pts, ok := r.tryAttempt(src, dst, rects, room, attempt)
		if !ok {
			continue
		}
		return r.result(pts, src, room, i, false)
	}

	r.logger.Debug("grid search exhausted, using edge corridor",
		slog.String("from", from.RectID),
		slog.String("to", to.RectID))
	pts := r.fallback(src, dst, room)
	return r.result(pts, src, room, -1, true)
}

// result finishes pts. A route that folds onto its own start point becomes
// the out-and-back stub of the source dock.
func (r *Router) result(pts []model.Point, src endpoint, room model.Room, attempt int, fallback bool) Result {
	pts = finish(pts, room)
	if len(pts) < 2 {
		pts = r.outAndBack(src, room)
	}
	return Result{Points: model.PointsToFlat(pts), Attempt: attempt, Fallback: fallback}
}

// SearchBytes estimates the peak search memory of one route in room, which
// is set by the finest attempt of the ladder.
func (r *Router) SearchBytes(room model.Room) int {
	peak := 0
	for _, a := range r.Settings.Attempts() {
		if a.CellSize <= 0 {
			continue
		}
		w := int(math.Ceil(room.Width / a.CellSize))
		h := int(math.Ceil(room.Height / a.CellSize))
		peak = max(peak, SearchBytes(w, h))
	}
	return peak
}

// outAndBack is the route from a dock to itself: out to the stub and back.
// A dock on the room wall facing out has no room for a stub, so the stub
// runs along the wall instead.
func (r *Router) outAndBack(e endpoint, room model.Room) []model.Point {
	dist := r.stubCells()
	if attempts := r.Settings.Attempts(); len(attempts) > 0 {
		dist *= attempts[0].CellSize
	}
	for _, dir := range [][2]float64{{e.dx, e.dy}, {e.dy, e.dx}, {-e.dy, -e.dx}} {
		stub := room.Clamp(model.Point{X: e.dock.X + dir[0]*dist, Y: e.dock.Y + dir[1]*dist})
		if stub != e.dock {
			return []model.Point{e.dock, stub, e.dock}
		}
	}
	return []model.Point{e.dock, e.dock}
}

func (r *Router) stubCells() float64 {
	if r.Settings.StubCells > 0 {
		return float64(r.Settings.StubCells)
	}
	return defaultStubCells
}

func (r *Router) tryAttempt(src, dst endpoint, rects []model.Rect, room model.Room, attempt model.RouteAttempt) ([]model.Point, bool) {
	stubDist := attempt.CellSize * r.stubCells()
	stubStart := src.stub(stubDist, room)
	stubEnd := dst.stub(stubDist, room)

	grid := BuildObstacleGrid(room, rects, attempt.Margin, attempt.CellSize)
	startCell := grid.WorldToCell(stubStart)
	endCell := grid.WorldToCell(stubEnd)
	grid.Unblock(startCell)
	grid.Unblock(endCell)

	cells, ok := Search(startCell, endCell, grid, grid.Width, grid.Height)
	if !ok {
		return nil, false
	}

	pts := make([]model.Point, 0, len(cells)+4)
	pts = append(pts, src.dock, stubStart)
	for _, c := range cells {
		pts = append(pts, grid.CellToWorld(c))
	}
	pts = append(pts, stubEnd, dst.dock)

	pts = compact(orthogonalize(pts))
	if !valid(pts, rects, src.rect.ID, dst.rect.ID, room) {
		return nil, false
	}
	return pts, true
}

// fallback builds a corridor route along one room edge. It exits the source
// dock by FallbackMargin, runs perpendicular to the exit axis to an edge
// corridor, crosses to the destination stub and enters the destination dock.
// The corridor edge is the one on the source rectangle's half of the room,
// unless the destination dock faces across the corridor; then the corridor
// runs on the side the destination dock faces so the last leg does not pass
// through the destination rectangle.
func (r *Router) fallback(src, dst endpoint, room model.Room) []model.Point {
	margin := r.Settings.FallbackMargin
	if margin <= 0 {
		margin = model.DefaultRouteSettings().FallbackMargin
	}
	s1 := src.stub(margin, room)
	e1 := dst.stub(margin, room)
	center := src.rect.Center()

	if src.dx != 0 {
		inset := math.Min(margin, room.Height/2)
		chY := inset
		if (dst.dy == 0 && center.Y >= room.Height/2) || dst.dy > 0 {
			chY = room.Height - inset
		}
		return []model.Point{
			src.dock, s1,
			{X: s1.X, Y: chY},
			{X: e1.X, Y: chY},
			e1, dst.dock,
		}
	}

	inset := math.Min(margin, room.Width/2)
	chX := inset
	if (dst.dx == 0 && center.X >= room.Width/2) || dst.dx > 0 {
		chX = room.Width - inset
	}
	return []model.Point{
		src.dock, s1,
		{X: chX, Y: s1.Y},
		{X: chX, Y: e1.Y},
		e1, dst.dock,
	}
}

// finish enforces the output guarantees: axis-aligned segments, every vertex
// inside the room, no repeated vertices, no collinear interior vertices.
// Routes from a dock to itself never reach finish; see outAndBack.
func finish(pts []model.Point, room model.Room) []model.Point {
	pts = orthogonalize(pts)
	for i := range pts {
		pts[i] = room.Clamp(pts[i])
	}
	return compact(pts)
}

// orthogonalize splits diagonal segments into a horizontal then a vertical leg.
func orthogonalize(pts []model.Point) []model.Point {
	if len(pts) < 2 {
		return pts
	}
	out := make([]model.Point, 0, len(pts)*2)
	out = append(out, pts[0])
	for i := 1; i < len(pts); i++ {
		prev, cur := pts[i-1], pts[i]
		if prev.X != cur.X && prev.Y != cur.Y {
			out = append(out, model.Point{X: cur.X, Y: prev.Y})
		}
		out = append(out, cur)
	}
	return out
}

// dedupe drops consecutive coincident vertices.
func dedupe(pts []model.Point) []model.Point {
	if len(pts) < 2 {
		return pts
	}
	out := make([]model.Point, 0, len(pts))
	out = append(out, pts[0])
	for _, p := range pts[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// compact alternates dedupe and simplify until neither removes a vertex.
// Folding a reversal can bring two equal vertices next to each other.
func compact(pts []model.Point) []model.Point {
	for {
		n := len(pts)
		pts = simplify(dedupe(pts))
		if len(pts) == n {
			return pts
		}
	}
}

type axis int

const (
	axisNone axis = iota
	axisH
	axisV
)

func segmentAxis(a, b model.Point) axis {
	switch {
	case a.X != b.X:
		return axisH
	case a.Y != b.Y:
		return axisV
	}
	return axisNone
}

// simplify removes interior vertices that do not change the travel axis.
func simplify(pts []model.Point) []model.Point {
	if len(pts) <= 2 {
		return pts
	}
	out := []model.Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		prev := out[len(out)-1]
		cur, next := pts[i], pts[i+1]
		a1, a2 := segmentAxis(prev, cur), segmentAxis(cur, next)
		if a1 != a2 || a1 == axisNone {
			out = append(out, cur)
		}
	}
	return append(out, pts[len(pts)-1])
}

// valid reports whether a polyline stays in the room and clear of every
// rectangle. The first segment may touch the source rectangle and the last
// segment the destination rectangle, since both start on a rectangle edge.
func valid(pts []model.Point, rects []model.Rect, fromID, toID string, room model.Room) bool {
	for _, p := range pts {
		if !room.Contains(p) {
			return false
		}
	}
	last := len(pts) - 2
	for i := 0; i <= last; i++ {
		a, b := pts[i], pts[i+1]
		for _, rect := range rects {
			if i == 0 && rect.ID == fromID {
				continue
			}
			if i == last && rect.ID == toID {
				continue
			}
			if rect.SegmentIntersects(a, b, 0) {
				return false
			}
		}
	}
	return true
}
