package importer

import (
	"fmt"
	"math"
	"slices"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/runaround/internal/model"
)

const (
	arcSteps    = 16
	circleSteps = 32
	joinEpsilon = 0.01
)

// outline is a closed polygon read from a drawing.
type outline []model.Point

// segment is one straight piece of a LINE or a sampled ARC.
type segment struct {
	start model.Point
	end   model.Point
}

// shapeCollector sorts drawing entities into finished outlines and loose
// segments that still need chaining.
type shapeCollector struct {
	outlines []outline
	loose    []segment
	result   *ImportResult
}

func (c *shapeCollector) add(ent entity.Entity) {
	switch e := ent.(type) {
	case *entity.LwPolyline:
		if o := polylineOutline(e); len(o) >= 3 {
			c.outlines = append(c.outlines, o)
		} else {
			c.result.warnf("Skipped LWPOLYLINE with fewer than 3 vertices")
		}
	case *entity.Circle:
		center := model.Point{X: e.Center[0], Y: e.Center[1]}
		ring := sampleArc(center, e.Radius, 0, 2*math.Pi, circleSteps)
		c.outlines = append(c.outlines, ring[:circleSteps])
	case *entity.Arc:
		center := model.Point{X: e.Circle.Center[0], Y: e.Circle.Center[1]}
		from := e.Angle[0] * math.Pi / 180
		to := e.Angle[1] * math.Pi / 180
		if to <= from {
			to += 2 * math.Pi
		}
		c.loose = append(c.loose, pointsToSegments(sampleArc(center, e.Circle.Radius, from, to-from, arcSteps))...)
	case *entity.Line:
		c.loose = append(c.loose, segment{
			start: model.Point{X: e.Start[0], Y: e.Start[1]},
			end:   model.Point{X: e.End[0], Y: e.End[1]},
		})
	}
}

// ImportDXF imports rectangles from a DXF file. Each closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) becomes one
// rectangle covering the shape's bounding box. Drawing units are taken as
// room pixels; the drawing's y axis points up, so it is flipped and the
// whole layout is moved to the origin.
func ImportDXF(path string) ImportResult {
	var result ImportResult

	drawing, err := dxf.Open(path)
	if err != nil {
		result.errorf("Cannot open DXF file: %v", err)
		return result
	}
	ents := drawing.Entities()
	if len(ents) == 0 {
		result.errorf("DXF file contains no entities")
		return result
	}

	c := shapeCollector{result: &result}
	for _, ent := range ents {
		c.add(ent)
	}
	shapes := append(c.outlines, chainSegments(c.loose, joinEpsilon)...)
	if len(shapes) == 0 {
		result.errorf("No closed shapes found in DXF file")
		return result
	}

	var extent outline
	for _, o := range shapes {
		lo, hi := o.bounds()
		extent = append(extent, lo, hi)
	}
	origin, top := extent.bounds()

	for _, o := range shapes {
		lo, hi := o.bounds()
		w, h := hi.X-lo.X, hi.Y-lo.Y
		if w < joinEpsilon || h < joinEpsilon {
			result.warnf("Skipped degenerate shape (%.2f x %.2f)", w, h)
			continue
		}
		n := len(result.Rects) + 1
		if w < model.MinRectSize || h < model.MinRectSize {
			result.warnf("Shape %d raised to the %.0f px minimum size", n, model.MinRectSize)
		}
		result.Rects = append(result.Rects, model.NewRect(fmt.Sprintf("DXF Rect %d", n),
			lo.X-origin.X, top.Y-hi.Y,
			max(w, model.MinRectSize), max(h, model.MinRectSize)))
	}
	return result
}

func (o outline) bounds() (lo, hi model.Point) {
	lo = model.Point{X: math.Inf(1), Y: math.Inf(1)}
	hi = model.Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range o {
		lo = model.Point{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
		hi = model.Point{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
	}
	return lo, hi
}

// area is the absolute shoelace area.
func (o outline) area() float64 {
	if len(o) < 3 {
		return 0
	}
	var twice float64
	prev := o[len(o)-1]
	for _, p := range o {
		twice += prev.X*p.Y - p.X*prev.Y
		prev = p
	}
	return math.Abs(twice) / 2
}

// polylineOutline reads the vertices of a LWPOLYLINE. A non-zero bulge on a
// vertex turns the edge to the next vertex into an arc.
func polylineOutline(lw *entity.LwPolyline) outline {
	var o outline
	for i, v := range lw.Vertices {
		here := model.Point{X: v[0], Y: v[1]}
		var b float64
		if i < len(lw.Bulges) {
			b = lw.Bulges[i]
		}
		if math.Abs(b) < 1e-9 {
			o = append(o, here)
			continue
		}
		w := lw.Vertices[(i+1)%len(lw.Vertices)]
		arc := bulgeArc(here, model.Point{X: w[0], Y: w[1]}, b)
		o = append(o, arc[:len(arc)-1]...)
	}
	return o
}

// bulgeArc samples the arc from p to q whose bulge b is the tangent of a
// quarter of the included angle. Positive bulges run counter-clockwise.
func bulgeArc(p, q model.Point, b float64) outline {
	dx, dy := q.X-p.X, q.Y-p.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return outline{p, q}
	}
	// The center sits on the chord's perpendicular bisector.
	k := (1 - b*b) / (4 * b)
	center := model.Point{X: (p.X+q.X)/2 - k*dy, Y: (p.Y+q.Y)/2 + k*dx}
	radius := chord * (1 + b*b) / (4 * math.Abs(b))
	from := math.Atan2(p.Y-center.Y, p.X-center.X)
	return sampleArc(center, radius, from, 4*math.Atan(b), arcSteps)
}

// sampleArc returns steps+1 points from angle from through from+sweep.
func sampleArc(center model.Point, r, from, sweep float64, steps int) []model.Point {
	pts := make([]model.Point, steps+1)
	for i := range pts {
		a := from + sweep*float64(i)/float64(steps)
		pts[i] = model.Point{X: center.X + r*math.Cos(a), Y: center.Y + r*math.Sin(a)}
	}
	return pts
}

func pointsToSegments(pts []model.Point) []segment {
	var segs []segment
	for i := 1; i < len(pts); i++ {
		segs = append(segs, segment{start: pts[i-1], end: pts[i]})
	}
	return segs
}

// chainSegments joins segments end to end into closed outlines, largest area
// first. Chains that do not close within eps are dropped.
func chainSegments(segs []segment, eps float64) []outline {
	used := make([]bool, len(segs))
	// next finds an unused segment touching p and returns its far end.
	next := func(p model.Point) (model.Point, bool) {
		for i, s := range segs {
			switch {
			case used[i]:
			case pointsClose(p, s.start, eps):
				used[i] = true
				return s.end, true
			case pointsClose(p, s.end, eps):
				used[i] = true
				return s.start, true
			}
		}
		return model.Point{}, false
	}

	var closed []outline
	for i, s := range segs {
		if used[i] {
			continue
		}
		used[i] = true
		chain := outline{s.start, s.end}
		for {
			far, ok := next(chain[len(chain)-1])
			if !ok {
				break
			}
			chain = append(chain, far)
		}
		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], eps) {
			closed = append(closed, chain[:len(chain)-1])
		}
	}

	slices.SortStableFunc(closed, func(a, b outline) int {
		switch aa, ba := a.area(), b.area(); {
		case aa > ba:
			return -1
		case aa < ba:
			return 1
		}
		return 0
	})
	return closed
}

func pointsClose(a, b model.Point, eps float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= eps
}
