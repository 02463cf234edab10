package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"

	"github.com/piwi3910/runaround/internal/model"
)

// DXF layer names.
const (
	LayerRoom   = "ROOM"
	LayerRects  = "RECTS"
	LayerPaths  = "PATHS"
	LayerLabels = "LABELS"
)

// ExportDXF writes the layout as a DXF drawing in room pixel units. The y axis
// is flipped so the drawing reads the same way up as the editor. Paths are
// drawn with their lane offsets applied.
func ExportDXF(path string, p model.Project) error {
	s := BuildScene(p)
	d := dxf.NewDrawing()

	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerRoom, color.White},
		{LayerRects, color.Cyan},
		{LayerPaths, color.Red},
		{LayerLabels, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, table.LT_CONTINUOUS, false); err != nil {
			return fmt.Errorf("add layer %s: %w", l.name, err)
		}
	}

	flip := func(y float64) float64 { return s.Room.Height - y }

	if err := d.ChangeLayer(LayerRoom); err != nil {
		return err
	}
	if err := box(d, 0, 0, s.Room.Width, s.Room.Height, flip); err != nil {
		return fmt.Errorf("draw room: %w", err)
	}

	textH := s.FontSize * 0.8
	for _, r := range s.Rects {
		if err := d.ChangeLayer(LayerRects); err != nil {
			return err
		}
		if err := box(d, r.X, r.Y, r.Width, r.Height, flip); err != nil {
			return fmt.Errorf("draw rect %s: %w", r.ID, err)
		}
		if err := d.ChangeLayer(LayerLabels); err != nil {
			return err
		}
		c := r.Center()
		if _, err := d.Text(r.Name, r.X+2, flip(c.Y), 0, textH); err != nil {
			return fmt.Errorf("label rect %s: %w", r.ID, err)
		}
	}

	if err := d.ChangeLayer(LayerPaths); err != nil {
		return err
	}
	for _, sp := range s.Paths {
		pts := model.FlatToPoints(sp.Points)
		vertices := make([][]float64, len(pts))
		for i, pt := range pts {
			vertices[i] = []float64{pt.X, flip(pt.Y)}
		}
		if _, err := d.LwPolyline(false, vertices...); err != nil {
			return fmt.Errorf("draw path %d: %w", sp.Number, err)
		}
		if tip, left, right, ok := ArrowHead(sp.Points); ok {
			if _, err := d.LwPolyline(true,
				[]float64{tip.X, flip(tip.Y)},
				[]float64{left.X, flip(left.Y)},
				[]float64{right.X, flip(right.Y)},
			); err != nil {
				return fmt.Errorf("draw arrow %d: %w", sp.Number, err)
			}
		}
	}

	return d.SaveAs(path)
}

// box draws a closed rectangle outline given in room coordinates.
func box(d *drawing.Drawing, x, y, w, h float64, flip func(float64) float64) error {
	_, err := d.LwPolyline(true,
		[]float64{x, flip(y)},
		[]float64{x + w, flip(y)},
		[]float64{x + w, flip(y + h)},
		[]float64{x, flip(y + h)},
	)
	return err
}
