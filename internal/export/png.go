package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/piwi3910/runaround/internal/model"
)

// PNGOptions configures raster output.
type PNGOptions struct {
	Scale   float64 // output pixels per room pixel
	Padding int     // border around the room in output pixels
}

// DefaultPNGOptions renders the room at its own size with a small border.
func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Scale: 1, Padding: 16}
}

// raster draws scene primitives onto an RGBA image in room coordinates.
type raster struct {
	img   *image.RGBA
	scale float64
	ox    float64
	oy    float64
	face  font.Face
}

func (r *raster) fillPolygon(c rgb, pts ...model.Point) {
	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	for i, p := range pts {
		x := float32(r.ox + p.X*r.scale)
		y := float32(r.oy + p.Y*r.scale)
		if i == 0 {
			z.MoveTo(x, y)
		} else {
			z.LineTo(x, y)
		}
	}
	z.ClosePath()
	z.Draw(r.img, b, image.NewUniform(toRGBA(c)), image.Point{})
}

func (r *raster) fillRect(c rgb, x, y, w, h float64) {
	r.fillPolygon(c,
		model.Point{X: x, Y: y},
		model.Point{X: x + w, Y: y},
		model.Point{X: x + w, Y: y + h},
		model.Point{X: x, Y: y + h},
	)
}

// strokeRect outlines a rectangle with a line of the given width in output pixels.
func (r *raster) strokeRect(c rgb, x, y, w, h, width float64) {
	t := width / r.scale
	r.fillRect(c, x, y, w, t)
	r.fillRect(c, x, y+h-t, w, t)
	r.fillRect(c, x, y, t, h)
	r.fillRect(c, x+w-t, y, t, h)
}

// strokeOrthogonal draws an axis-aligned polyline as a chain of bars. Each bar
// extends half the width past its endpoints so corners are filled.
func (r *raster) strokeOrthogonal(c rgb, pts []model.Point, width float64) {
	h := width / 2
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		x0, x1 := math.Min(a.X, b.X)-h, math.Max(a.X, b.X)+h
		y0, y1 := math.Min(a.Y, b.Y)-h, math.Max(a.Y, b.Y)+h
		r.fillRect(c, x0, y0, x1-x0, y1-y0)
	}
}

// text draws s centered on (x, y) in room coordinates.
func (r *raster) text(c rgb, x, y float64, s string) {
	w := font.MeasureString(r.face, s)
	m := r.face.Metrics()
	px := fixed.Int26_6((r.ox+x*r.scale)*64) - w/2
	py := fixed.Int26_6((r.oy+y*r.scale)*64) + (m.Ascent-m.Descent)/2
	d := &font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(toRGBA(c)),
		Face: r.face,
		Dot:  fixed.Point26_6{X: px, Y: py},
	}
	d.DrawString(s)
}

func toRGBA(c rgb) color.RGBA {
	return color.RGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: 255}
}

func newFace(size float64) (font.Face, error) {
	fnt, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RenderImage rasterizes the project's diagram.
func RenderImage(p model.Project, opts PNGOptions) (*image.RGBA, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	s := BuildScene(p)
	w := int(math.Ceil(s.Room.Width*opts.Scale)) + 2*opts.Padding
	h := int(math.Ceil(s.Room.Height*opts.Scale)) + 2*opts.Padding

	face, err := newFace(math.Max(6, s.FontSize*opts.Scale))
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	defer face.Close()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	r := &raster{
		img:   img,
		scale: opts.Scale,
		ox:    float64(opts.Padding),
		oy:    float64(opts.Padding),
		face:  face,
	}

	r.fillRect(roomFill, 0, 0, s.Room.Width, s.Room.Height)
	r.strokeRect(roomStroke, 0, 0, s.Room.Width, s.Room.Height, 2)

	for _, rect := range s.Rects {
		fill := parseHexColor(rect.Color, parseHexColor(model.DefaultRectColor, rgb{}))
		r.fillRect(fill, rect.X, rect.Y, rect.Width, rect.Height)
		r.strokeRect(rectStroke, rect.X, rect.Y, rect.Width, rect.Height, 1)
		c := rect.Center()
		r.text(rgb{17, 24, 39}, c.X, c.Y, rect.Name)
	}

	for _, sp := range s.Paths {
		r.strokeOrthogonal(pathColor, model.FlatToPoints(sp.Points), s.Thickness)
		if tip, left, right, ok := ArrowHead(sp.Points); ok {
			r.fillPolygon(pathColor, tip, left, right)
		}
		start := model.FlatToPoints(sp.Points)[0]
		r.text(rgb{255, 255, 255}, start.X, start.Y, strconv.Itoa(sp.Number))
	}

	return img, nil
}

// WritePNG encodes the project's diagram as PNG to w.
func WritePNG(w io.Writer, p model.Project, opts PNGOptions) error {
	img, err := RenderImage(p, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// ExportPNG writes the project's diagram to a PNG file.
func ExportPNG(path string, p model.Project, opts PNGOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, p, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
