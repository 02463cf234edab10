package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/runaround/internal/model"
)

// Page layout constants (A4 in mm).
const (
	landscapeWidth  = 297.0
	landscapeHeight = 210.0
	portraitWidth   = 210.0
	portraitHeight  = 297.0
	pageMargin      = 10.0
	tableMargin     = 14.0
	titleHeight     = 18.0
	tableFontSize   = 8.0
	tableLineHeight = 3.8
	cellPadding     = 1.5
)

// tableColWidths fits the portrait page between the table margins.
var tableColWidths = []float64{10, 40, 30, 40, 40, 22}

// ExportPDFDiagram writes a one-page landscape PDF with the layout drawing.
func ExportPDFDiagram(path string, p model.Project) error {
	pdf := newPDF("L")
	renderDiagramPage(pdf, BuildScene(p), "Runaround - Diagramm")
	return pdf.OutputFileAndClose(path)
}

// ExportPDFTable writes the path list as a portrait PDF table.
func ExportPDFTable(path string, p model.Project) error {
	pdf := newPDF("P")
	pdf.AddPage()
	renderTablePages(pdf, Table(p), "Runaround - Laufwege")
	return pdf.OutputFileAndClose(path)
}

// ExportPDFCombined writes the diagram on a landscape first page followed by
// the path list on portrait pages. The table is omitted when there are no paths.
func ExportPDFCombined(path string, p model.Project) error {
	pdf := newPDF("L")
	renderDiagramPage(pdf, BuildScene(p), "Runaround - Diagramm")
	if rows := Table(p); len(rows) > 0 {
		pdf.AddPageFormat("P", pdf.GetPageSizeStr("A4"))
		renderTablePages(pdf, rows, "Runaround - Laufwege")
	}
	return pdf.OutputFileAndClose(path)
}

func newPDF(orientation string) *fpdf.Fpdf {
	pdf := fpdf.New(orientation, "mm", "A4", "")
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.SetTitle("Runaround", true)
	pdf.SetCreator("Runaround", true)
	return pdf
}

// renderDiagramPage adds a landscape page and draws the scene scaled to fit
// below the title.
func renderDiagramPage(pdf *fpdf.Fpdf, s Scene, title string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(pageMargin, pageMargin+5, tr(title))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(pageMargin, pageMargin+11, tr("Erstellt am: "+dateString()))

	availW := landscapeWidth - 2*pageMargin
	availH := landscapeHeight - 2*pageMargin - titleHeight
	scale := math.Min(availW/s.Room.Width, availH/s.Room.Height)
	canvasW := s.Room.Width * scale
	canvasH := s.Room.Height * scale
	ox := pageMargin + (availW-canvasW)/2
	oy := pageMargin + titleHeight

	// Room
	setFill(pdf, roomFill)
	setDraw(pdf, roomStroke)
	pdf.SetLineWidth(0.4)
	pdf.Rect(ox, oy, canvasW, canvasH, "FD")

	// Rectangles with centered names
	fontPt := math.Max(4, s.FontSize*scale*72/25.4)
	for _, r := range s.Rects {
		x, y := ox+r.X*scale, oy+r.Y*scale
		w, h := r.Width*scale, r.Height*scale
		setFill(pdf, parseHexColor(r.Color, parseHexColor(model.DefaultRectColor, rgb{})))
		setDraw(pdf, rectStroke)
		pdf.SetLineWidth(0.2)
		pdf.Rect(x, y, w, h, "FD")

		pdf.SetFont("Helvetica", "", fontPt)
		pdf.SetTextColor(17, 24, 39)
		name := tr(r.Name)
		if nw := pdf.GetStringWidth(name); nw < w-1 {
			pdf.Text(x+(w-nw)/2, y+h/2+fontPt*25.4/72/3, name)
		}
	}

	// Paths in draw order, later ones on top
	lineW := math.Max(0.2, s.Thickness*scale)
	pdf.SetLineCapStyle("round")
	pdf.SetLineJoinStyle("round")
	for _, sp := range s.Paths {
		pts := model.FlatToPoints(sp.Points)
		setDraw(pdf, pathColor)
		setFill(pdf, pathColor)
		pdf.SetLineWidth(lineW)
		for i := 1; i < len(pts); i++ {
			pdf.Line(ox+pts[i-1].X*scale, oy+pts[i-1].Y*scale, ox+pts[i].X*scale, oy+pts[i].Y*scale)
		}
		if tip, left, right, ok := ArrowHead(sp.Points); ok {
			pdf.Polygon([]fpdf.PointType{
				{X: ox + tip.X*scale, Y: oy + tip.Y*scale},
				{X: ox + left.X*scale, Y: oy + left.Y*scale},
				{X: ox + right.X*scale, Y: oy + right.Y*scale},
			}, "F")
		}
		drawPathNumber(pdf, ox+pts[0].X*scale, oy+pts[0].Y*scale, sp.Number)
	}
	pdf.SetLineCapStyle("butt")
	pdf.SetLineJoinStyle("miter")
	pdf.SetTextColor(0, 0, 0)
}

// drawPathNumber marks a path's start with its number in a filled circle.
func drawPathNumber(pdf *fpdf.Fpdf, x, y float64, n int) {
	const r = 2.0
	setFill(pdf, pathColor)
	pdf.SetDrawColor(255, 255, 255)
	pdf.SetLineWidth(0.2)
	pdf.Circle(x, y, r, "FD")

	label := fmt.Sprintf("%d", n)
	pdf.SetFont("Helvetica", "B", 5)
	pdf.SetTextColor(255, 255, 255)
	w := pdf.GetStringWidth(label)
	pdf.Text(x-w/2, y+0.7, label)
}

// renderTablePages draws the path list starting on the current portrait
// page. Rows wrap their text and new pages repeat the header.
func renderTablePages(pdf *fpdf.Fpdf, rows []TableRow, title string) {
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(tableMargin, 15, tr(title))
	pdf.SetFont("Helvetica", "", 9)
	pdf.Text(tableMargin, 21, tr("Erstellt am: "+dateString()))

	y := drawTableHeader(pdf, 28, tr)
	pdf.SetFont("Helvetica", "", tableFontSize)
	for i, row := range rows {
		cells := row.Cells()
		lines := make([][]string, len(cells))
		maxLines := 1
		for c, text := range cells {
			lines[c] = pdf.SplitText(tr(text), tableColWidths[c]-2*cellPadding)
			maxLines = max(maxLines, len(lines[c]))
		}
		rowH := float64(maxLines)*tableLineHeight + 2*cellPadding

		if y+rowH > portraitHeight-pageMargin {
			pdf.AddPage()
			y = drawTableHeader(pdf, pageMargin, tr)
			pdf.SetFont("Helvetica", "", tableFontSize)
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetDrawColor(200, 200, 200)
		pdf.SetLineWidth(0.1)
		pdf.SetTextColor(0, 0, 0)

		x := tableMargin
		for c := range cells {
			pdf.Rect(x, y, tableColWidths[c], rowH, "FD")
			for l, line := range lines[c] {
				pdf.SetXY(x+cellPadding, y+cellPadding+float64(l)*tableLineHeight)
				pdf.CellFormat(tableColWidths[c]-2*cellPadding, tableLineHeight, line, "", 0, "L", false, 0, "")
			}
			x += tableColWidths[c]
		}
		y += rowH
	}
}

// drawTableHeader draws the column titles at y and returns the y below them.
func drawTableHeader(pdf *fpdf.Fpdf, y float64, tr func(string) string) float64 {
	const h = 7.0
	pdf.SetFont("Helvetica", "B", tableFontSize)
	setFill(pdf, headerColor)
	pdf.SetDrawColor(255, 255, 255)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetLineWidth(0.1)

	x := tableMargin
	for i, title := range TableHeaders {
		pdf.SetXY(x, y)
		pdf.CellFormat(tableColWidths[i], h, tr(title), "1", 0, "L", true, 0, "")
		x += tableColWidths[i]
	}
	pdf.SetTextColor(0, 0, 0)
	return y + h
}

func setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.R, c.G, c.B) }

func setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.R, c.G, c.B) }
