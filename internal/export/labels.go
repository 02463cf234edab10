package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/runaround/internal/model"
)

// LabelInfo holds the data encoded into each path label's QR code.
type LabelInfo struct {
	PathID      string  `json:"id"`
	Number      int     `json:"nr"`
	Description string  `json:"description"`
	From        string  `json:"from"`
	To          string  `json:"to"`
	Distance    float64 `json:"distance_px"`
}

// Label sheet geometry in mm: a 3 x 10 grid of 66.7 x 25.4 cells on Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// ErrNoLabels is returned when a project has no connected paths to label.
var ErrNoLabels = errors.New("no paths to generate labels for")

// ExportLabels generates a PDF of QR-coded labels, one per connected path, in
// draw order. Each label shows the path number, description and endpoints,
// and its QR code carries the same data as JSON.
func ExportLabels(path string, p model.Project) error {
	labels := CollectLabelInfos(p)
	if len(labels) == 0 {
		return ErrNoLabels
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		x := labelMarginLeft + float64(posOnPage%labelCols)*labelWidth
		y := labelMarginTop + float64(posOnPage/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label, tr); err != nil {
			return fmt.Errorf("render label for path %d: %w", label.Number, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws one label with its top-left corner at (x, y).
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo, tr func(string) string) error {
	// light border as a cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("marshal label info: %w", err)
	}
	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("generate QR code: %w", err)
	}

	imgName := "qr_" + info.PathID
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	title := fmt.Sprintf("%d. %s", info.Number, info.Description)
	if info.Description == "" {
		title = fmt.Sprintf("Laufweg %d", info.Number)
	}
	pdf.CellFormat(textW, 4.5, truncate(pdf, tr(title), textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, truncate(pdf, tr(info.From+" -> "+info.To), textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("Distanz: %.0f px", info.Distance), "", 1, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return pdf.Error()
}

// truncate shortens s with an ellipsis until it fits w at the current font.
func truncate(pdf *fpdf.Fpdf, s string, w float64) string {
	if pdf.GetStringWidth(s) <= w {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > w {
		s = s[:len(s)-1]
	}
	return s + "..."
}

// CollectLabelInfos returns label data for every connected path in draw order.
// Placeholder rows are skipped but still count towards the numbering.
func CollectLabelInfos(p model.Project) []LabelInfo {
	var labels []LabelInfo
	for i, row := range p.OrderedPaths() {
		if row.IsPlaceholder {
			continue
		}
		labels = append(labels, LabelInfo{
			PathID:      row.ID,
			Number:      i + 1,
			Description: row.Fields.Description,
			From:        endpointName(p, row.From),
			To:          endpointName(p, row.To),
			Distance:    row.Length(),
		})
	}
	return labels
}

func endpointName(p model.Project, dp model.DockPoint) string {
	name := dp.RectID
	if r := p.FindRect(dp.RectID); r != nil {
		name = r.Name
	}
	return fmt.Sprintf("%s (%s)", name, dp.Side)
}
