package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/tilegen/internal/model"
)

// BrushLabel holds the data encoded into each brush label's QR code.
type BrushLabel struct {
	Plane    int          `json:"plane"`
	SolidID  int          `json:"solid"`
	FaceID   int          `json:"face"`
	Material string       `json:"material"`
	Type     string       `json:"type"`
	MinU     int          `json:"min_u"`
	MinV     int          `json:"min_v"`
	Width    int          `json:"width"`
	Height   int          `json:"height"`
	UOff     int          `json:"uoff"`
	VOff     int          `json:"voff"`
	Bevels   model.Bevels `json:"bevels"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per generated brush.
// Each label shows the brush material, size and plane position, and the QR
// code carries the full BrushLabel as JSON so a brush can be looked up by
// its solid ID while reviewing a build.
func ExportLabels(path string, result *model.CompileResult) error {
	labels := CollectBrushLabels(result)
	if len(labels) == 0 {
		return fmt.Errorf("no brushes to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for solid %d: %w", label.SolidID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info BrushLabel) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Solid IDs are unique within a scene.
	imgName := fmt.Sprintf("qr_solid_%d", info.SolidID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)

	// Keep the end of long material paths, it is the distinctive part.
	mat := info.Material
	if pdf.GetStringWidth(mat) > textW {
		for len(mat) > 0 && pdf.GetStringWidth("..."+mat) > textW {
			mat = mat[1:]
		}
		mat = "..." + mat
	}
	pdf.CellFormat(textW, 4.5, mat, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%s, %dx%d cells", info.Type, info.Width, info.Height)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	where := fmt.Sprintf("Plane %d @ (%d, %d), solid %d", info.Plane, info.MinU, info.MinV, info.SolidID)
	pdf.CellFormat(textW, 3, where, "", 1, "L", false, 0, "")

	if info.Bevels != model.BevelNone {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 0, 0)
		pdf.CellFormat(textW, 3, "Bevelled: "+info.Bevels.String(), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// CollectBrushLabels extracts label information from a compile result
// for use in testing or alternative export formats.
func CollectBrushLabels(result *model.CompileResult) []BrushLabel {
	if result == nil {
		return nil
	}
	var labels []BrushLabel
	for planeIdx, plane := range result.Planes {
		for _, r := range plane.Regions {
			labels = append(labels, BrushLabel{
				Plane:    planeIdx + 1,
				SolidID:  r.SolidID,
				FaceID:   r.FaceID,
				Material: r.TexDef.Mat.Mat,
				Type:     r.Type.String(),
				MinU:     r.MinU,
				MinV:     r.MinV,
				Width:    r.Width(),
				Height:   r.Height(),
				UOff:     r.TexDef.UOff,
				VOff:     r.TexDef.VOff,
				Bevels:   r.Bevels,
			})
		}
	}
	return labels
}
