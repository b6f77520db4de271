// Package export writes compiled tile planes to PDF, DXF and Excel files.
package export

import (
	"fmt"
	"math"
	"path"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/tilegen/internal/model"
)

// tileColor represents an RGB color for a region category.
type tileColor struct {
	R, G, B int
}

// tileColors mirrors how the categories look in game.
var tileColors = map[model.TileType]tileColor{
	model.TileWhite:    {R: 235, G: 235, B: 235},
	model.TileWhite4x4: {R: 210, G: 215, B: 225},
	model.TileBlack:    {R: 70, G: 70, B: 70},
	model.TileBlack4x4: {R: 100, G: 95, B: 110},
	model.TileGooSide:  {R: 121, G: 85, B: 72},
	model.TileNodraw:   {R: 255, G: 200, B: 120},
}

var legendOrder = []model.TileType{
	model.TileWhite, model.TileWhite4x4, model.TileBlack,
	model.TileBlack4x4, model.TileGooSide, model.TileNodraw,
}

func colorFor(t model.TileType) tileColor {
	if c, ok := tileColors[t]; ok {
		return c
	}
	return tileColor{R: 255, G: 0, B: 255}
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// planeBounds is the inclusive cell rectangle covering every region.
type planeBounds struct {
	minU, minV, maxU, maxV int
}

func boundsOf(regions []model.Region) planeBounds {
	b := planeBounds{minU: math.MaxInt, minV: math.MaxInt, maxU: math.MinInt, maxV: math.MinInt}
	for _, r := range regions {
		b.minU = min(b.minU, r.MinU)
		b.minV = min(b.minV, r.MinV)
		b.maxU = max(b.maxU, r.MaxU)
		b.maxV = max(b.maxV, r.MaxV)
	}
	return b
}

func (b planeBounds) width() int  { return b.maxU - b.minU + 1 }
func (b planeBounds) height() int { return b.maxV - b.minV + 1 }

// PlaneTitle describes a plane for report headers.
func PlaneTitle(key model.PlaneKey) string {
	title := fmt.Sprintf("normal (%s) at %g", key.Normal, key.Distance)
	if key.Unit != "" {
		title += fmt.Sprintf(", unit %s", key.Unit)
	}
	return title
}

// ExportPDF generates a PDF document showing every compiled plane.
// Each plane is rendered on its own page with its regions drawn to scale
// and bevelled edges highlighted, followed by a summary page.
func ExportPDF(path string, result *model.CompileResult) error {
	if result == nil || len(result.Planes) == 0 {
		return fmt.Errorf("no planes to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, plane := range result.Planes {
		pdf.AddPage()
		renderPlanePage(pdf, plane, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result)

	return pdf.OutputFileAndClose(path)
}

// renderPlanePage draws a single plane on the current PDF page.
func renderPlanePage(pdf *fpdf.Fpdf, plane model.PlaneResult, planeNum int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Plane %d: %s", planeNum, PlaneTitle(plane.Key))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Units: %d | Cells: %d | Brushes: %d", plane.Units, plane.Cells, len(plane.Regions))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	if len(plane.Regions) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.SetXY(marginLeft, drawAreaTop)
		pdf.CellFormat(100, 6, "No brushes on this plane.", "", 0, "L", false, 0, "")
		return
	}

	b := boundsOf(plane.Regions)
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/float64(b.width()), drawHeight/float64(b.height()))
	canvasW := float64(b.width()) * scale
	canvasH := float64(b.height()) * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Empty cells show through as a light grid.
	pdf.SetFillColor(250, 250, 250)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")
	drawCellGrid(pdf, b, scale, offsetX, offsetY)

	for _, r := range plane.Regions {
		// V grows upwards on the page.
		rx := offsetX + float64(r.MinU-b.minU)*scale
		ry := offsetY + float64(b.maxV-r.MaxV)*scale
		rw := float64(r.Width()) * scale
		rh := float64(r.Height()) * scale

		col := colorFor(r.Type)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(rx, ry, rw, rh, "FD")

		drawBevels(pdf, r.Bevels, rx, ry, rw, rh)

		if rw > 15 && rh > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(rw, rh))
			if col.R+col.G+col.B < 300 {
				pdf.SetTextColor(255, 255, 255)
			} else {
				pdf.SetTextColor(0, 0, 0)
			}

			label := path.Base(r.TexDef.Mat.Mat)
			dims := fmt.Sprintf("%dx%d", r.Width(), r.Height())
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < rw-2 {
				pdf.SetXY(rx+(rw-labelW)/2, ry+rh/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if rh > 14 && dimsW < rw-2 {
				pdf.SetXY(rx+(rw-dimsW)/2, ry+rh/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
			pdf.SetTextColor(0, 0, 0)
		}
	}

	drawDimensionAnnotations(pdf, b, offsetX, offsetY, canvasW, canvasH)
	drawLegend(pdf, plane, offsetY+canvasH+5)
}

// drawCellGrid draws faint lines between cells when they are big enough to see.
func drawCellGrid(pdf *fpdf.Fpdf, b planeBounds, scale, offsetX, offsetY float64) {
	if scale < 2 {
		return
	}
	pdf.SetDrawColor(220, 220, 220)
	pdf.SetLineWidth(0.1)
	w := float64(b.width()) * scale
	h := float64(b.height()) * scale
	for u := 1; u < b.width(); u++ {
		x := offsetX + float64(u)*scale
		pdf.Line(x, offsetY, x, offsetY+h)
	}
	for v := 1; v < b.height(); v++ {
		y := offsetY + float64(v)*scale
		pdf.Line(offsetX, y, offsetX+w, y)
	}
}

// drawBevels highlights chamfered edges of a region in red.
func drawBevels(pdf *fpdf.Fpdf, bevels model.Bevels, x, y, w, h float64) {
	if bevels == model.BevelNone {
		return
	}
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.8)
	if bevels.Has(model.BevelUMin) {
		pdf.Line(x, y, x, y+h)
	}
	if bevels.Has(model.BevelUMax) {
		pdf.Line(x+w, y, x+w, y+h)
	}
	if bevels.Has(model.BevelVMin) {
		pdf.Line(x, y+h, x+w, y+h)
	}
	if bevels.Has(model.BevelVMax) {
		pdf.Line(x, y, x+w, y)
	}
}

// drawDimensionAnnotations adds width and height labels outside the plane rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, b planeBounds, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("U %d..%d (%d units)", b.minU, b.maxU, 32*b.width())
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("V %d..%d (%d units)", b.minV, b.maxV, 32*b.height())
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawLegend renders a swatch for each category used on the plane.
func drawLegend(pdf *fpdf.Fpdf, plane model.PlaneResult, startY float64) {
	used := make(map[model.TileType]int)
	bevelled := false
	for _, r := range plane.Regions {
		used[r.Type] += r.Area()
		bevelled = bevelled || r.Bevels != model.BevelNone
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY+5)
	pdf.CellFormat(30, 4, "Categories:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	for _, t := range legendOrder {
		cells, ok := used[t]
		if !ok {
			continue
		}
		col := colorFor(t)
		label := fmt.Sprintf("%s (%d cells)", t, cells)
		labelW := pdf.GetStringWidth(label) + 6

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.1)
		pdf.Rect(xPos, startY+5.5, 3, 3, "FD")
		pdf.SetXY(xPos+4, startY+5)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")
		xPos += labelW + 2
	}

	if bevelled {
		pdf.SetDrawColor(200, 0, 0)
		pdf.SetLineWidth(0.8)
		pdf.Line(xPos, startY+7, xPos+5, startY+7)
		pdf.SetXY(xPos+6, startY+5)
		pdf.CellFormat(20, 4, "bevelled edge", "", 0, "L", false, 0, "")
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result *model.CompileResult) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Tile Compile Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Planes", fmt.Sprintf("%d", len(result.Planes))},
		{"Tile Units", fmt.Sprintf("%d", len(result.UnitFaces))},
		{"Brushes", fmt.Sprintf("%d", result.RegionCount())},
		{"Cells", fmt.Sprintf("%d", result.CellCount())},
		{"Removed Overlays", fmt.Sprintf("%d", len(result.RemovedOverlays))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Plane Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 100, 35, 35, 35, 42}
	headers := []string{"Plane", "Position", "Units", "Cells", "Brushes", "Cells / Brush"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, plane := range result.Planes {
		// Continue the table on a new page when it runs off the bottom.
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		perBrush := 0.0
		if len(plane.Regions) > 0 {
			perBrush = float64(plane.Cells) / float64(len(plane.Regions))
		}
		rowData := []string{
			fmt.Sprintf("%d", i+1),
			PlaneTitle(plane.Key),
			fmt.Sprintf("%d", plane.Units),
			fmt.Sprintf("%d", plane.Cells),
			fmt.Sprintf("%d", len(plane.Regions)),
			fmt.Sprintf("%.1f", perBrush),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.RemovedOverlays) > 0 && y < pageHeight-marginBottom-20 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "Overlays removed (no visible faces)", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(250, 5, fmt.Sprint(result.RemovedOverlays), "", 0, "L", false, 0, "")
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by tilegen", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
