package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"

	"github.com/piwi3910/tilegen/internal/model"
)

// BevelLayer holds a LINE for every bevelled region edge.
const BevelLayer = "bevels"

// planeGap is the space left between planes laid out side by side, in world units.
const planeGap = 128.0

var planeColors = []color.ColorNumber{
	color.Cyan, color.Green, color.Yellow, color.Blue, color.Magenta, color.White,
}

type edgeLine struct {
	x1, y1, x2, y2 float64
}

// ExportDXF writes each plane's brushes as closed LWPOLYLINEs on a layer per
// plane, in world units with U along X and V along Y. Planes are placed side
// by side left to right in result order. Bevelled edges are drawn as LINEs on
// BevelLayer.
func ExportDXF(path string, result *model.CompileResult) error {
	if result == nil || len(result.Planes) == 0 {
		return fmt.Errorf("no planes to export")
	}

	d := dxf.NewDrawing()
	var bevels []edgeLine
	offsetX := 0.0

	for i, plane := range result.Planes {
		layer := fmt.Sprintf("plane_%d", i+1)
		if _, err := d.AddLayer(layer, planeColors[i%len(planeColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", layer, err)
		}
		if len(plane.Regions) == 0 {
			continue
		}

		b := boundsOf(plane.Regions)
		for _, r := range plane.Regions {
			x0 := offsetX + float64(32*(r.MinU-b.minU))
			y0 := float64(32 * (r.MinV - b.minV))
			x1 := x0 + float64(32*r.Width())
			y1 := y0 + float64(32*r.Height())

			if _, err := d.LwPolyline(true,
				[]float64{x0, y0}, []float64{x1, y0}, []float64{x1, y1}, []float64{x0, y1},
			); err != nil {
				return fmt.Errorf("plane %d region at (%d, %d): %w", i+1, r.MinU, r.MinV, err)
			}

			if r.Bevels.Has(model.BevelUMin) {
				bevels = append(bevels, edgeLine{x0, y0, x0, y1})
			}
			if r.Bevels.Has(model.BevelUMax) {
				bevels = append(bevels, edgeLine{x1, y0, x1, y1})
			}
			if r.Bevels.Has(model.BevelVMin) {
				bevels = append(bevels, edgeLine{x0, y0, x1, y0})
			}
			if r.Bevels.Has(model.BevelVMax) {
				bevels = append(bevels, edgeLine{x0, y1, x1, y1})
			}
		}
		offsetX += float64(32*b.width()) + planeGap
	}

	if len(bevels) > 0 {
		if _, err := d.AddLayer(BevelLayer, color.Red, dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", BevelLayer, err)
		}
		for _, e := range bevels {
			if _, err := d.Line(e.x1, e.y1, 0, e.x2, e.y2, 0); err != nil {
				return fmt.Errorf("bevel line: %w", err)
			}
		}
	}

	return d.SaveAs(path)
}
