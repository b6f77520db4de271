package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/tilegen/internal/model"
)

// Sheet names used by ExportXLSX.
const (
	RegionsSheet = "Regions"
	SummarySheet = "Summary"
)

var regionHeaders = []string{
	"Plane", "Normal", "Distance", "Min U", "Min V", "Max U", "Max V",
	"Width", "Height", "Type", "Material", "Scale", "U Offset", "V Offset",
	"Antigel", "Bevels", "Solid", "Face",
}

// ExportXLSX writes a workbook with one row per brush on the Regions sheet
// and one row per plane on the Summary sheet.
func ExportXLSX(path string, result *model.CompileResult) error {
	if result == nil || len(result.Planes) == 0 {
		return fmt.Errorf("no planes to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), RegionsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := writeRow(f, RegionsSheet, 1, toRow(regionHeaders)); err != nil {
		return err
	}
	row := 2
	for i, plane := range result.Planes {
		for _, r := range plane.Regions {
			values := []interface{}{
				i + 1, plane.Key.Normal.String(), plane.Key.Distance,
				r.MinU, r.MinV, r.MaxU, r.MaxV, r.Width(), r.Height(),
				r.Type.String(), r.TexDef.Mat.Mat, r.TexDef.FaceScale(),
				r.TexDef.UOff, r.TexDef.VOff, r.TexDef.Antigel, r.Bevels.String(),
				r.SolidID, r.FaceID,
			}
			if err := writeRow(f, RegionsSheet, row, values); err != nil {
				return err
			}
			row++
		}
	}
	if err := styleHeader(f, RegionsSheet, len(regionHeaders), header); err != nil {
		return err
	}
	if err := f.SetColWidth(RegionsSheet, "K", "K", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	summaryHeaders := []string{"Plane", "Normal", "Distance", "Unit", "Units", "Cells", "Brushes"}
	if err := writeRow(f, SummarySheet, 1, toRow(summaryHeaders)); err != nil {
		return err
	}
	for i, plane := range result.Planes {
		values := []interface{}{
			i + 1, plane.Key.Normal.String(), plane.Key.Distance, plane.Key.Unit,
			plane.Units, plane.Cells, len(plane.Regions),
		}
		if err := writeRow(f, SummarySheet, i+2, values); err != nil {
			return err
		}
	}
	totals := []interface{}{"Total", "", "", "", len(result.UnitFaces), result.CellCount(), result.RegionCount()}
	if err := writeRow(f, SummarySheet, len(result.Planes)+2, totals); err != nil {
		return err
	}
	if err := styleHeader(f, SummarySheet, len(summaryHeaders), header); err != nil {
		return err
	}

	return f.SaveAs(path)
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}

// writeRow sets the cells of one row, starting at column A.
func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("cell reference: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("%s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	last, err := excelize.CoordinatesToCellName(cols, 1)
	if err != nil {
		return fmt.Errorf("cell reference: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	return nil
}
