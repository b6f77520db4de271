// Package importer reads tile layouts: YAML fixtures describing units and
// overlays, and surface grids painted in CSV, Excel or DXF files.
// Surface grids use one character per 32-unit cell (see model.TileTypeFromChar).
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/tilegen/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Tiles    []*model.Tile
	Overlays []PendingOverlay
	Errors   []string
	Warnings []string
}

// Units returns the imported tiles as tile units.
func (r ImportResult) Units() []model.TileUnit {
	out := make([]model.TileUnit, len(r.Tiles))
	for i, t := range r.Tiles {
		out[i] = t
	}
	return out
}

// OK reports whether the import produced no errors.
func (r ImportResult) OK() bool {
	return len(r.Errors) == 0
}

func (r *ImportResult) merge(o ImportResult) {
	r.Tiles = append(r.Tiles, o.Tiles...)
	r.Overlays = append(r.Overlays, o.Overlays...)
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Surface places a grid of cells on a plane.
type Surface struct {
	// Name prefixes the IDs of generated units.
	Name   string    `yaml:"name"`
	Normal model.Vec `yaml:"normal"`
	// Distance is the position of the surface along its normal.
	Distance float64 `yaml:"distance"`
	// Origin is the block offset of the grid's bottom-left corner.
	Origin  [2]int `yaml:"origin"`
	Antigel bool   `yaml:"antigel"`
	// Bevel makes units bevel towards the outside of the grid.
	Bevel bool `yaml:"bevel"`
	// NoMerge keeps every generated unit on its own plane.
	NoMerge bool `yaml:"nomerge"`
}

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// cellsFromRows converts spreadsheet rows into one string per grid row.
// Each cell holds one category character; blank cells are void.
func cellsFromRows(rows [][]string, rowPrefix string, result *ImportResult) []string {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	grid := make([]string, 0, len(rows))
	for i, row := range rows {
		var sb strings.Builder
		for j := 0; j < width; j++ {
			cell := getCell(row, j)
			switch len(cell) {
			case 0:
				sb.WriteByte('.')
			case 1:
				sb.WriteByte(cell[0])
			default:
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("%s %d: Cell %d has %q, using the first character", rowPrefix, i+1, j+1, cell))
				sb.WriteByte(cell[0])
			}
		}
		grid = append(grid, sb.String())
	}
	return grid
}

// ImportCSV imports a surface grid from a CSV file.
// It automatically detects the delimiter.
func ImportCSV(path string, surf Surface) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		result.Warnings = append(result.Warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	other := ImportCSVFromReader(bytes.NewReader(data), delimiter, surf)
	result.merge(other)
	return result
}

// ImportCSVFromReader imports a surface grid from a CSV reader with a specific delimiter.
func ImportCSVFromReader(reader io.Reader, delimiter rune, surf Surface) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	rows := cellsFromRows(records, "Line", &result)
	result.merge(SurfaceTiles(surf, rows))
	return result
}

// ImportExcel imports a surface grid from the first sheet of an Excel file.
func ImportExcel(path string, surf Surface) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	grid := cellsFromRows(rows, "Row", &result)
	result.merge(SurfaceTiles(surf, grid))
	return result
}

// SurfaceTiles splits a grid of category characters into 4x4 tile units.
// The first row is the top of the surface (highest V). Units that would be
// entirely void are skipped. Ragged or partial grids are padded with void.
func SurfaceTiles(surf Surface, rows []string) ImportResult {
	result := ImportResult{}
	label := surf.Name
	if label == "" {
		label = "surface"
	}

	axis, ok := surf.Normal.NormalAxis()
	if !ok {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s: Normal (%s) must point along an axis", label, surf.Normal))
		return result
	}
	uAxis, vAxis := model.PlaneAxes(axis)

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	height := len(rows)
	if width == 0 || height == 0 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("%s: Surface is empty", label))
		return result
	}
	if width%4 != 0 || height%4 != 0 {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s: %dx%d cells is not a whole number of blocks, padding with void", label, width, height))
	}

	// cell returns the category at grid column c, counting rows from the bottom.
	cell := func(c, fromBottom int) (model.TileType, bool) {
		r := height - 1 - fromBottom
		if r < 0 || c >= len(rows[r]) {
			return model.TileVoid, true
		}
		return model.TileTypeFromChar(rows[r][c])
	}

	blocksU := (width + 3) / 4
	blocksV := (height + 3) / 4
	for bu := 0; bu < blocksU; bu++ {
		for bv := 0; bv < blocksV; bv++ {
			center := model.WithAxes(
				uAxis, float64(128*(surf.Origin[0]+bu)+64),
				vAxis, float64(128*(surf.Origin[1]+bv)+64),
				axis, 0,
			).Add(surf.Normal.Scale(surf.Distance - 64))

			tile := &model.Tile{
				Key:     fmt.Sprintf("%s_%d_%d", label, bu, bv),
				Pos:     center,
				Norm:    surf.Normal,
				Antigel: surf.Antigel,
				NoMerge: surf.NoMerge,
			}
			empty := true
			for u := 0; u < 4; u++ {
				for v := 0; v < 4; v++ {
					c, fromBottom := 4*bu+u, 4*bv+v
					t, ok := cell(c, fromBottom)
					if !ok {
						result.Errors = append(result.Errors,
							fmt.Sprintf("%s: Unknown category %q at row %d, column %d",
								label, rows[height-1-fromBottom][c], height-fromBottom, c+1))
						t = model.TileVoid
					}
					tile.Cells[u][v] = t
					if t != model.TileVoid {
						empty = false
					}
				}
			}
			if empty {
				continue
			}
			if surf.Bevel {
				tile.Bevel = [4]bool{bu == 0, bu == blocksU-1, bv == 0, bv == blocksV-1}
			}
			result.Tiles = append(result.Tiles, tile)
		}
	}
	return result
}
