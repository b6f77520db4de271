package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/piwi3910/tilegen/internal/engine"
	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/scene"
)

// PendingOverlay is an overlay from a layout that has not been added to a
// scene yet. Units lists the tile units it should be bound to.
type PendingOverlay struct {
	Material string
	Origin   model.Vec
	Sides    []int
	Units    []string
}

// Bind adds the pending overlays to sc and returns the bindings to pass to
// the compiler.
func Bind(sc *scene.Scene, overlays []PendingOverlay) []engine.OverlayBinding {
	bindings := make([]engine.OverlayBinding, 0, len(overlays))
	for _, p := range overlays {
		over := sc.AddOverlay(p.Material, p.Origin, p.Sides)
		if len(p.Units) == 0 {
			continue
		}
		bindings = append(bindings, engine.OverlayBinding{
			OverlayID: over.ID,
			Units:     append([]string(nil), p.Units...),
		})
	}
	return bindings
}

type vec3 [3]float64

func (v vec3) vec() model.Vec {
	return model.Vec{X: v[0], Y: v[1], Z: v[2]}
}

type layoutFile struct {
	Tiles    []tileFile    `yaml:"tiles"`
	Surfaces []surfaceFile `yaml:"surfaces"`
	Overlays []overlayFile `yaml:"overlays"`
}

type tileFile struct {
	ID      string   `yaml:"id"`
	Pos     vec3     `yaml:"pos"`
	Normal  vec3     `yaml:"normal"`
	Antigel bool     `yaml:"antigel"`
	Merge   *bool    `yaml:"merge"`
	Bevel   [4]bool  `yaml:"bevel"`
	Cells   []string `yaml:"cells"`
}

type surfaceFile struct {
	Name     string   `yaml:"name"`
	Normal   vec3     `yaml:"normal"`
	Distance float64  `yaml:"distance"`
	Origin   [2]int   `yaml:"origin"`
	Antigel  bool     `yaml:"antigel"`
	Bevel    bool     `yaml:"bevel"`
	NoMerge  bool     `yaml:"nomerge"`
	Rows     []string `yaml:"rows"`
	File     string   `yaml:"file"`
}

type overlayFile struct {
	Material string   `yaml:"material"`
	Origin   vec3     `yaml:"origin"`
	Sides    []int    `yaml:"sides"`
	Units    []string `yaml:"units"`
}

// ImportLayout reads a YAML layout file. Surface files are resolved
// relative to the layout.
func ImportLayout(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	return ParseLayout(data, filepath.Dir(path))
}

// ParseLayout parses a YAML layout. dir is used to resolve surface files.
func ParseLayout(data []byte, dir string) ImportResult {
	result := ImportResult{}

	var lf layoutFile
	if err := yaml.Unmarshal(data, &lf); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot parse layout: %v", err))
		return result
	}

	for i, tf := range lf.Tiles {
		tile, err := tf.tile()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Tile %d: %v", i+1, err))
			continue
		}
		result.Tiles = append(result.Tiles, tile)
	}

	for i, sf := range lf.Surfaces {
		surf := Surface{
			Name:     sf.Name,
			Normal:   sf.Normal.vec(),
			Distance: sf.Distance,
			Origin:   sf.Origin,
			Antigel:  sf.Antigel,
			Bevel:    sf.Bevel,
			NoMerge:  sf.NoMerge,
		}
		if surf.Name == "" {
			surf.Name = fmt.Sprintf("surface%d", i+1)
		}
		switch {
		case sf.File != "" && len(sf.Rows) > 0:
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s: Surface has both rows and a file", surf.Name))
		case sf.File != "":
			path := sf.File
			if !filepath.IsAbs(path) {
				path = filepath.Join(dir, path)
			}
			result.merge(ImportSurfaceFile(path, surf))
		default:
			result.merge(SurfaceTiles(surf, sf.Rows))
		}
	}

	for i, of := range lf.Overlays {
		if of.Material == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Overlay %d: Material is required", i+1))
			continue
		}
		result.Overlays = append(result.Overlays, PendingOverlay{
			Material: of.Material,
			Origin:   of.Origin.vec(),
			Sides:    of.Sides,
			Units:    of.Units,
		})
	}

	if len(result.Tiles) == 0 && len(result.Errors) == 0 {
		result.Warnings = append(result.Warnings, "Layout has no tiles")
	}
	return result
}

// ImportSurfaceFile reads a surface grid, picking the reader by extension.
func ImportSurfaceFile(path string, surf Surface) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".tsv", ".txt":
		return ImportCSV(path, surf)
	case ".xlsx", ".xlsm":
		return ImportExcel(path, surf)
	case ".dxf":
		return ImportDXF(path, surf)
	default:
		return ImportResult{Errors: []string{
			fmt.Sprintf("%s: Unsupported surface file %q", surf.Name, filepath.Base(path)),
		}}
	}
}

func (tf tileFile) tile() (*model.Tile, error) {
	if tf.ID == "" {
		return nil, fmt.Errorf("id is required")
	}
	if len(tf.Cells) != 4 {
		return nil, fmt.Errorf("%s: cells needs 4 rows, got %d", tf.ID, len(tf.Cells))
	}
	tile := &model.Tile{
		Key:     tf.ID,
		Pos:     tf.Pos.vec(),
		Norm:    tf.Normal.vec(),
		Antigel: tf.Antigel,
		NoMerge: tf.Merge != nil && !*tf.Merge,
		Bevel:   tf.Bevel,
	}
	for r, row := range tf.Cells {
		row = strings.ReplaceAll(row, " ", "")
		if len(row) != 4 {
			return nil, fmt.Errorf("%s: row %d needs 4 cells, got %q", tf.ID, r+1, row)
		}
		for c := 0; c < 4; c++ {
			t, ok := model.TileTypeFromChar(row[c])
			if !ok {
				return nil, fmt.Errorf("%s: unknown category %q in row %d", tf.ID, row[c], r+1)
			}
			tile.Cells[c][3-r] = t
		}
	}
	return tile, nil
}
