package engine

import (
	"sort"

	"go.uber.org/zap"
)

// OverlayBinding attaches an overlay to the faces generated for some units.
// Several bindings may name the same overlay; their units are combined.
type OverlayBinding struct {
	OverlayID int      `json:"overlay" yaml:"overlay"`
	Units     []string `json:"units" yaml:"units"`
}

// bindOverlays points each bound overlay at the faces now covering its
// units, plus the faces it already declared. Faces drawn with the nodraw
// material are skipped. Overlays left with no faces are removed, and their
// IDs returned in ascending order.
func (c *Compiler) bindOverlays(bindings []OverlayBinding, unitFaces map[string][]int, log *zap.Logger) []int {
	units := make(map[int][]string)
	var order []int
	for _, b := range bindings {
		if _, ok := units[b.OverlayID]; !ok {
			order = append(order, b.OverlayID)
		}
		units[b.OverlayID] = append(units[b.OverlayID], b.Units...)
	}
	sort.Ints(order)

	var removed []int
	for _, id := range order {
		over, ok := c.builder.Overlay(id)
		if !ok {
			continue
		}

		faces := make(map[int]bool)
		for _, fid := range over.Sides {
			faces[fid] = true
		}
		for _, unit := range units[id] {
			for _, fid := range unitFaces[unit] {
				faces[fid] = true
			}
		}

		sides := make([]int, 0, len(faces))
		for fid := range faces {
			// Faces unknown to the scene were declared by hand; keep them.
			if face, ok := c.builder.Face(fid); ok && face.Material == c.catalog.Nodraw {
				continue
			}
			sides = append(sides, fid)
		}

		if len(sides) == 0 {
			log.Debug("removing overlay with no faces", zap.Int("overlay", id))
			c.builder.RemoveOverlay(id)
			removed = append(removed, id)
			continue
		}
		sort.Ints(sides)
		over.Sides = sides
	}
	return removed
}
