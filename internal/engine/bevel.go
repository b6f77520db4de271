package engine

import (
	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/plane"
)

// edgeRun is a maximal stretch of cells along one axis whose pair of edge
// flags is constant. lo and hi are inclusive offsets into the rectangle.
type edgeRun struct {
	min, max bool
	lo, hi   int
}

// splitBevels re-decomposes the textured cells into rectangles, then cuts
// each rectangle wherever the bevel state of its outer edges changes.
func (c *Compiler) splitBevels(l *layout) []region {
	rects := plane.Optimise(l.texture, func(a, b cellTex) bool { return a == b })

	var out []region
	for _, r := range rects {
		width := r.MaxU - r.MinU + 1
		height := r.MaxV - r.MinV + 1

		uMin := make([]bool, height)
		uMax := make([]bool, height)
		for i := range uMin {
			v := r.MinV + i
			uMin[i] = c.edgeBevel(l, r.MinU, v, -1, 0)
			uMax[i] = c.edgeBevel(l, r.MaxU, v, +1, 0)
		}
		vMin := make([]bool, width)
		vMax := make([]bool, width)
		for i := range vMin {
			u := r.MinU + i
			vMin[i] = c.edgeBevel(l, u, r.MinV, 0, -1)
			vMax[i] = c.edgeBevel(l, u, r.MaxV, 0, +1)
		}

		// U-edge flags run along V, V-edge flags run along U.
		for _, ur := range groupRuns(uMin, uMax) {
			for _, vr := range groupRuns(vMin, vMax) {
				var b model.Bevels
				if ur.min && vr.lo == 0 {
					b |= model.BevelUMin
				}
				if ur.max && vr.hi == width-1 {
					b |= model.BevelUMax
				}
				if vr.min && ur.lo == 0 {
					b |= model.BevelVMin
				}
				if vr.max && ur.hi == height-1 {
					b |= model.BevelVMax
				}
				out = append(out, region{
					rect: plane.Rect[cellTex]{
						MinU:  r.MinU + vr.lo,
						MinV:  r.MinV + ur.lo,
						MaxU:  r.MinU + vr.hi,
						MaxV:  r.MinV + ur.hi,
						Value: r.Value,
					},
					bevels: b,
				})
			}
		}
	}
	return out
}

// edgeBevel decides whether the side of cell (u, v) facing (du, dv) is
// chamfered, based on the original cell on the other side.
func (c *Compiler) edgeBevel(l *layout, u, v, du, dv int) bool {
	neighbour, ok := l.orig.Lookup(u+du, v+dv)
	switch {
	case !ok:
	case neighbour.Type == model.TileVoid:
		return true
	case neighbour.Type.IsTile():
		// Seams between tiles are never visible.
		return false
	}
	return c.cache.ShouldBevel(l.owner.Get(u, v), du, dv)
}

// groupRuns collapses two parallel flag sequences into runs where both
// flags stay the same.
func groupRuns(mins, maxs []bool) []edgeRun {
	var runs []edgeRun
	for i := range mins {
		if n := len(runs); n > 0 && runs[n-1].min == mins[i] && runs[n-1].max == maxs[i] {
			runs[n-1].hi = i
			continue
		}
		runs = append(runs, edgeRun{min: mins[i], max: maxs[i], lo: i, hi: i})
	}
	return runs
}
