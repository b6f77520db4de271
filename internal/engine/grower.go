package engine

import (
	"math"
	"math/rand"

	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/plane"
	"github.com/piwi3910/tilegen/internal/seed"
	"github.com/piwi3910/tilegen/internal/texturing"
)

// nodrawSearchDist caps runs of untextured cells; their size doesn't matter.
const nodrawSearchDist = 64

// surface is one plane of units compiled together.
type surface struct {
	key    model.PlaneKey
	normal model.Vec
	axis   model.Axis
	u, v   model.Axis
	orient model.Orient
	units  []model.TileUnit
}

// cellTex is the texture assigned to one cell, along with the sub-tile it
// was drawn for. Values compare equal only if both pointers match.
type cellTex struct {
	tex *model.TexDef
	sub *model.SubTile
}

// layout is the computed texturing of one surface, ready to emit.
type layout struct {
	// orig holds every sub-cell of every unit, void included.
	orig    *plane.Grid[*model.SubTile]
	owner   *plane.Grid[model.TileUnit]
	texture *plane.Grid[cellTex]
	regions []region
	cells   int
}

// region is one brush to emit.
type region struct {
	rect   plane.Rect[cellTex]
	bevels model.Bevels
}

// cellOrigin returns the cell coordinates of a unit's (0, 0) sub-cell.
func cellOrigin(s *surface, unit model.TileUnit) (int, int) {
	front := unit.Position().Add(s.normal.Scale(64))
	u := int(math.Floor((front.Get(s.u) - 64) / 32))
	v := int(math.Floor((front.Get(s.v) - 64) / 32))
	return u, v
}

// layoutSurface textures every cell of a surface and splits the result
// into bevelled regions.
func (c *Compiler) layoutSurface(s *surface) (*layout, error) {
	l := &layout{
		orig:    plane.New[*model.SubTile](nil),
		owner:   plane.New[model.TileUnit](nil),
		texture: plane.New(cellTex{}),
	}
	work := plane.New[*model.SubTile](nil)

	for _, unit := range s.units {
		baseU, baseV := cellOrigin(s, unit)
		antigel := unit.IsAntigel()
		unit.Subtiles(func(u, v int, t model.TileType) {
			sub := c.cache.SubTile(t, antigel)
			l.orig.Set(baseU+u, baseV+v, sub)
			l.owner.Set(baseU+u, baseV+v, unit)
			if t != model.TileVoid {
				work.Set(baseU+u, baseV+v, sub)
			}
		})
	}
	l.cells = work.Len()

	if err := c.grow(s, work, l.texture); err != nil {
		return nil, err
	}
	l.regions = c.splitBevels(l)
	return l, nil
}

// grow repeatedly takes the last remaining cell, finds the largest run of
// matching cells behind it and textures some or all of that run.
func (c *Compiler) grow(s *surface, work *plane.Grid[*model.SubTile], texture *plane.Grid[cellTex]) error {
	for {
		maxU, maxV, sub, ok := work.Largest()
		if !ok {
			return nil
		}

		var gen *texturing.Generator
		maxDist := nodrawSearchDist
		if sub.Type.IsTile() {
			color, _ := sub.Type.Color()
			g, err := c.catalog.Get(color, s.orient)
			if err != nil {
				return err
			}
			gen = g
			maxDist = searchDist(gen)
		}

		width, height := growRun(work, maxU, maxV, sub, maxDist)

		tex := c.nodrawTex
		if gen != nil {
			tex, width, height = c.pickTexture(s, gen, sub, maxU, maxV, width, height)
		}

		for u := maxU - width + 1; u <= maxU; u++ {
			for v := maxV - height + 1; v <= maxV; v++ {
				work.Delete(u, v)
				texture.Set(u, v, cellTex{tex: tex, sub: sub})
			}
		}
	}
}

// searchDist is how far a run of tiles may extend.
func searchDist(gen *texturing.Generator) int {
	mult := 4
	if gen.Has(model.SizeDouble) {
		mult = 8
	}
	return gen.Options.ClumpLength * mult
}

// growRun walks back from (maxU, maxV) along U then V, and along V then U,
// and returns the size of the larger rectangle found. Ties go to U first.
func growRun(work *plane.Grid[*model.SubTile], maxU, maxV int, sub *model.SubTile, maxDist int) (width, height int) {
	minU1, minV1 := maxU, maxV
	minU2, minV2 := maxU, maxV

	for u := maxU; u > maxU-maxDist; u-- {
		if work.Get(u, maxV) != sub {
			break
		}
		minU1 = u
	}
	for v := maxV; v > maxV-maxDist; v-- {
		if !rowMatches(work, minU1, maxU, v, sub) {
			break
		}
		minV1 = v
	}

	for v := maxV; v > maxV-maxDist; v-- {
		if work.Get(maxU, v) != sub {
			break
		}
		minV2 = v
	}
	for u := maxU; u > maxU-maxDist; u-- {
		if !colMatches(work, minV2, maxV, u, sub) {
			break
		}
		minU2 = u
	}

	w1, h1 := 1+maxU-minU1, 1+maxV-minV1
	w2, h2 := 1+maxU-minU2, 1+maxV-minV2
	if w1*h1 >= w2*h2 {
		return w1, h1
	}
	return w2, h2
}

func rowMatches(work *plane.Grid[*model.SubTile], minU, maxU, v int, sub *model.SubTile) bool {
	for u := minU; u <= maxU; u++ {
		if work.Get(u, v) != sub {
			return false
		}
	}
	return true
}

func colMatches(work *plane.Grid[*model.SubTile], minV, maxV, u int, sub *model.SubTile) bool {
	for v := minV; v <= maxV; v++ {
		if work.Get(u, v) != sub {
			return false
		}
	}
	return true
}

// pickTexture chooses a tile size and material for a run ending at
// (maxU, maxV), and returns the texture with the part of the run it claims.
func (c *Compiler) pickTexture(s *surface, gen *texturing.Generator, sub *model.SubTile,
	maxU, maxV, width, height int) (*model.TexDef, int, int) {
	rng := c.seeder.Rand("tex_patch", s.normal, s.key.Distance, maxU, maxV, int(sub.Type), sub.Antigel)

	var sizes []model.TileSize
	var weights []int
	for _, size := range sub.Type.AllowedSizes() {
		if size.Width() > width || size.Height() > height {
			continue
		}
		weight := len(gen.GetAll(size, sub.Antigel)) * gen.Weight(size)
		if weight > 0 {
			sizes = append(sizes, size)
			weights = append(weights, weight)
		}
	}

	size := model.Size4x4
	if len(sizes) > 0 {
		size = sizes[0]
		if gen.Options.MixTiles {
			size = sizes[seed.WeightedChoice(rng, weights)]
		}
	}

	if size == model.Size4x4 {
		// Claim a single cell so other sizes get a chance at the rest.
		width, height = 1, 1
	} else {
		width = claim(rng, width, size.Width())
		height = claim(rng, height, size.Height())
	}

	mats := gen.GetAll(size, sub.Antigel)
	mat := mats[rng.Intn(len(mats))]
	tex := c.cache.TexDef(model.TexDef{
		Mat:     mat,
		Antigel: sub.Antigel,
		UOff:    mod(1+maxU-width, mat.TileSize.Width()),
		VOff:    mod(1+maxV-height, mat.TileSize.Height()),
		Scale:   0.25,
	})
	return tex, width, height
}

// claim picks how many cells of an extent to take, as a whole number of
// footprints, favouring small multiples.
func claim(rng *rand.Rand, extent, footprint int) int {
	n := float64(extent / footprint)
	mult := math.RoundToEven(seed.Triangular(rng, 1, n, math.Min(1.5, n)))
	return int(mult) * footprint
}

// mod is the non-negative remainder of a / b.
func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
