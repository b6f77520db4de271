package engine

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/plane"
	"github.com/piwi3910/tilegen/internal/scene"
	"github.com/piwi3910/tilegen/internal/texturing"
)

var (
	up   = model.Vec{Z: 1}
	down = model.Vec{Z: -1}
	east = model.Vec{X: 1}
)

// floorTile makes a floor unit covering cells [4i, 4i+4) x [4j, 4j+4).
func floorTile(i, j int, t model.TileType) *model.Tile {
	tile := model.NewTile(model.Vec{X: float64(64 + 128*i), Y: float64(64 + 128*j), Z: -64}, up, t)
	tile.Key = fmt.Sprintf("floor_%d_%d", i, j)
	return tile
}

// wallTile makes an east-facing wall unit covering cells [4i, 4i+4) x [4j, 4j+4).
func wallTile(i, j int, t model.TileType) *model.Tile {
	tile := model.NewTile(model.Vec{X: -64, Y: float64(64 + 128*i), Z: float64(64 + 128*j)}, east, t)
	tile.Key = fmt.Sprintf("wall_%d_%d", i, j)
	return tile
}

func units(tiles ...*model.Tile) []model.TileUnit {
	out := make([]model.TileUnit, len(tiles))
	for i, t := range tiles {
		out[i] = t
	}
	return out
}

func newCompiler(settings Settings) (*Compiler, *scene.Scene) {
	sc := scene.New()
	return New(settings, texturing.DefaultCatalog(nil), sc, nil), sc
}

func compile(t *testing.T, settings Settings, us []model.TileUnit, bindings ...OverlayBinding) (*model.CompileResult, *scene.Scene) {
	t.Helper()
	return compileWith(t, texturing.DefaultCatalog(nil), settings, us, bindings...)
}

func compileWith(t *testing.T, cat *texturing.Catalog, settings Settings, us []model.TileUnit, bindings ...OverlayBinding) (*model.CompileResult, *scene.Scene) {
	t.Helper()
	sc := scene.New()
	res, err := New(settings, cat, sc, nil).Compile(us, bindings)
	require.NoError(t, err)
	return res, sc
}

func confs(size model.TileSize, scale float64, names ...string) []model.MaterialConf {
	out := make([]model.MaterialConf, len(names))
	for i, name := range names {
		out[i] = model.MaterialConf{Mat: name, Scale: scale, TileSize: size}
	}
	return out
}

// mixedCatalog has floor generators offering every size family, with
// random size mixing and up-scaled double textures.
func mixedCatalog(t *testing.T) *texturing.Catalog {
	t.Helper()
	cat := texturing.DefaultCatalog(nil)
	opts := texturing.Options{ClumpLength: 4, MixTiles: true, ScaleUp256: true}
	for _, portal := range []model.Portalable{model.PortalWhite, model.PortalBlack} {
		p := portal.String()
		_, err := cat.AddGenerator(portal, model.OrientFloor, opts, nil, map[model.TileSize][]model.MaterialConf{
			model.Size4x4:    confs(model.Size4x4, 1, p+"/4x4"),
			model.Size2x2:    confs(model.Size2x2, 1, p+"/2x2a", p+"/2x2b"),
			model.Size2x1:    confs(model.Size2x1, 1, p+"/2x1"),
			model.Size1x1:    confs(model.Size1x1, 1, p+"/1x1a", p+"/1x1b", p+"/1x1c"),
			model.Size4x1:    confs(model.Size4x1, 1, p+"/4x1"),
			model.SizeDouble: confs(model.SizeDouble, 1, p+"/double"),
		})
		require.NoError(t, err)
	}
	return cat
}

// mixedFloor is a large random floor with some antigel units.
func mixedFloor() []*model.Tile {
	tiles := randomFloor(8, 11)
	for i, tile := range tiles {
		tile.Antigel = i%7 == 0
	}
	return tiles
}

// randomFloor builds an n x n grid of floor units with random sub-cells.
func randomFloor(n int, seed int64) []*model.Tile {
	rng := rand.New(rand.NewSource(seed))
	types := []model.TileType{
		model.TileWhite, model.TileWhite, model.TileWhite,
		model.TileBlack, model.TileBlack,
		model.TileWhite4x4, model.TileBlack4x4, model.TileGooSide,
		model.TileNodraw, model.TileVoid,
	}
	var tiles []*model.Tile
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			tile := floorTile(i, j, model.TileWhite)
			// Mostly uniform units, with some fully random ones.
			if rng.Intn(3) == 0 {
				for u := 0; u < 4; u++ {
					for v := 0; v < 4; v++ {
						tile.Cells[u][v] = types[rng.Intn(len(types))]
					}
				}
			} else {
				tile.Fill(types[rng.Intn(len(types))])
			}
			tile.Bevel = [4]bool{rng.Intn(2) == 0, rng.Intn(2) == 0, rng.Intn(2) == 0, rng.Intn(2) == 0}
			tiles = append(tiles, tile)
		}
	}
	return tiles
}

// original returns the per-cell categories of floor units, void included.
func original(tiles []*model.Tile) *plane.Grid[model.TileType] {
	g := plane.New(model.TileVoid)
	for _, tile := range tiles {
		baseU := int(tile.Pos.X-64) / 32
		baseV := int(tile.Pos.Y-64) / 32
		tile.Subtiles(func(u, v int, t model.TileType) {
			g.Set(baseU+u, baseV+v, t)
		})
	}
	return g
}

func stripIDs(res *model.CompileResult) []model.PlaneResult {
	out := make([]model.PlaneResult, len(res.Planes))
	for i, p := range res.Planes {
		p.Regions = append([]model.Region(nil), p.Regions...)
		for j := range p.Regions {
			p.Regions[j].SolidID = 0
			p.Regions[j].FaceID = 0
		}
		out[i] = p
	}
	return out
}

func TestCompile_RegionsPartitionCells(t *testing.T) {
	tiles := randomFloor(6, 1)
	res, _ := compile(t, DefaultSettings(), units(tiles...))
	assertPartition(t, tiles, res)
}

func TestCompile_MixedSizesPartitionCells(t *testing.T) {
	tiles := mixedFloor()
	res, _ := compileWith(t, mixedCatalog(t), Settings{Seed: "mixed"}, units(tiles...))
	assertPartition(t, tiles, res)

	mats := make(map[string]int)
	for _, r := range res.Planes[0].Regions {
		if r.Type == model.TileWhite || r.Type == model.TileBlack {
			mats[r.TexDef.Mat.Mat]++
		}
	}
	assert.GreaterOrEqual(t, len(mats), 3, "materials drawn: %v", mats)
}

// assertPartition checks the regions of a single floor plane cover every
// non-void cell exactly once without crossing a category boundary.
func assertPartition(t *testing.T, tiles []*model.Tile, res *model.CompileResult) {
	t.Helper()
	require.Len(t, res.Planes, 1)

	orig := original(tiles)
	covered := make(map[plane.Point]bool)
	for _, r := range res.Planes[0].Regions {
		for u := r.MinU; u <= r.MaxU; u++ {
			for v := r.MinV; v <= r.MaxV; v++ {
				p := plane.Point{U: u, V: v}
				require.False(t, covered[p], "cell %v covered twice", p)
				covered[p] = true

				// Regions never cross a category boundary.
				require.Equal(t, r.Type, orig.Get(u, v), "cell %v", p)
			}
		}
	}

	want := 0
	orig.Each(func(u, v int, tt model.TileType) {
		if tt != model.TileVoid {
			want++
			assert.True(t, covered[plane.Point{U: u, V: v}], "cell (%d, %d) not covered", u, v)
		}
	})
	assert.Equal(t, want, len(covered))
	assert.Equal(t, want, res.CellCount())
}

func TestCompile_Deterministic(t *testing.T) {
	settings := Settings{Seed: "determinism", Workers: 1}
	a, _ := compile(t, settings, units(randomFloor(5, 2)...))
	b, _ := compile(t, settings, units(randomFloor(5, 2)...))
	assert.Equal(t, a, b)

	other, _ := compile(t, Settings{Seed: "something else"}, units(randomFloor(5, 2)...))
	assert.Equal(t, a.CellCount(), other.CellCount())
}

func TestCompile_MixedSizesDeterministic(t *testing.T) {
	settings := Settings{Seed: "mixed determinism", Workers: 1}
	a, _ := compileWith(t, mixedCatalog(t), settings, units(mixedFloor()...))
	b, _ := compileWith(t, mixedCatalog(t), settings, units(mixedFloor()...))
	assert.Equal(t, a, b)
}

func TestCompile_MixedSizesWorkerCountDoesNotChangeOutput(t *testing.T) {
	tiles := units(mixedFloor()...)
	seq, _ := compileWith(t, mixedCatalog(t), Settings{Seed: "mw", Workers: 1}, tiles)
	par, _ := compileWith(t, mixedCatalog(t), Settings{Seed: "mw", Workers: 8}, tiles)
	assert.Equal(t, seq, par)
}

func TestCompile_DoubleTexturesScaleOnce(t *testing.T) {
	cat := texturing.DefaultCatalog(nil)
	_, err := cat.AddGenerator(model.PortalWhite, model.OrientFloor,
		texturing.Options{ClumpLength: 4, ScaleUp256: true}, nil,
		map[model.TileSize][]model.MaterialConf{
			model.Size4x4:    confs(model.Size4x4, 1, "white/4x4"),
			model.SizeDouble: confs(model.SizeDouble, 1, "white/double"),
		})
	require.NoError(t, err)

	res, sc := compileWith(t, cat, DefaultSettings(), units(
		floorTile(1, 1, model.TileWhite),
		floorTile(2, 1, model.TileWhite),
		floorTile(1, 2, model.TileWhite),
		floorTile(2, 2, model.TileWhite),
	))
	require.Len(t, res.Planes, 1)
	require.Len(t, res.Planes[0].Regions, 1)

	r := res.Planes[0].Regions[0]
	assert.Equal(t, "white/double", r.TexDef.Mat.Mat)
	assert.Equal(t, 8, r.Width())
	assert.Equal(t, 8, r.Height())
	assert.Equal(t, 0.25, r.TexDef.Scale)
	assert.Equal(t, 2.0, r.TexDef.Mat.Scale)
	assert.Equal(t, 0.5, r.TexDef.FaceScale())
	assert.Equal(t, 4, r.TexDef.UOff)
	assert.Equal(t, 4, r.TexDef.VOff)

	front := sc.Solids()[0].Front()
	assert.Equal(t, 0.5, front.UAxis.Scale)
	assert.Equal(t, 0.5, front.VAxis.Scale)
	assert.Equal(t, -256.0, front.UAxis.Offset)
	assert.Equal(t, -256.0, front.VAxis.Offset)
}

func TestCompile_AntigelWarningsRepeatPerRun(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cat := texturing.DefaultCatalog(zap.New(core))
	c := New(DefaultSettings(), cat, scene.New(), nil)

	tile := wallTile(0, 0, model.TileWhite)
	tile.Antigel = true

	_, err := c.Compile(units(tile), nil)
	require.NoError(t, err)
	first := logs.FilterMessage("no antigel material").Len()
	require.Greater(t, first, 0)

	_, err = c.Compile(units(tile), nil)
	require.NoError(t, err)
	assert.Equal(t, 2*first, logs.FilterMessage("no antigel material").Len())
}

func TestCompile_WorkerCountDoesNotChangeOutput(t *testing.T) {
	var tiles []*model.Tile
	tiles = append(tiles, randomFloor(4, 3)...)
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			tiles = append(tiles, wallTile(i, j, model.TileBlack))
		}
	}
	solo := floorTile(10, 10, model.TileWhite)
	solo.NoMerge = true
	tiles = append(tiles, solo)

	seq, _ := compile(t, Settings{Seed: "w", Workers: 1}, units(tiles...))
	par, _ := compile(t, Settings{Seed: "w", Workers: 4}, units(tiles...))
	all, _ := compile(t, Settings{Seed: "w", Workers: -1}, units(tiles...))
	assert.Equal(t, seq, par)
	assert.Equal(t, seq, all)
	assert.Len(t, seq.Planes, 3)
}

func TestCompile_CacheIsClearedBetweenRuns(t *testing.T) {
	tiles := units(randomFloor(4, 4)...)
	c, _ := newCompiler(Settings{Seed: "cache"})

	first, err := c.Compile(tiles, nil)
	require.NoError(t, err)
	firstStats := c.Cache().Stats()

	second, err := c.Compile(tiles, nil)
	require.NoError(t, err)
	assert.Equal(t, stripIDs(first), stripIDs(second))
	assert.Equal(t, firstStats, c.Cache().Stats())

	cold, _ := compile(t, Settings{Seed: "cache"}, tiles)
	assert.Equal(t, stripIDs(cold), stripIDs(second))
}

func TestCompile_BevelsFollowOriginalCells(t *testing.T) {
	tiles := randomFloor(6, 5)
	res, _ := compile(t, DefaultSettings(), units(tiles...))
	orig := original(tiles)

	check := func(r model.Region, flag model.Bevels, u, v int) {
		neighbour, ok := orig.Lookup(u, v)
		if !ok {
			return
		}
		switch {
		case neighbour == model.TileVoid:
			assert.True(t, r.Bevels.Has(flag), "region %+v next to void at (%d, %d)", r, u, v)
		case neighbour.IsTile():
			assert.False(t, r.Bevels.Has(flag), "region %+v next to tile at (%d, %d)", r, u, v)
		}
	}
	for _, r := range res.Planes[0].Regions {
		for v := r.MinV; v <= r.MaxV; v++ {
			check(r, model.BevelUMin, r.MinU-1, v)
			check(r, model.BevelUMax, r.MaxU+1, v)
		}
		for u := r.MinU; u <= r.MaxU; u++ {
			check(r, model.BevelVMin, u, r.MinV-1)
			check(r, model.BevelVMax, u, r.MaxV+1)
		}
	}
}

func TestCompile_SurroundedBlockHasNoBevels(t *testing.T) {
	var tiles []*model.Tile
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tile := floorTile(i, j, model.TileWhite)
			tile.Bevel = [4]bool{true, true, true, true}
			tiles = append(tiles, tile)
		}
	}
	res, _ := compile(t, DefaultSettings(), units(tiles...))
	require.Len(t, res.Planes, 1)

	for _, r := range res.Planes[0].Regions {
		// Only the outside of the block is bevelled.
		assert.Equal(t, r.MinU == 0, r.Bevels.Has(model.BevelUMin), "%+v", r)
		assert.Equal(t, r.MaxU == 11, r.Bevels.Has(model.BevelUMax), "%+v", r)
		assert.Equal(t, r.MinV == 0, r.Bevels.Has(model.BevelVMin), "%+v", r)
		assert.Equal(t, r.MaxV == 11, r.Bevels.Has(model.BevelVMax), "%+v", r)

		if r.MinU >= 4 && r.MaxU <= 7 && r.MinV >= 4 && r.MaxV <= 7 {
			assert.Equal(t, model.BevelNone, r.Bevels)
		}
	}
}

func TestCompile_IsolatedCell(t *testing.T) {
	for name, around := range map[string]model.TileType{
		"void":   model.TileVoid,
		"nodraw": model.TileNodraw,
	} {
		t.Run(name, func(t *testing.T) {
			tile := wallTile(0, 0, around)
			tile.Cells[1][2] = model.TileWhite
			tile.Bevel = [4]bool{true, true, true, true}

			res, _ := compile(t, DefaultSettings(), units(tile))
			require.Len(t, res.Planes, 1)

			var tiles []model.Region
			for _, r := range res.Planes[0].Regions {
				if r.Type == model.TileWhite {
					tiles = append(tiles, r)
				}
			}
			require.Len(t, tiles, 1)
			r := tiles[0]
			assert.Equal(t, 1, r.Area())
			assert.Equal(t, model.Size4x4, r.TexDef.Mat.TileSize)
			assert.Equal(t, "tile/white_wall_tile003f", r.TexDef.Mat.Mat)
			assert.Equal(t, model.BevelAll, r.Bevels)
		})
	}
}

func TestCompile_TexturesFullBlocks(t *testing.T) {
	res, sc := compile(t, DefaultSettings(), units(
		wallTile(0, 0, model.TileWhite),
		wallTile(1, 0, model.TileWhite),
	))
	require.Len(t, res.Planes, 1)
	require.Len(t, res.Planes[0].Regions, 1)

	r := res.Planes[0].Regions[0]
	assert.Equal(t, 8, r.Width())
	assert.Equal(t, 4, r.Height())
	assert.Equal(t, "tile/white_wall_tile003a", r.TexDef.Mat.Mat)
	assert.Equal(t, 0, r.TexDef.UOff)
	assert.Equal(t, 0, r.TexDef.VOff)
	assert.Equal(t, 0.25, r.TexDef.Scale)

	require.Len(t, sc.Solids(), 1)
	solid := sc.Solids()[0]
	assert.Equal(t, r.SolidID, solid.ID)
	assert.Equal(t, model.Vec{X: 0, Y: 128, Z: 64}, solid.Center)
	assert.Equal(t, 256.0, solid.Width)
	assert.Equal(t, 128.0, solid.Height)

	// One merged face is shared by both units.
	assert.Equal(t, []int{r.FaceID}, res.UnitFaces["wall_0_0"])
	assert.Equal(t, []int{r.FaceID}, res.UnitFaces["wall_1_0"])
}

func TestCompile_EmitsPrisms(t *testing.T) {
	tiles := randomFloor(3, 6)
	ceiling := model.NewTile(model.Vec{X: 64, Y: 64, Z: 512}, down, model.TileBlack)
	ceiling.Key = "ceiling"
	res, sc := compile(t, DefaultSettings(), append(units(tiles...), ceiling))

	solids := make(map[int]*scene.Solid)
	for _, s := range sc.Solids() {
		solids[s.ID] = s
	}
	cat := texturing.DefaultCatalog(nil)

	for _, p := range res.Planes {
		axis, ok := p.Key.Normal.NormalAxis()
		require.True(t, ok)
		uAxis, vAxis := model.PlaneAxes(axis)

		for _, r := range p.Regions {
			solid := solids[r.SolidID]
			require.NotNil(t, solid, "region %+v has no solid", r)
			front := solid.Front()
			assert.Equal(t, r.FaceID, front.ID)
			assert.Equal(t, r.TexDef.Mat.Mat, front.Material)
			assert.Equal(t, cat.Specials[texturing.SpecialBehind], solid.Faces[1].Material)
			assert.Equal(t, cat.Specials[texturing.SpecialEdge], solid.Faces[2].Material)
			assert.Equal(t, r.Bevels, solid.Bevels)

			assert.Equal(t, float64(r.Width()*32), solid.Width)
			assert.Equal(t, float64(r.Height()*32), solid.Height)
			assert.Equal(t, float64((1+r.MinU+r.MaxU)*16), solid.Center.Get(uAxis))
			assert.Equal(t, float64((1+r.MinV+r.MaxV)*16), solid.Center.Get(vAxis))
			assert.Equal(t, p.Key.Distance*p.Key.Normal.Get(axis), solid.Center.Get(axis))

			assert.Equal(t, r.TexDef.FaceScale(), front.UAxis.Scale)
			assert.Equal(t, float64(-32*r.TexDef.UOff)/front.UAxis.Scale, front.UAxis.Offset)
			assert.Equal(t, float64(-32*r.TexDef.VOff)/front.VAxis.Scale, front.VAxis.Offset)
		}
	}

	ceil := res.Planes[0]
	assert.Equal(t, down, ceil.Key.Normal)
	assert.Equal(t, -448.0, ceil.Key.Distance)
	for _, r := range ceil.Regions {
		assert.Equal(t, "metal/black_floor_metal_001c", r.TexDef.Mat.Mat)
	}
}

func TestCompile_NodrawSharesOneTexture(t *testing.T) {
	res, _ := compile(t, DefaultSettings(), units(
		floorTile(0, 0, model.TileNodraw),
		floorTile(1, 0, model.TileNodraw),
		floorTile(0, 1, model.TileNodraw),
	))
	require.Len(t, res.Planes, 1)
	for _, r := range res.Planes[0].Regions {
		assert.Equal(t, texturing.NodrawMaterial, r.TexDef.Mat.Mat)
		assert.Equal(t, 0, r.TexDef.UOff)
		assert.Equal(t, 0, r.TexDef.VOff)
	}
	assert.Equal(t, 48, res.CellCount())
}

func TestCompile_NoMergeUnitsStayApart(t *testing.T) {
	a := wallTile(0, 0, model.TileWhite)
	b := wallTile(1, 0, model.TileWhite)
	b.NoMerge = true

	res, _ := compile(t, DefaultSettings(), units(a, b))
	require.Len(t, res.Planes, 2)
	assert.Equal(t, "", res.Planes[0].Key.Unit)
	assert.Equal(t, b.Key, res.Planes[1].Key.Unit)
	assert.NotEqual(t, res.UnitFaces[a.Key], res.UnitFaces[b.Key])
}

func TestCompile_AntigelMaterials(t *testing.T) {
	cat := texturing.DefaultCatalog(nil)
	cat.SetAntigel("tile/white_wall_tile003a", "antigel/white_1x1")
	cat.SetAntigel("anim_wp/framework/backpanels_cheap", "antigel/behind")
	sc := scene.New()

	tile := wallTile(0, 0, model.TileWhite)
	tile.Antigel = true
	res, err := New(DefaultSettings(), cat, sc, nil).Compile(units(tile), nil)
	require.NoError(t, err)

	require.Len(t, res.Planes[0].Regions, 1)
	r := res.Planes[0].Regions[0]
	assert.True(t, r.TexDef.Antigel)
	assert.Equal(t, "antigel/white_1x1", r.TexDef.Mat.Mat)
	assert.Equal(t, "antigel/behind", sc.Solids()[0].Faces[1].Material)
	assert.True(t, sc.Solids()[0].Antigel)
}

func TestCompile_Errors(t *testing.T) {
	skew := floorTile(0, 0, model.TileWhite)
	skew.Norm = model.Vec{X: 0.6, Z: 0.8}

	wallsOnly := texturing.NewCatalog(nil)
	wallsOnly.Specials[texturing.SpecialBehind] = "behind"
	wallsOnly.Specials[texturing.SpecialEdge] = "edge"
	_, err := wallsOnly.AddGenerator(model.PortalWhite, model.OrientWall, texturing.Options{}, nil,
		map[model.TileSize][]model.MaterialConf{model.Size4x4: {{Mat: "w", Scale: 1}}})
	require.NoError(t, err)

	cases := []struct {
		name    string
		catalog *texturing.Catalog
		units   []model.TileUnit
		want    error
	}{
		{"bad normal", nil, units(skew), ErrBadNormal},
		{"duplicate", nil, units(floorTile(0, 0, model.TileWhite), floorTile(0, 0, model.TileBlack)), ErrDuplicateUnit},
		{"missing generator", wallsOnly, units(floorTile(0, 0, model.TileWhite)), texturing.ErrMissingGenerator},
		{"missing special", texturing.NewCatalog(nil), units(wallTile(0, 0, model.TileWhite)), texturing.ErrMissingSpecial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cat := tc.catalog
			if cat == nil {
				cat = texturing.DefaultCatalog(nil)
			}
			sc := scene.New()
			_, err := New(DefaultSettings(), cat, sc, nil).Compile(tc.units, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, sc.Solids())
		})
	}

	// Nodraw-only units need no generators.
	sc := scene.New()
	_, err = New(DefaultSettings(), wallsOnly, sc, nil).Compile(units(floorTile(0, 0, model.TileNodraw)), nil)
	assert.NoError(t, err)
}

func TestGrowRun(t *testing.T) {
	sub := &model.SubTile{Type: model.TileWhite}
	other := &model.SubTile{Type: model.TileBlack}
	grid := func(cells ...plane.Point) *plane.Grid[*model.SubTile] {
		g := plane.New[*model.SubTile](nil)
		for _, p := range cells {
			g.Set(p.U, p.V, sub)
		}
		return g
	}

	// A wide row wins going U first.
	g := grid(plane.Point{U: 0, V: 1}, plane.Point{U: 1, V: 1}, plane.Point{U: 2, V: 1}, plane.Point{U: 3, V: 1}, plane.Point{U: 3, V: 0})
	w, h := growRun(g, 3, 1, sub, 16)
	assert.Equal(t, [2]int{4, 1}, [2]int{w, h})

	// A tall column wins going V first.
	g = grid(plane.Point{U: 1, V: 0}, plane.Point{U: 1, V: 1}, plane.Point{U: 1, V: 2}, plane.Point{U: 1, V: 3}, plane.Point{U: 0, V: 3})
	w, h = growRun(g, 1, 3, sub, 16)
	assert.Equal(t, [2]int{1, 4}, [2]int{w, h})

	// Square blocks are taken whole.
	g = grid(plane.Point{U: 0, V: 0}, plane.Point{U: 1, V: 0}, plane.Point{U: 0, V: 1}, plane.Point{U: 1, V: 1})
	w, h = growRun(g, 1, 1, sub, 16)
	assert.Equal(t, [2]int{2, 2}, [2]int{w, h})

	// Runs stop at the search distance.
	g = plane.New[*model.SubTile](nil)
	for u := 0; u < 10; u++ {
		g.Set(u, 0, sub)
	}
	w, h = growRun(g, 9, 0, sub, 4)
	assert.Equal(t, [2]int{4, 1}, [2]int{w, h})

	// Runs stop at other sub-tiles.
	g.Set(7, 0, other)
	w, _ = growRun(g, 9, 0, sub, 16)
	assert.Equal(t, 2, w)
}

func TestGroupRuns(t *testing.T) {
	runs := groupRuns(
		[]bool{true, true, false, false, false},
		[]bool{false, false, false, true, true},
	)
	assert.Equal(t, []edgeRun{
		{min: true, max: false, lo: 0, hi: 1},
		{min: false, max: false, lo: 2, hi: 2},
		{min: false, max: true, lo: 3, hi: 4},
	}, runs)
	assert.Empty(t, groupRuns(nil, nil))
}

func TestSearchDist(t *testing.T) {
	cat := texturing.DefaultCatalog(nil)
	gen, err := cat.Get(model.PortalWhite, model.OrientWall)
	require.NoError(t, err)
	assert.Equal(t, 16, searchDist(gen))

	mixed := mixedCatalog(t)
	gen, err = mixed.Get(model.PortalWhite, model.OrientFloor)
	require.NoError(t, err)
	assert.Equal(t, 32, searchDist(gen))
}

func TestMod(t *testing.T) {
	assert.Equal(t, 0, mod(0, 4))
	assert.Equal(t, 3, mod(-1, 4))
	assert.Equal(t, 1, mod(9, 4))
	assert.Equal(t, 0, mod(-5, 1))
}

func TestRunAll(t *testing.T) {
	for _, workers := range []int{-1, 0, 1, 3, 100} {
		out := make([]int, 20)
		tasks := make([]func(), len(out))
		for i := range tasks {
			tasks[i] = func() { out[i] = i * i }
		}
		runAll(workers, tasks)
		for i, v := range out {
			assert.Equal(t, i*i, v, "workers=%d", workers)
		}
	}
	runAll(4, nil)
}
