package engine

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/scene"
	"github.com/piwi3910/tilegen/internal/texturing"
)

func TestBindOverlays_SkipsNodrawFaces(t *testing.T) {
	a := floorTile(0, 0, model.TileNodraw)
	a.Key = "A"
	b := floorTile(1, 0, model.TileWhite)
	b.Key = "B"

	sc := scene.New()
	both := sc.AddOverlay("signage/exit", model.Vec{}, nil)
	onlyA := sc.AddOverlay("signage/arrow", model.Vec{}, nil)

	c := New(DefaultSettings(), texturing.DefaultCatalog(nil), sc, nil)
	res, err := c.Compile(units(a, b), []OverlayBinding{
		{OverlayID: both.ID, Units: []string{"A", "B"}},
		{OverlayID: onlyA.ID, Units: []string{"A"}},
	})
	require.NoError(t, err)

	require.NotEmpty(t, res.UnitFaces["A"])
	require.NotEmpty(t, res.UnitFaces["B"])

	want := append([]int(nil), res.UnitFaces["B"]...)
	sort.Ints(want)
	got, ok := sc.Overlay(both.ID)
	require.True(t, ok)
	assert.Equal(t, want, got.Sides)
	for _, fid := range res.UnitFaces["A"] {
		assert.NotContains(t, got.Sides, fid)
	}

	_, ok = sc.Overlay(onlyA.ID)
	assert.False(t, ok)
	assert.Equal(t, []int{onlyA.ID}, res.RemovedOverlays)
}

func TestBindOverlays_MergesDeclaredSides(t *testing.T) {
	tile := wallTile(0, 0, model.TileWhite)
	sc := scene.New()
	// 9999 is not a face the scene knows about; it is kept as declared.
	over := sc.AddOverlay("signage/dot", model.Vec{}, []int{9999})
	untouched := sc.AddOverlay("signage/moon", model.Vec{}, []int{5})

	c := New(DefaultSettings(), texturing.DefaultCatalog(nil), sc, nil)
	res, err := c.Compile(units(tile), []OverlayBinding{
		{OverlayID: over.ID, Units: []string{tile.Key}},
		{OverlayID: over.ID, Units: []string{tile.Key}},
	})
	require.NoError(t, err)
	assert.Empty(t, res.RemovedOverlays)

	faces := res.UnitFaces[tile.Key]
	require.Len(t, faces, 1)
	got, _ := sc.Overlay(over.ID)
	assert.Equal(t, []int{faces[0], 9999}, got.Sides)

	// Overlays without bindings are left alone.
	got, _ = sc.Overlay(untouched.ID)
	assert.Equal(t, []int{5}, got.Sides)
}

func TestBindOverlays_DeclaredNodrawFaceIsDropped(t *testing.T) {
	sc := scene.New()
	_, nodraw := sc.MakePrism(scene.Prism{
		Normal: up,
		Width:  32,
		Height: 32,
		Front:  model.MaterialConf{Mat: texturing.NodrawMaterial},
	})
	over := sc.AddOverlay("signage/star", model.Vec{}, []int{nodraw.ID})
	tile := floorTile(0, 0, model.TileNodraw)

	c := New(DefaultSettings(), texturing.DefaultCatalog(nil), sc, nil)
	res, err := c.Compile(units(tile), []OverlayBinding{{OverlayID: over.ID, Units: []string{tile.Key}}})
	require.NoError(t, err)
	assert.Equal(t, []int{over.ID}, res.RemovedOverlays)
	assert.Empty(t, sc.Overlays())
}

func TestCompile_RejectsBadBindings(t *testing.T) {
	sc := scene.New()
	over := sc.AddOverlay("signage/exit", model.Vec{}, nil)
	tile := floorTile(0, 0, model.TileWhite)
	c := New(DefaultSettings(), texturing.DefaultCatalog(nil), sc, nil)

	_, err := c.Compile(units(tile), []OverlayBinding{{OverlayID: over.ID, Units: []string{"nope"}}})
	assert.ErrorIs(t, err, ErrUnknownUnit)

	_, err = c.Compile(units(tile), []OverlayBinding{{OverlayID: 42, Units: []string{tile.Key}}})
	assert.ErrorIs(t, err, ErrUnknownOverlay)

	assert.Empty(t, sc.Solids())
	assert.Len(t, sc.Overlays(), 1)
}
