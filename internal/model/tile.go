package model

import "github.com/google/uuid"

// Bevels records which edges of a brush are chamfered at 45 degrees.
type Bevels uint8

const (
	BevelUMin Bevels = 1 << iota
	BevelUMax
	BevelVMin
	BevelVMax

	BevelNone  Bevels = 0
	BevelUBoth        = BevelUMin | BevelUMax
	BevelVBoth        = BevelVMin | BevelVMax
	BevelAll          = BevelUBoth | BevelVBoth
)

// Has reports whether every flag in b2 is set.
func (b Bevels) Has(b2 Bevels) bool {
	return b&b2 == b2
}

// Sides returns the flags in umin, umax, vmin, vmax order.
func (b Bevels) Sides() [4]bool {
	return [4]bool{b.Has(BevelUMin), b.Has(BevelUMax), b.Has(BevelVMin), b.Has(BevelVMax)}
}

func (b Bevels) String() string {
	out := []byte("----")
	for i, c := range []byte("UuVv") {
		if b&(1<<i) != 0 {
			out[i] = c
		}
	}
	return string(out)
}

// MaterialConf is a concrete material variant from a texture catalog.
type MaterialConf struct {
	Mat   string  `json:"material" yaml:"material"`
	Scale float64 `json:"scale" yaml:"scale"`
	// TileSize is the footprint the material image was authored for; it
	// sets the period used to phase-align UVs.
	TileSize TileSize `json:"tile_size" yaml:"-"`
}

// SubTile is the state of a single 32x32 cell in a plane.
type SubTile struct {
	Type    TileType
	Antigel bool
}

// TexDef fully describes how to stamp a texture on a region.
type TexDef struct {
	Mat     MaterialConf
	Antigel bool
	UOff    int
	VOff    int
	Scale   float64 // 0.25 cells per texel.
}

// FaceScale is the UV scale of a face stamped with the texture: the base
// scale times the material's own scale. A material scale of zero counts as 1.
func (t TexDef) FaceScale() float64 {
	mat := t.Mat.Scale
	if mat <= 0 {
		mat = 1
	}
	return t.Scale * mat
}

// TileUnit is one 128x128 side of a block, split into a 4x4 grid of sub-cells.
type TileUnit interface {
	// ID is a stable handle used to address the unit from overlays and results.
	ID() string
	// Position is the centre of the block the tile is attached to.
	Position() Vec
	// Normal points out of the block, through the tile surface.
	Normal() Vec
	// Subtiles calls fn for each of the 16 sub-cells, u and v in [0, 4).
	Subtiles(fn func(u, v int, t TileType))
	// CanMerge reports whether the unit may be merged with neighbours.
	CanMerge() bool
	IsAntigel() bool
	// ShouldBevel reports whether the side of the unit facing (du, dv)
	// needs a chamfer when nothing on the plane decides it.
	ShouldBevel(du, dv int) bool
}

// Tile is a plain TileUnit used by layouts and tests.
type Tile struct {
	Key     string
	Pos     Vec
	Norm    Vec
	Cells   [4][4]TileType // [u][v]
	Antigel bool
	NoMerge bool
	// Bevel is consulted by ShouldBevel, in umin, umax, vmin, vmax order.
	Bevel [4]bool
}

// NewTile returns a tile of a single category with a generated ID.
func NewTile(pos, normal Vec, t TileType) *Tile {
	tile := &Tile{
		Key:  uuid.New().String()[:8],
		Pos:  pos,
		Norm: normal,
	}
	tile.Fill(t)
	return tile
}

// Fill sets every sub-cell to t.
func (t *Tile) Fill(tt TileType) {
	for u := range t.Cells {
		for v := range t.Cells[u] {
			t.Cells[u][v] = tt
		}
	}
}

func (t *Tile) ID() string     { return t.Key }
func (t *Tile) Position() Vec  { return t.Pos }
func (t *Tile) Normal() Vec    { return t.Norm }
func (t *Tile) CanMerge() bool { return !t.NoMerge }
func (t *Tile) IsAntigel() bool {
	return t.Antigel
}

func (t *Tile) Subtiles(fn func(u, v int, tt TileType)) {
	for u := 0; u < 4; u++ {
		for v := 0; v < 4; v++ {
			fn(u, v, t.Cells[u][v])
		}
	}
}

func (t *Tile) ShouldBevel(du, dv int) bool {
	switch {
	case du < 0:
		return t.Bevel[0]
	case du > 0:
		return t.Bevel[1]
	case dv < 0:
		return t.Bevel[2]
	case dv > 0:
		return t.Bevel[3]
	}
	return false
}

// PlaneKey identifies one independent plane of tiles.
type PlaneKey struct {
	Normal   Vec     `json:"normal"`
	Distance float64 `json:"distance"`
	// Unit is set when the plane holds a single unit that must not merge.
	Unit string `json:"unit,omitempty"`
}

// Less orders plane keys so output is independent of map iteration.
func (k PlaneKey) Less(o PlaneKey) bool {
	switch {
	case k.Normal.X != o.Normal.X:
		return k.Normal.X < o.Normal.X
	case k.Normal.Y != o.Normal.Y:
		return k.Normal.Y < o.Normal.Y
	case k.Normal.Z != o.Normal.Z:
		return k.Normal.Z < o.Normal.Z
	case k.Distance != o.Distance:
		return k.Distance < o.Distance
	}
	return k.Unit < o.Unit
}
