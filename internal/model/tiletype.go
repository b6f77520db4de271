package model

import (
	"fmt"
	"strings"
)

// Portalable is the surface colour of a tile.
type Portalable int

const (
	PortalWhite Portalable = iota
	PortalBlack
)

// Portalables lists both colours in catalog order.
var Portalables = []Portalable{PortalWhite, PortalBlack}

func (p Portalable) String() string {
	if p == PortalWhite {
		return "white"
	}
	return "black"
}

// ParsePortalable converts a configuration name into a Portalable.
func ParsePortalable(s string) (Portalable, error) {
	switch s {
	case "white":
		return PortalWhite, nil
	case "black":
		return PortalBlack, nil
	}
	return PortalBlack, fmt.Errorf("unknown portalability %q", s)
}

// TileType is the category assigned to a single 32x32 sub-cell.
type TileType int

const (
	TileWhite    TileType = 0
	TileWhite4x4 TileType = 1
	TileBlack    TileType = 2
	TileBlack4x4 TileType = 3
	TileGooSide  TileType = 4 // Black sides of goo pits.

	TileNodraw TileType = 10 // Covered, untextured backing.
	TileVoid   TileType = 11 // Air, nothing is generated here.
)

// IsTile reports whether the category is a textured tile.
func (t TileType) IsTile() bool {
	return t < 10
}

// IsNodraw reports whether the category is untextured backing.
func (t TileType) IsNodraw() bool {
	return t == TileNodraw
}

// Color returns the portalability of a tile category.
// Non-tile categories have no colour and report false.
func (t TileType) Color() (Portalable, bool) {
	switch t {
	case TileWhite, TileWhite4x4:
		return PortalWhite, true
	case TileBlack, TileBlack4x4, TileGooSide:
		return PortalBlack, true
	}
	return PortalBlack, false
}

// tileChain is the size fallback order shared by both tileable colours.
var tileChain = []TileSize{
	SizeDouble, Size1x1,
	Size1x2, Size2x1,
	Size2x2,
	Size1x4, Size4x1,
}

// AllowedSizes returns the ordered list of sizes a category may be drawn with.
// The first entry is the preferred match; the rest are alternatives.
func (t TileType) AllowedSizes() []TileSize {
	switch t {
	case TileWhite, TileBlack:
		return tileChain
	case TileWhite4x4, TileBlack4x4:
		return []TileSize{Size4x4}
	case TileGooSide:
		return []TileSize{SizeGooSide}
	case TileNodraw, TileVoid:
		return nil
	}
	panic(fmt.Sprintf("unknown tile type %d", int(t)))
}

// Char returns the single character used for this category in layouts.
func (t TileType) Char() byte {
	switch t {
	case TileWhite:
		return 'W'
	case TileWhite4x4:
		return 'w'
	case TileBlack:
		return 'B'
	case TileBlack4x4:
		return 'b'
	case TileGooSide:
		return 'g'
	case TileNodraw:
		return 'n'
	default:
		return '.'
	}
}

// TileTypeFromChar is the inverse of Char.
func TileTypeFromChar(c byte) (TileType, bool) {
	switch c {
	case 'W':
		return TileWhite, true
	case 'w':
		return TileWhite4x4, true
	case 'B':
		return TileBlack, true
	case 'b':
		return TileBlack4x4, true
	case 'g':
		return TileGooSide, true
	case 'n':
		return TileNodraw, true
	case '.':
		return TileVoid, true
	}
	return TileVoid, false
}

func (t TileType) String() string {
	switch t {
	case TileWhite:
		return "white"
	case TileWhite4x4:
		return "white_4x4"
	case TileBlack:
		return "black"
	case TileBlack4x4:
		return "black_4x4"
	case TileGooSide:
		return "goo_side"
	case TileNodraw:
		return "nodraw"
	case TileVoid:
		return "void"
	}
	return fmt.Sprintf("TileType(%d)", int(t))
}

// ParseTileType accepts a category name ("white", "black_4x4", ...) or its
// single-character form.
func ParseTileType(s string) (TileType, error) {
	if len(s) == 1 {
		if t, ok := TileTypeFromChar(s[0]); ok {
			return t, nil
		}
	}
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range []TileType{TileWhite, TileWhite4x4, TileBlack, TileBlack4x4, TileGooSide, TileNodraw, TileVoid} {
		if t.String() == name {
			return t, nil
		}
	}
	return TileVoid, fmt.Errorf("unknown tile type %q", s)
}

// TileSize is a texture footprint available in a catalog.
// Names follow the in-game convention where "1x1" is a full 128-unit block
// and "4x4" is a quarter of one, i.e. a single 32-unit cell.
type TileSize int

const (
	Size4x4 TileSize = iota
	Size2x2
	Size2x1
	Size1x2
	Size4x1
	Size1x4
	Size1x1
	SizeDouble
	SizeGooSide
)

// TileSizes lists every size.
var TileSizes = []TileSize{
	Size4x4, Size2x2, Size2x1, Size1x2, Size4x1, Size1x4, Size1x1, SizeDouble, SizeGooSide,
}

// Cells returns the footprint in 32-unit cells along U and V.
func (s TileSize) Cells() (w, h int) {
	switch s {
	case Size4x4, SizeGooSide:
		return 1, 1
	case Size1x1:
		return 4, 4
	case Size2x2:
		return 2, 2
	case Size2x1:
		return 2, 4
	case Size1x2:
		return 4, 2
	case Size4x1:
		return 1, 4
	case Size1x4:
		return 4, 1
	case SizeDouble:
		return 8, 8
	}
	panic(fmt.Sprintf("unknown tile size %d", int(s)))
}

// Width is the footprint along U, in cells.
func (s TileSize) Width() int {
	w, _ := s.Cells()
	return w
}

// Height is the footprint along V, in cells.
func (s TileSize) Height() int {
	_, h := s.Cells()
	return h
}

func (s TileSize) String() string {
	switch s {
	case Size4x4:
		return "4x4"
	case Size2x2:
		return "2x2"
	case Size2x1:
		return "2x1"
	case Size1x2:
		return "1x2"
	case Size4x1:
		return "4x1"
	case Size1x4:
		return "1x4"
	case Size1x1:
		return "1x1"
	case SizeDouble:
		return "double"
	case SizeGooSide:
		return "goo"
	}
	return fmt.Sprintf("TileSize(%d)", int(s))
}

// ParseTileSize converts a size name into a TileSize.
func ParseTileSize(s string) (TileSize, error) {
	for _, size := range TileSizes {
		if size.String() == s {
			return size, nil
		}
	}
	return Size4x4, fmt.Errorf("unknown tile size %q", s)
}

// UnmarshalText lets sizes be used as JSON map keys and values.
func (s *TileSize) UnmarshalText(text []byte) error {
	parsed, err := ParseTileSize(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalText writes the size by name.
func (s TileSize) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
