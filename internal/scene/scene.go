// Package scene is an in-memory level: brush solids with textured faces, and
// overlays that are projected onto some of those faces.
package scene

import (
	"math"
	"sort"

	"github.com/piwi3910/tilegen/internal/model"
)

// DefaultScale is the texture scale of an unscaled face.
const DefaultScale = 0.25

// UVAxis maps world positions to one texture coordinate.
type UVAxis struct {
	Axis   model.Vec `json:"axis"`
	Offset float64   `json:"offset"`
	Scale  float64   `json:"scale"`
}

// Face is one side of a solid.
type Face struct {
	ID       int       `json:"id"`
	Material string    `json:"material"`
	Normal   model.Vec `json:"normal"`
	UAxis    UVAxis    `json:"uaxis"`
	VAxis    UVAxis    `json:"vaxis"`
}

// Solid is a convex brush.
type Solid struct {
	ID     int       `json:"id"`
	Center model.Vec `json:"center"`
	Normal model.Vec `json:"normal"`
	// Width and Height are the front face extents along U and V.
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
	Thickness float64      `json:"thickness"`
	Bevels    model.Bevels `json:"bevels"`
	Antigel   bool         `json:"antigel"`
	Faces     []*Face      `json:"faces"`
}

// Front returns the face pointing along the solid's normal.
func (s *Solid) Front() *Face {
	return s.Faces[0]
}

// Overlay is a decal projected onto a set of faces.
type Overlay struct {
	ID       int       `json:"id"`
	Material string    `json:"material"`
	Origin   model.Vec `json:"origin"`
	Sides    []int     `json:"sides"`
}

// Prism describes a rectangular tile brush to build.
type Prism struct {
	// Origin is the centre of the front face.
	Origin model.Vec
	Normal model.Vec
	Width  float64
	Height float64
	// Thickness defaults to 4 units.
	Thickness float64
	Front     model.MaterialConf
	Back      model.MaterialConf
	Side      model.MaterialConf
	Bevels    model.Bevels
	Antigel   bool
}

// Scene holds solids and overlays. It is not safe for concurrent use.
type Scene struct {
	nextSolid   int
	nextFace    int
	nextOverlay int

	solids   []*Solid
	faces    map[int]*Face
	overlays map[int]*Overlay
}

// New returns an empty scene.
func New() *Scene {
	return &Scene{
		faces:    make(map[int]*Face),
		overlays: make(map[int]*Overlay),
	}
}

// MakePrism builds a tile brush and returns it with its front face. The
// brush is not part of the scene until passed to AddSolid.
// Faces are ordered front, back, then the U-min, U-max, V-min and V-max sides.
func (s *Scene) MakePrism(p Prism) (*Solid, *Face) {
	axis, ok := p.Normal.NormalAxis()
	if !ok {
		panic("scene: prism normal must be axis-aligned")
	}
	if p.Thickness <= 0 {
		p.Thickness = 4
	}
	uAxis, vAxis := model.PlaneAxes(axis)
	u, v := model.Unit(uAxis), model.Unit(vAxis)

	solid := &Solid{
		ID:        s.newSolidID(),
		Center:    p.Origin,
		Normal:    p.Normal,
		Width:     p.Width,
		Height:    p.Height,
		Thickness: p.Thickness,
		Bevels:    p.Bevels,
		Antigel:   p.Antigel,
	}

	front := s.newFace(p.Front, p.Normal, u, v)
	back := s.newFace(p.Back, p.Normal.Scale(-1), u, v)
	solid.Faces = append(solid.Faces, front, back)

	sides := []struct {
		dir   model.Vec
		bevel model.Bevels
	}{
		{u.Scale(-1), model.BevelUMin},
		{u, model.BevelUMax},
		{v.Scale(-1), model.BevelVMin},
		{v, model.BevelVMax},
	}
	for _, side := range sides {
		normal := side.dir
		if p.Bevels.Has(side.bevel) {
			// 45 degree chamfer leaning away from the front.
			normal = side.dir.Add(p.Normal.Scale(-1)).Scale(1 / math.Sqrt2)
		}
		sideU, sideV := u, v
		if side.dir.Get(uAxis) != 0 {
			sideU = p.Normal
		} else {
			sideV = p.Normal
		}
		solid.Faces = append(solid.Faces, s.newFace(p.Side, normal, sideU, sideV))
	}
	return solid, front
}

func (s *Scene) newSolidID() int {
	s.nextSolid++
	return s.nextSolid
}

func (s *Scene) newFace(mat model.MaterialConf, normal, u, v model.Vec) *Face {
	s.nextFace++
	scale := DefaultScale
	if mat.Scale > 0 {
		scale *= mat.Scale
	}
	face := &Face{
		ID:       s.nextFace,
		Material: mat.Mat,
		Normal:   normal,
		UAxis:    UVAxis{Axis: u, Scale: scale},
		VAxis:    UVAxis{Axis: v, Scale: scale},
	}
	s.faces[face.ID] = face
	return face
}

// AddSolid places a solid into the scene.
func (s *Scene) AddSolid(solid *Solid) {
	s.solids = append(s.solids, solid)
}

// Solids returns every placed solid in insertion order.
func (s *Scene) Solids() []*Solid {
	return s.solids
}

// Face looks up a face by ID. Faces of prisms that were never added are
// still found.
func (s *Scene) Face(id int) (*Face, bool) {
	face, ok := s.faces[id]
	return face, ok
}

// AddOverlay creates an overlay on the given faces.
func (s *Scene) AddOverlay(material string, origin model.Vec, sides []int) *Overlay {
	s.nextOverlay++
	over := &Overlay{
		ID:       s.nextOverlay,
		Material: material,
		Origin:   origin,
		Sides:    append([]int(nil), sides...),
	}
	s.overlays[over.ID] = over
	return over
}

// Overlay looks up an overlay by ID.
func (s *Scene) Overlay(id int) (*Overlay, bool) {
	over, ok := s.overlays[id]
	return over, ok
}

// RemoveOverlay deletes an overlay. Unknown IDs are ignored.
func (s *Scene) RemoveOverlay(id int) {
	delete(s.overlays, id)
}

// Overlays returns every overlay ordered by ID.
func (s *Scene) Overlays() []*Overlay {
	out := make([]*Overlay, 0, len(s.overlays))
	for _, over := range s.overlays {
		out = append(out, over)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
