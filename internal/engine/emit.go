package engine

import (
	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/scene"
	"github.com/piwi3910/tilegen/internal/texturing"
)

// emitSurface builds a brush for every region of a laid-out surface and
// records the new front faces against the units underneath.
func (c *Compiler) emitSurface(s *surface, l *layout, unitFaces map[string][]int) model.PlaneResult {
	res := model.PlaneResult{
		Key:     s.key,
		Units:   len(s.units),
		Cells:   l.cells,
		Regions: make([]model.Region, 0, len(l.regions)),
	}
	for _, reg := range l.regions {
		res.Regions = append(res.Regions, c.emitRegion(s, l, reg, unitFaces))
	}
	return res
}

func (c *Compiler) emitRegion(s *surface, l *layout, reg region, unitFaces map[string][]int) model.Region {
	r := reg.rect
	tex := r.Value.tex

	// The centre is the midpoint of 32*min and 32*(max+1) on each axis.
	center := s.normal.Scale(s.key.Distance).Add(model.WithAxes(
		s.u, float64((1+r.MinU+r.MaxU)*16),
		s.v, float64((1+r.MinV+r.MaxV)*16),
		s.axis, 0,
	))

	solid, front := c.builder.MakePrism(scene.Prism{
		Origin:  center,
		Normal:  s.normal,
		Width:   float64((1 + r.MaxU - r.MinU) * 32),
		Height:  float64((1 + r.MaxV - r.MinV) * 32),
		Front:   tex.Mat,
		Back:    c.catalog.Special(texturing.SpecialBehind, tex.Antigel),
		Side:    c.catalog.Special(texturing.SpecialEdge, tex.Antigel),
		Bevels:  reg.bevels,
		Antigel: tex.Antigel,
	})

	// Phase the texture so the plane origin lands on the chosen offset.
	tileMin := model.WithAxes(
		s.axis, s.key.Distance,
		s.u, float64(-32*tex.UOff),
		s.v, float64(-32*tex.VOff),
	)
	front.UAxis.Scale = tex.FaceScale()
	front.VAxis.Scale = tex.FaceScale()
	front.UAxis.Offset = tileMin.Dot(front.UAxis.Axis) / front.UAxis.Scale
	front.VAxis.Offset = tileMin.Dot(front.VAxis.Axis) / front.VAxis.Scale

	c.builder.AddSolid(solid)

	seen := make(map[string]bool)
	for u := r.MinU; u <= r.MaxU; u++ {
		for v := r.MinV; v <= r.MaxV; v++ {
			unit := l.owner.Get(u, v)
			if unit == nil || seen[unit.ID()] {
				continue
			}
			seen[unit.ID()] = true
			unitFaces[unit.ID()] = append(unitFaces[unit.ID()], front.ID)
		}
	}

	return model.Region{
		MinU:    r.MinU,
		MinV:    r.MinV,
		MaxU:    r.MaxU,
		MaxV:    r.MaxV,
		Type:    r.Value.sub.Type,
		Bevels:  reg.bevels,
		TexDef:  *tex,
		SolidID: solid.ID,
		FaceID:  front.ID,
	}
}
