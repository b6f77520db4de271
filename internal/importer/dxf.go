package importer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/tilegen/internal/model"
)

// CellSize is the size of one surface cell in DXF drawing units.
const CellSize = 32

type point struct {
	X, Y float64
}

type outline []point

// shape is a closed outline painting one tile category.
type shape struct {
	tile    model.TileType
	outline outline
}

// segment represents a line segment between two 2D points, used for
// chaining disconnected LINE entities into closed outlines.
type segment struct {
	start point
	end   point
}

// ImportDXF paints a surface grid from a DXF drawing. Every closed shape
// (LWPOLYLINE, CIRCLE, or chain of connected LINEs/ARCs) fills the cells
// whose centres it contains with the category named by its layer. Later
// shapes paint over earlier ones. Drawing X and Y map to the surface's U and
// V, with the grid's bottom-left corner at the origin.
func ImportDXF(path string, surf Surface) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var shapes []shape
	segments := make(map[model.TileType][]segment)
	var segmentOrder []model.TileType
	skipped := make(map[string]bool)

	for _, ent := range entities {
		layer := "0"
		if l := ent.Layer(); l != nil {
			layer = l.Name()
		}
		tile, err := model.ParseTileType(layer)
		if err != nil {
			if !skipped[layer] {
				skipped[layer] = true
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Skipped entities on layer %q, which is not a tile type", layer))
			}
			continue
		}

		addSegments := func(segs []segment) {
			if _, ok := segments[tile]; !ok {
				segmentOrder = append(segmentOrder, tile)
			}
			segments[tile] = append(segments[tile], segs...)
		}

		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := lwPolylineToOutline(e)
			if len(o) >= 3 {
				shapes = append(shapes, shape{tile: tile, outline: o})
			} else {
				result.Warnings = append(result.Warnings,
					"Skipped LWPOLYLINE with fewer than 3 vertices")
			}

		case *entity.Circle:
			shapes = append(shapes, shape{tile: tile, outline: circleToOutline(e, 64)})

		case *entity.Arc:
			pts := arcToPoints(e, 32)
			if len(pts) >= 2 {
				addSegments(pointsToSegments(pts))
			}

		case *entity.Line:
			addSegments([]segment{{
				start: point{X: e.Start[0], Y: e.Start[1]},
				end:   point{X: e.End[0], Y: e.End[1]},
			}})

		default:
			// Unsupported entity types are silently skipped
		}
	}

	// Chained outlines paint after the entity shapes, one layer at a time.
	for _, tile := range segmentOrder {
		for _, co := range chainSegments(segments[tile], 0.01) {
			shapes = append(shapes, shape{tile: tile, outline: co})
		}
	}

	if len(shapes) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	rows, warnings := rasterize(shapes)
	result.Warnings = append(result.Warnings, warnings...)
	result.merge(SurfaceTiles(surf, rows))
	return result
}

// rasterize paints shapes onto a grid of category characters, top row first.
func rasterize(shapes []shape) ([]string, []string) {
	var warnings []string
	maxX, maxY := 0.0, 0.0
	clipped := false
	for _, s := range shapes {
		lo, hi := s.outline.bounds()
		if lo.X < 0 || lo.Y < 0 {
			clipped = true
		}
		maxX = math.Max(maxX, hi.X)
		maxY = math.Max(maxY, hi.Y)
	}
	if clipped {
		warnings = append(warnings, "Shapes extend below the origin and were clipped")
	}

	width := int(math.Ceil(maxX / CellSize))
	height := int(math.Ceil(maxY / CellSize))
	cells := make([][]byte, height)
	for v := range cells {
		cells[v] = []byte(strings.Repeat(".", width))
	}

	for _, s := range shapes {
		lo, hi := s.outline.bounds()
		u0 := max(0, int(math.Floor(lo.X/CellSize)))
		v0 := max(0, int(math.Floor(lo.Y/CellSize)))
		u1 := min(width-1, int(math.Ceil(hi.X/CellSize)))
		v1 := min(height-1, int(math.Ceil(hi.Y/CellSize)))
		for u := u0; u <= u1; u++ {
			for v := v0; v <= v1; v++ {
				centre := point{X: float64(u*CellSize) + CellSize/2, Y: float64(v*CellSize) + CellSize/2}
				if s.outline.contains(centre) {
					cells[v][u] = s.tile.Char()
				}
			}
		}
	}

	rows := make([]string, height)
	for v := range cells {
		rows[height-1-v] = string(cells[v])
	}
	return rows, warnings
}

// lwPolylineToOutline converts a DXF LWPOLYLINE entity to an outline.
// Bulge values on vertices produce interpolated arc segments.
func lwPolylineToOutline(lw *entity.LwPolyline) outline {
	var o outline

	for i := 0; i < len(lw.Vertices); i++ {
		v := lw.Vertices[i]
		current := point{X: v[0], Y: v[1]}

		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}

		if math.Abs(bulge) > 1e-9 {
			// This vertex has a bulge: interpolate an arc to the next vertex
			nextIdx := (i + 1) % len(lw.Vertices)
			next := point{X: lw.Vertices[nextIdx][0], Y: lw.Vertices[nextIdx][1]}
			arcPts := bulgeArcPoints(current, next, bulge, 32)
			// Add all but the last point (next vertex will be added naturally)
			o = append(o, arcPts[:len(arcPts)-1]...)
		} else {
			o = append(o, current)
		}
	}

	return o
}

// bulgeArcPoints generates points along an arc defined by two endpoints and a
// DXF bulge factor. The bulge is the tangent of 1/4 the included angle.
func bulgeArcPoints(p1, p2 point, bulge float64, numSegments int) outline {
	mx := (p1.X + p2.X) / 2
	my := (p1.Y + p2.Y) / 2
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	chordLen := math.Hypot(dx, dy)
	if chordLen < 1e-9 {
		return outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chordLen / 2
	radius := (chordLen*chordLen/(4*sagitta) + sagitta) / 2

	perpX := -dy / chordLen
	perpY := dx / chordLen
	dist := radius - sagitta
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	cx := mx + perpX*dist
	cy := my + perpY*dist

	startAngle := math.Atan2(p1.Y-cy, p1.X-cx)
	endAngle := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 {
		// Clockwise arc
		if endAngle > startAngle {
			endAngle -= 2 * math.Pi
		}
	} else if endAngle < startAngle {
		endAngle += 2 * math.Pi
	}

	pts := make(outline, 0, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startAngle + t*(endAngle-startAngle)
		pts = append(pts, point{
			X: cx + radius*math.Cos(angle),
			Y: cy + radius*math.Sin(angle),
		})
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, numSegments int) outline {
	o := make(outline, numSegments)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := 0; i < numSegments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(numSegments)
		o[i] = point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return o
}

// arcToPoints converts a DXF ARC entity to a series of line points.
func arcToPoints(a *entity.Arc, numSegments int) []point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		t := float64(i) / float64(numSegments)
		angle := startRad + t*(endRad-startRad)
		pts[i] = point{
			X: cx + r*math.Cos(angle),
			Y: cy + r*math.Sin(angle),
		}
	}
	return pts
}

// pointsToSegments converts a point sequence to a slice of connected segments.
func pointsToSegments(pts []point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments connects individual segments into closed outlines.
// tolerance is the maximum distance between endpoints to consider them connected.
// Chains that don't close are dropped.
func chainSegments(segs []segment, tolerance float64) []outline {
	if len(segs) == 0 {
		return nil
	}

	used := make([]bool, len(segs))
	var outlines []outline

	for start := range segs {
		if used[start] {
			continue
		}
		chain := []point{segs[start].start, segs[start].end}
		used[start] = true

		changed := true
		for changed {
			changed = false
			tail := chain[len(chain)-1]

			for i, seg := range segs {
				if used[i] {
					continue
				}
				if pointsClose(tail, seg.start, tolerance) {
					chain = append(chain, seg.end)
				} else if pointsClose(tail, seg.end, tolerance) {
					chain = append(chain, seg.start)
				} else {
					continue
				}
				used[i] = true
				changed = true
				break
			}
		}

		if len(chain) < 4 || !pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			continue
		}
		outlines = append(outlines, outline(chain[:len(chain)-1]))
	}

	// Largest first, so smaller shapes drawn inside paint over them.
	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].area() > outlines[j].area()
	})

	return outlines
}

// pointsClose checks whether two points are within the given tolerance.
func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// area computes the absolute area of a polygon using the shoelace formula.
func (o outline) area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X * o[j].Y
		area -= o[j].X * o[i].Y
	}
	return math.Abs(area) / 2
}

func (o outline) bounds() (lo, hi point) {
	lo = point{X: math.Inf(1), Y: math.Inf(1)}
	hi = point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, p := range o {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// contains uses the even-odd rule.
func (o outline) contains(p point) bool {
	in := false
	for i, j := 0, len(o)-1; i < len(o); j, i = i, i+1 {
		a, b := o[i], o[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}
