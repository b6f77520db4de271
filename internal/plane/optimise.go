package plane

import "sort"

// Rect is an inclusive rectangle of cells sharing one value.
type Rect[T any] struct {
	MinU, MinV int
	MaxU, MaxV int
	Value      T
}

// Optimise covers every occupied cell of g with rectangles whose cells all
// hold values equal under eq. Rectangles never overlap. Each rectangle is
// grown from its minimum corner, trying both U-first and V-first growth and
// keeping the larger (the V-first one on a tie).
func Optimise[T any](g *Grid[T], eq func(a, b T) bool) []Rect[T] {
	keys := make([]Point, 0, g.Len())
	for p := range g.cells {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].U != keys[j].U {
			return keys[i].U < keys[j].U
		}
		return keys[i].V < keys[j].V
	})

	done := make(map[Point]bool, len(keys))
	var rects []Rect[T]
	for _, p := range keys {
		if done[p] {
			continue
		}
		rects = append(rects, growCell(g, done, p, eq))
	}
	return rects
}

// growCell finds a good rectangle with its minimum corner at start.
func growCell[T any](g *Grid[T], done map[Point]bool, start Point, eq func(a, b T) bool) Rect[T] {
	target := g.cells[start]
	fill := func(u, v int) bool {
		p := Point{u, v}
		if done[p] {
			return false
		}
		val, ok := g.cells[p]
		return ok && eq(val, target)
	}

	// U first, then V.
	u1 := start.U
	for fill(u1, start.V) {
		u1++
	}
	v1 := start.V
	for rowFilled(fill, start.U, u1, v1) {
		v1++
	}

	// V first, then U.
	v2 := start.V
	for fill(start.U, v2) {
		v2++
	}
	u2 := start.U
	for colFilled(fill, start.V, v2, u2) {
		u2++
	}

	maxU, maxV := u2, v2
	if (u1-start.U)*(v1-start.V) > (u2-start.U)*(v2-start.V) {
		maxU, maxV = u1, v1
	}

	for u := start.U; u < maxU; u++ {
		for v := start.V; v < maxV; v++ {
			done[Point{u, v}] = true
		}
	}
	return Rect[T]{MinU: start.U, MinV: start.V, MaxU: maxU - 1, MaxV: maxV - 1, Value: target}
}

func rowFilled(fill func(u, v int) bool, minU, endU, v int) bool {
	for u := minU; u < endU; u++ {
		if !fill(u, v) {
			return false
		}
	}
	return true
}

func colFilled(fill func(u, v int) bool, minV, endV, u int) bool {
	for v := minV; v < endV; v++ {
		if !fill(u, v) {
			return false
		}
	}
	return true
}
