// Package plane implements sparse 2D grids over the cells of a flat surface.
package plane

import "sort"

// Point is an integer cell coordinate on a plane.
type Point struct {
	U, V int
}

// less orders points by V, then U.
func (p Point) less(o Point) bool {
	if p.V != o.V {
		return p.V < o.V
	}
	return p.U < o.U
}

// Grid maps cell coordinates to values. Cells that were never set, or were
// deleted, read back as the grid's default value.
type Grid[T any] struct {
	cells map[Point]T
	def   T

	// order holds the occupied keys sorted ascending, built lazily for
	// Largest. It may contain stale keys for cells deleted since.
	order []Point
	dirty bool
}

// New creates an empty grid with the given default.
func New[T any](def T) *Grid[T] {
	return &Grid[T]{cells: make(map[Point]T), def: def}
}

// Default returns the value reported for absent cells.
func (g *Grid[T]) Default() T {
	return g.def
}

// Get returns the value at (u, v), or the default if absent.
func (g *Grid[T]) Get(u, v int) T {
	if val, ok := g.cells[Point{u, v}]; ok {
		return val
	}
	return g.def
}

// Lookup returns the value at (u, v) and whether it is present.
func (g *Grid[T]) Lookup(u, v int) (T, bool) {
	val, ok := g.cells[Point{u, v}]
	return val, ok
}

// Set stores a value at (u, v).
func (g *Grid[T]) Set(u, v int, val T) {
	p := Point{u, v}
	if _, ok := g.cells[p]; !ok {
		g.dirty = true
	}
	g.cells[p] = val
}

// Delete removes the value at (u, v), if any.
func (g *Grid[T]) Delete(u, v int) {
	delete(g.cells, Point{u, v})
}

// Len returns the number of occupied cells.
func (g *Grid[T]) Len() int {
	return len(g.cells)
}

// Empty reports whether no cell is occupied.
func (g *Grid[T]) Empty() bool {
	return len(g.cells) == 0
}

// Largest returns an occupied cell, or ok=false if the grid is empty.
// The cell returned is the one with the largest V, then the largest U, so
// every cell "after" it has already been removed. Repeatedly taking and
// deleting the result exhausts the grid monotonically.
func (g *Grid[T]) Largest() (u, v int, val T, ok bool) {
	if g.dirty || g.order == nil {
		g.order = g.sortedKeys()
		g.dirty = false
	}
	for len(g.order) > 0 {
		p := g.order[len(g.order)-1]
		if val, ok := g.cells[p]; ok {
			return p.U, p.V, val, true
		}
		g.order = g.order[:len(g.order)-1]
	}
	var zero T
	return 0, 0, zero, false
}

// Copy returns an independent grid with the same cells and default.
func (g *Grid[T]) Copy() *Grid[T] {
	out := &Grid[T]{cells: make(map[Point]T, len(g.cells)), def: g.def}
	for p, val := range g.cells {
		out.cells[p] = val
	}
	return out
}

// Bounds returns the inclusive bounding box of occupied cells.
func (g *Grid[T]) Bounds() (min, max Point, ok bool) {
	first := true
	for p := range g.cells {
		if first {
			min, max = p, p
			first = false
			continue
		}
		if p.U < min.U {
			min.U = p.U
		}
		if p.V < min.V {
			min.V = p.V
		}
		if p.U > max.U {
			max.U = p.U
		}
		if p.V > max.V {
			max.V = p.V
		}
	}
	return min, max, !first
}

// Each calls fn for every occupied cell in ascending (V, U) order.
func (g *Grid[T]) Each(fn func(u, v int, val T)) {
	for _, p := range g.sortedKeys() {
		fn(p.U, p.V, g.cells[p])
	}
}

func (g *Grid[T]) sortedKeys() []Point {
	keys := make([]Point, 0, len(g.cells))
	for p := range g.cells {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})
	return keys
}
