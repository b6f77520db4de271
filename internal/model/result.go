package model

// Region is one emitted brush: a rectangle of cells on a plane with its
// texture and bevels. Coordinates are inclusive cell indices.
type Region struct {
	MinU    int      `json:"min_u"`
	MinV    int      `json:"min_v"`
	MaxU    int      `json:"max_u"`
	MaxV    int      `json:"max_v"`
	Type    TileType `json:"type"`
	Bevels  Bevels   `json:"bevels"`
	TexDef  TexDef   `json:"texdef"`
	SolidID int      `json:"solid_id"`
	FaceID  int      `json:"face_id"`
}

// Width returns the U extent in cells.
func (r Region) Width() int { return r.MaxU - r.MinU + 1 }

// Height returns the V extent in cells.
func (r Region) Height() int { return r.MaxV - r.MinV + 1 }

// Area returns the number of cells covered.
func (r Region) Area() int { return r.Width() * r.Height() }

// Contains reports whether the cell lies inside the region.
func (r Region) Contains(u, v int) bool {
	return u >= r.MinU && u <= r.MaxU && v >= r.MinV && v <= r.MaxV
}

// PlaneResult holds every region emitted for one plane.
type PlaneResult struct {
	Key     PlaneKey `json:"key"`
	Units   int      `json:"units"`
	Cells   int      `json:"cells"`
	Regions []Region `json:"regions"`
}

// CompileResult is the outcome of one compile run.
type CompileResult struct {
	Planes []PlaneResult `json:"planes"`
	// UnitFaces maps each tile unit ID to the front faces generated over it.
	UnitFaces       map[string][]int `json:"unit_faces"`
	RemovedOverlays []int            `json:"removed_overlays"`
}

// RegionCount returns the total number of regions over all planes.
func (r CompileResult) RegionCount() int {
	total := 0
	for _, p := range r.Planes {
		total += len(p.Regions)
	}
	return total
}

// CellCount returns the total number of non-void cells compiled.
func (r CompileResult) CellCount() int {
	total := 0
	for _, p := range r.Planes {
		total += p.Cells
	}
	return total
}
