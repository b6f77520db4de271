// Package texturing holds the material catalog tile surfaces are drawn from.
package texturing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/piwi3910/tilegen/internal/model"
)

// NodrawMaterial is the untextured tool material used for hidden faces.
const NodrawMaterial = "tools/toolsnodraw"

// Special material names every catalog must provide.
const (
	SpecialBehind = "behind"
	SpecialEdge   = "edge"
)

var (
	// ErrMissingGenerator is returned when no generator exists for a
	// colour and orientation that is needed.
	ErrMissingGenerator = errors.New("missing texture generator")
	// ErrMissingFloor is returned when a generator has no 4x4 textures,
	// which every size falls back to.
	ErrMissingFloor = errors.New("generator has no 4x4 textures")
	// ErrMissingSpecial is returned when a required special material is unset.
	ErrMissingSpecial = errors.New("missing special material")
)

// DefaultWeights is the relative chance of each size being picked.
var DefaultWeights = map[model.TileSize]int{
	model.SizeDouble:  60,
	model.Size1x1:     40,
	model.Size2x1:     25,
	model.Size1x2:     25,
	model.Size2x2:     4,
	model.Size4x1:     3,
	model.Size1x4:     3,
	model.Size4x4:     1,
	model.SizeGooSide: 1,
}

// inherit copies the left size's textures to the right one when the right is
// unset. Order matters: it guarantees every size is filled if 4x4 is.
var inherit = [][2]model.TileSize{
	{model.Size4x4, model.Size2x2},
	{model.Size4x4, model.Size4x1},
	{model.Size4x4, model.Size1x4},
	{model.Size2x2, model.Size2x1},
	{model.Size2x2, model.Size1x2},
	{model.Size2x1, model.Size1x1},
	{model.Size4x4, model.SizeGooSide},
}

// Options tune how a generator lays out tiles.
type Options struct {
	// ClumpLength scales how far a single run may grow, in tiles.
	ClumpLength int `yaml:"clump_length"`
	// MixTiles lets the grower randomly pick among every size that fits
	// instead of always taking the first.
	MixTiles bool `yaml:"mixtiles"`
	// ScaleUp256 doubles the scale of double-size textures.
	ScaleUp256 bool `yaml:"scaleup256"`
}

// DefaultOptions returns the options used when a generator sets none.
func DefaultOptions() Options {
	return Options{ClumpLength: 4}
}

type genKey struct {
	portal model.Portalable
	orient model.Orient
}

// Generator holds the textures for one colour on one orientation.
type Generator struct {
	Portal   model.Portalable
	Orient   model.Orient
	Options  Options
	Weights  map[model.TileSize]int
	Textures map[model.TileSize][]model.MaterialConf

	cat *Catalog
}

// Has reports whether any texture exists for the size.
func (g *Generator) Has(size model.TileSize) bool {
	return len(g.Textures[size]) > 0
}

// Weight returns the weight for a size, falling back to the defaults.
func (g *Generator) Weight(size model.TileSize) int {
	if w, ok := g.Weights[size]; ok {
		return w
	}
	return DefaultWeights[size]
}

// GetAll returns every texture for a size, converted to antigel variants
// if requested.
func (g *Generator) GetAll(size model.TileSize, antigel bool) []model.MaterialConf {
	mats := g.Textures[size]
	if !antigel || len(mats) == 0 {
		return mats
	}
	out := make([]model.MaterialConf, len(mats))
	for i, mat := range mats {
		out[i] = g.cat.AsAntigel(mat)
	}
	return out
}

func (g *Generator) String() string {
	return fmt.Sprintf("%s %s", g.Portal, g.Orient)
}

// finish fills unset sizes by inheritance and checks the 4x4 floor.
func (g *Generator) finish() error {
	if !g.Has(model.Size4x4) {
		return fmt.Errorf("%s: %w", g, ErrMissingFloor)
	}
	for _, pair := range inherit {
		from, to := pair[0], pair[1]
		if !g.Has(to) && g.Has(from) {
			g.Textures[to] = append([]model.MaterialConf(nil), g.Textures[from]...)
		}
	}
	if g.Options.ScaleUp256 {
		doubled := make([]model.MaterialConf, len(g.Textures[model.SizeDouble]))
		for i, mat := range g.Textures[model.SizeDouble] {
			mat.Scale *= 2
			doubled[i] = mat
		}
		g.Textures[model.SizeDouble] = doubled
	}
	return nil
}

// Catalog is the full set of generators and special materials for a style.
type Catalog struct {
	Nodraw   string
	Specials map[string]string

	log        *zap.Logger
	generators map[genKey]*Generator

	mu      sync.Mutex
	antigel map[string]string
	warned  map[string]bool
}

// NewCatalog creates an empty catalog. A nil logger disables logging.
func NewCatalog(log *zap.Logger) *Catalog {
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		Nodraw:     NodrawMaterial,
		Specials:   make(map[string]string),
		log:        log,
		generators: make(map[genKey]*Generator),
		antigel:    make(map[string]string),
		warned:     make(map[string]bool),
	}
}

// AddGenerator registers textures for a colour and orientation, replacing
// any existing generator. Missing sizes are filled by inheritance.
func (c *Catalog) AddGenerator(portal model.Portalable, orient model.Orient, opts Options,
	weights map[model.TileSize]int, textures map[model.TileSize][]model.MaterialConf) (*Generator, error) {
	gen := &Generator{
		Portal:   portal,
		Orient:   orient,
		Options:  opts,
		Weights:  make(map[model.TileSize]int, len(weights)),
		Textures: make(map[model.TileSize][]model.MaterialConf, len(textures)),
		cat:      c,
	}
	for size, w := range weights {
		gen.Weights[size] = w
	}
	for size, mats := range textures {
		gen.Textures[size] = append([]model.MaterialConf(nil), mats...)
	}
	if gen.Options.ClumpLength <= 0 {
		gen.Options.ClumpLength = DefaultOptions().ClumpLength
	}
	if err := gen.finish(); err != nil {
		return nil, err
	}
	c.generators[genKey{portal, orient}] = gen
	return gen, nil
}

// Get returns the generator for a colour and orientation.
func (c *Catalog) Get(portal model.Portalable, orient model.Orient) (*Generator, error) {
	gen, ok := c.generators[genKey{portal, orient}]
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", portal, orient, ErrMissingGenerator)
	}
	return gen, nil
}

// Generators returns every generator in a stable order.
func (c *Catalog) Generators() []*Generator {
	out := make([]*Generator, 0, len(c.generators))
	for _, gen := range c.generators {
		out = append(out, gen)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Portal != out[j].Portal {
			return out[i].Portal < out[j].Portal
		}
		return out[i].Orient < out[j].Orient
	})
	return out
}

// Validate checks the catalog can serve every tile the compiler may draw.
func (c *Catalog) Validate() error {
	for _, name := range []string{SpecialBehind, SpecialEdge} {
		if c.Specials[name] == "" {
			return fmt.Errorf("%q: %w", name, ErrMissingSpecial)
		}
	}
	for _, gen := range c.Generators() {
		if !gen.Has(model.Size4x4) {
			return fmt.Errorf("%s: %w", gen, ErrMissingFloor)
		}
	}
	return nil
}

// Special returns a named special material.
func (c *Catalog) Special(name string, antigel bool) model.MaterialConf {
	mat := model.MaterialConf{Mat: c.Specials[name], Scale: 1, TileSize: model.Size4x4}
	if antigel {
		return c.AsAntigel(mat)
	}
	return mat
}

// SetAntigel records the antigel variant of a material.
func (c *Catalog) SetAntigel(mat, antigel string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.antigel[strings.ToLower(mat)] = antigel
}

// AsAntigel returns the antigel version of a material. Materials without one
// are returned unchanged, with a warning logged the first time since the last
// ResetWarnings.
func (c *Catalog) AsAntigel(mat model.MaterialConf) model.MaterialConf {
	key := strings.ToLower(mat.Mat)
	c.mu.Lock()
	defer c.mu.Unlock()
	ag, ok := c.antigel[key]
	if !ok {
		if !c.warned[key] {
			c.log.Warn("no antigel material", zap.String("material", mat.Mat))
			c.warned[key] = true
		}
		return mat
	}
	mat.Mat = ag
	return mat
}

// ResetWarnings forgets which missing antigel materials were already reported.
func (c *Catalog) ResetWarnings() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warned = make(map[string]bool)
}

// DefaultCatalog returns the stock catalog: tiled walls, single-pattern
// floors and ceilings, and the standard special materials.
func DefaultCatalog(log *zap.Logger) *Catalog {
	c := NewCatalog(log)
	c.Specials[SpecialBehind] = "anim_wp/framework/backpanels_cheap"
	c.Specials[SpecialEdge] = "anim_wp/framework/squarebeams"

	mat := func(size model.TileSize, names ...string) []model.MaterialConf {
		out := make([]model.MaterialConf, len(names))
		for i, name := range names {
			out[i] = model.MaterialConf{Mat: name, Scale: 1, TileSize: size}
		}
		return out
	}
	stock := []struct {
		portal   model.Portalable
		orient   model.Orient
		textures map[model.TileSize][]model.MaterialConf
	}{
		{model.PortalWhite, model.OrientFloor, map[model.TileSize][]model.MaterialConf{
			model.Size4x4: mat(model.Size4x4, "tile/white_floor_tile002a"),
		}},
		{model.PortalBlack, model.OrientFloor, map[model.TileSize][]model.MaterialConf{
			model.Size4x4: mat(model.Size4x4, "metal/black_floor_metal_001c"),
		}},
		{model.PortalWhite, model.OrientCeiling, map[model.TileSize][]model.MaterialConf{
			model.Size4x4: mat(model.Size4x4, "tile/white_wall_tile003f"),
		}},
		{model.PortalBlack, model.OrientCeiling, map[model.TileSize][]model.MaterialConf{
			model.Size4x4: mat(model.Size4x4, "metal/black_floor_metal_001c"),
		}},
		{model.PortalWhite, model.OrientWall, map[model.TileSize][]model.MaterialConf{
			model.Size1x1: mat(model.Size1x1, "tile/white_wall_tile003a"),
			model.Size2x1: mat(model.Size2x1, "tile/white_wall_tile003h"),
			model.Size2x2: mat(model.Size2x2, "tile/white_wall_tile003c"),
			model.Size4x4: mat(model.Size4x4, "tile/white_wall_tile003f"),
		}},
		{model.PortalBlack, model.OrientWall, map[model.TileSize][]model.MaterialConf{
			model.Size1x1: mat(model.Size1x1, "metal/black_wall_metal_002c"),
			model.Size2x2: mat(model.Size2x2, "metal/black_wall_metal_002a"),
			model.Size4x4: mat(model.Size4x4, "metal/black_wall_metal_002b"),
		}},
	}
	for _, s := range stock {
		if _, err := c.AddGenerator(s.portal, s.orient, DefaultOptions(), nil, s.textures); err != nil {
			// Every stock generator has 4x4 textures.
			panic(err)
		}
	}
	return c
}
