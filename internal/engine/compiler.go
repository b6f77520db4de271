// Package engine compiles tile units into textured, bevelled brushes.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/piwi3910/tilegen/internal/model"
	"github.com/piwi3910/tilegen/internal/scene"
	"github.com/piwi3910/tilegen/internal/seed"
	"github.com/piwi3910/tilegen/internal/texturing"
)

var (
	// ErrBadNormal is returned for units whose normal is not an axis
	// direction.
	ErrBadNormal = errors.New("tile normal is not axis-aligned")
	// ErrDuplicateUnit is returned when two units share an ID.
	ErrDuplicateUnit = errors.New("duplicate tile unit")
	// ErrUnknownUnit is returned when an overlay binding names a unit that
	// is not being compiled.
	ErrUnknownUnit = errors.New("unknown tile unit")
	// ErrUnknownOverlay is returned when a binding names a missing overlay.
	ErrUnknownOverlay = errors.New("unknown overlay")
)

// Settings control a compile.
type Settings struct {
	// Seed is the master seed every random choice is derived from.
	Seed string `json:"seed" yaml:"seed"`
	// Workers is the number of planes laid out in parallel. Values of 1 or
	// less lay planes out one at a time; output is the same either way.
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultSettings returns sensible default compile settings.
func DefaultSettings() Settings {
	return Settings{
		Seed:    "tilegen",
		Workers: 1,
	}
}

// Builder is the scene the compiler adds brushes to.
type Builder interface {
	MakePrism(p scene.Prism) (*scene.Solid, *scene.Face)
	AddSolid(solid *scene.Solid)
	Face(id int) (*scene.Face, bool)
	Overlay(id int) (*scene.Overlay, bool)
	RemoveOverlay(id int)
}

// Compiler turns tile units into brushes.
type Compiler struct {
	Settings Settings

	catalog *texturing.Catalog
	builder Builder
	log     *zap.Logger
	cache   *Cache
	seeder  *seed.Seeder

	nodrawTex *model.TexDef
}

// New creates a compiler writing into builder. A nil logger disables logging.
func New(settings Settings, catalog *texturing.Catalog, builder Builder, log *zap.Logger) *Compiler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Compiler{
		Settings: settings,
		catalog:  catalog,
		builder:  builder,
		log:      log,
		cache:    NewCache(),
	}
}

// Cache returns the compiler's per-compile cache.
func (c *Compiler) Cache() *Cache {
	return c.cache
}

// Compile generates brushes for every unit, then binds overlays to the new
// faces. Units sharing a plane and normal are merged unless they opt out.
// Nothing is added to the builder if the input is rejected.
func (c *Compiler) Compile(units []model.TileUnit, bindings []OverlayBinding) (*model.CompileResult, error) {
	start := time.Now()
	log := c.log.With(zap.String("run", uuid.New().String()))

	c.cache.Clear()
	c.catalog.ResetWarnings()
	c.seeder = seed.New(c.Settings.Seed)
	c.nodrawTex = c.cache.TexDef(model.TexDef{
		Mat:   model.MaterialConf{Mat: c.catalog.Nodraw, Scale: 1, TileSize: model.Size4x4},
		Scale: 0.25,
	})

	if err := c.catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	surfaces, err := c.surfaces(units)
	if err != nil {
		return nil, err
	}
	if err := c.checkBindings(units, bindings); err != nil {
		return nil, err
	}
	log.Info("generating tiles",
		zap.Int("units", len(units)),
		zap.Int("planes", len(surfaces)),
		zap.Int("workers", c.Settings.Workers),
	)

	layouts := make([]*layout, len(surfaces))
	errs := make([]error, len(surfaces))
	tasks := make([]func(), len(surfaces))
	for i, s := range surfaces {
		tasks[i] = func() {
			layouts[i], errs[i] = c.layoutSurface(s)
		}
	}
	runAll(c.Settings.Workers, tasks)
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("plane %v: %w", surfaces[i].key, err)
		}
	}

	result := &model.CompileResult{
		Planes:    make([]model.PlaneResult, 0, len(surfaces)),
		UnitFaces: make(map[string][]int),
	}
	for i, s := range surfaces {
		result.Planes = append(result.Planes, c.emitSurface(s, layouts[i], result.UnitFaces))
	}
	result.RemovedOverlays = c.bindOverlays(bindings, result.UnitFaces, log)

	stats := c.cache.Stats()
	log.Debug("caches",
		zap.Int("subtile_hits", stats.SubTileHits),
		zap.Int("subtile_misses", stats.SubTileMisses),
		zap.Int("texdef_hits", stats.TexDefHits),
		zap.Int("texdef_misses", stats.TexDefMisses),
		zap.Int("bevel_hits", stats.BevelHits),
		zap.Int("bevel_misses", stats.BevelMisses),
	)
	log.Info("generated tiles",
		zap.Int("regions", result.RegionCount()),
		zap.Int("cells", result.CellCount()),
		zap.Int("removed_overlays", len(result.RemovedOverlays)),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// surfaces groups units into planes, ordered by plane key. Each unit that
// can't merge gets a plane of its own.
func (c *Compiler) surfaces(units []model.TileUnit) ([]*surface, error) {
	seen := make(map[string]bool, len(units))
	byKey := make(map[model.PlaneKey]*surface)

	for _, unit := range units {
		id := unit.ID()
		if seen[id] {
			return nil, fmt.Errorf("%q: %w", id, ErrDuplicateUnit)
		}
		seen[id] = true

		normal := unit.Normal()
		axis, ok := normal.NormalAxis()
		if !ok {
			return nil, fmt.Errorf("unit %q normal (%s): %w", id, normal, ErrBadNormal)
		}

		front := unit.Position().Add(normal.Scale(64))
		key := model.PlaneKey{Normal: normal, Distance: front.Dot(normal)}
		if !unit.CanMerge() {
			key.Unit = id
		}

		s, ok := byKey[key]
		if !ok {
			u, v := model.PlaneAxes(axis)
			s = &surface{
				key:    key,
				normal: normal,
				axis:   axis,
				u:      u,
				v:      v,
				orient: model.OrientFromNormal(normal),
			}
			byKey[key] = s
		}
		if err := c.checkGenerators(unit, s.orient); err != nil {
			return nil, fmt.Errorf("unit %q: %w", id, err)
		}
		s.units = append(s.units, unit)
	}

	out := make([]*surface, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].key.Less(out[j].key)
	})
	return out, nil
}

// checkGenerators makes sure the catalog can texture every tile of a unit.
func (c *Compiler) checkGenerators(unit model.TileUnit, orient model.Orient) error {
	var err error
	unit.Subtiles(func(u, v int, t model.TileType) {
		if err != nil {
			return
		}
		if color, ok := t.Color(); ok {
			_, err = c.catalog.Get(color, orient)
		}
	})
	return err
}

func (c *Compiler) checkBindings(units []model.TileUnit, bindings []OverlayBinding) error {
	known := make(map[string]bool, len(units))
	for _, unit := range units {
		known[unit.ID()] = true
	}
	for _, b := range bindings {
		if _, ok := c.builder.Overlay(b.OverlayID); !ok {
			return fmt.Errorf("overlay %d: %w", b.OverlayID, ErrUnknownOverlay)
		}
		for _, id := range b.Units {
			if !known[id] {
				return fmt.Errorf("overlay %d: %q: %w", b.OverlayID, id, ErrUnknownUnit)
			}
		}
	}
	return nil
}
