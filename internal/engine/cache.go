package engine

import (
	"sync"

	"github.com/piwi3910/tilegen/internal/model"
)

// Cache interns sub-tiles and texture definitions and memoises bevel
// predicates for a single compile. Interned values compare equal by pointer.
// It is safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	subtiles map[model.SubTile]*model.SubTile
	texdefs  map[model.TexDef]*model.TexDef
	bevels   map[bevelKey]bool
	stats    CacheStats
}

type bevelKey struct {
	unit   string
	du, dv int
}

// CacheStats counts lookups served from and added to a Cache.
type CacheStats struct {
	SubTileHits, SubTileMisses int
	TexDefHits, TexDefMisses   int
	BevelHits, BevelMisses     int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	c := &Cache{}
	c.Clear()
	return c
}

// Clear drops every cached value and resets the statistics.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subtiles = make(map[model.SubTile]*model.SubTile)
	c.texdefs = make(map[model.TexDef]*model.TexDef)
	c.bevels = make(map[bevelKey]bool)
	c.stats = CacheStats{}
}

// SubTile returns the interned sub-tile for a category and antigel state.
func (c *Cache) SubTile(t model.TileType, antigel bool) *model.SubTile {
	key := model.SubTile{Type: t, Antigel: antigel}
	c.mu.Lock()
	defer c.mu.Unlock()
	if st, ok := c.subtiles[key]; ok {
		c.stats.SubTileHits++
		return st
	}
	c.stats.SubTileMisses++
	st := &key
	c.subtiles[key] = st
	return st
}

// TexDef returns the interned copy of a texture definition.
func (c *Cache) TexDef(td model.TexDef) *model.TexDef {
	c.mu.Lock()
	defer c.mu.Unlock()
	if got, ok := c.texdefs[td]; ok {
		c.stats.TexDefHits++
		return got
	}
	c.stats.TexDefMisses++
	interned := td
	c.texdefs[td] = &interned
	return &interned
}

// ShouldBevel asks a unit whether its (du, dv) side needs a chamfer,
// remembering the answer for the rest of the compile.
func (c *Cache) ShouldBevel(unit model.TileUnit, du, dv int) bool {
	key := bevelKey{unit: unit.ID(), du: du, dv: dv}
	c.mu.Lock()
	if b, ok := c.bevels[key]; ok {
		c.stats.BevelHits++
		c.mu.Unlock()
		return b
	}
	c.mu.Unlock()

	b := unit.ShouldBevel(du, dv)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.BevelMisses++
	c.bevels[key] = b
	return b
}

// Stats returns a snapshot of the lookup counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
