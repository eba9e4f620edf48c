package pipeline

import (
	"sync"

	"eventdocs/internal/catalog"
)

type Mode string

const (
	ModeAll     Mode = "allVersions"
	ModeCurrent Mode = "currentVersions"
)

func modeFor(allVersions bool) Mode {
	if allVersions {
		return ModeAll
	}
	return ModeCurrent
}

type cacheKey struct {
	collection catalog.Collection
	mode       Mode
}

// Cache memoizes enriched collections per collection and mode. Entries are
// written once; Invalidate drops them all and starts a new generation, so a
// result computed from an older snapshot is never stored. A disabled cache
// never stores.
type Cache struct {
	mu       sync.RWMutex
	disabled bool
	gen      uint64
	entries  map[cacheKey][]*Enriched
}

func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey][]*Enriched)}
}

func (c *Cache) Get(collection catalog.Collection, mode Mode) ([]*Enriched, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.disabled {
		return nil, false
	}
	v, ok := c.entries[cacheKey{collection, mode}]
	return v, ok
}

// Generation identifies the current cache contents. Read it before loading
// the records a Put will be computed from.
func (c *Cache) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Put stores v unless an entry already exists, and returns the stored entry.
// v is returned unstored when the cache was invalidated after gen was read.
func (c *Cache) Put(collection catalog.Collection, mode Mode, gen uint64, v []*Enriched) []*Enriched {
	if c == nil {
		return v
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.disabled || gen != c.gen {
		return v
	}
	key := cacheKey{collection, mode}
	if existing, ok := c.entries[key]; ok {
		return existing
	}
	c.entries[key] = v
	return v
}

func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries = make(map[cacheKey][]*Enriched)
}

// Disable drops every entry and stops caching for the life of the cache.
func (c *Cache) Disable() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disabled = true
	c.gen++
	c.entries = make(map[cacheKey][]*Enriched)
}

func (c *Cache) Disabled() bool {
	if c == nil {
		return true
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.disabled
}

func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
