package cache

import (
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// DispersionEntry is the last accuracy sample taken for one entity.
type DispersionEntry struct {
	LastSampleTime time.Duration
	LastYaw        float64
	Cone           core.AccuracyCone
}

// DispersionCache keeps one entry per controlled entity. Entries live until
// the entity is destroyed or the session is reset. It is owned by a single
// control loop and is not safe for concurrent use.
type DispersionCache struct {
	entries map[core.EntityID]DispersionEntry
}

func NewDispersionCache() *DispersionCache {
	return &DispersionCache{
		entries: make(map[core.EntityID]DispersionEntry),
	}
}

func (c *DispersionCache) Get(id core.EntityID) (DispersionEntry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

func (c *DispersionCache) Set(id core.EntityID, e DispersionEntry) {
	c.entries[id] = e
}

func (c *DispersionCache) Delete(id core.EntityID) {
	delete(c.entries, id)
}

func (c *DispersionCache) Len() int {
	return len(c.entries)
}

func (c *DispersionCache) Reset() {
	c.entries = make(map[core.EntityID]DispersionEntry)
}
