package cache

import (
	"fmt"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMarkerCacheSize bounds the number of tracked marker instances.
// Markers are transient UI objects that never announce their destruction,
// so the least recently updated ones are evicted.
const DefaultMarkerCacheSize = 64

// MarkerRateCache maps marker identity to the time of its last allowed size update
type MarkerRateCache struct {
	entries *lru.Cache[core.MarkerID, time.Duration]
}

// NewMarkerRateCache creates a MarkerRateCache holding at most size markers
func NewMarkerRateCache(size int) (*MarkerRateCache, error) {
	if size <= 0 {
		size = DefaultMarkerCacheSize
	}
	entries, err := lru.New[core.MarkerID, time.Duration](size)
	if err != nil {
		return nil, fmt.Errorf("creating marker cache: %w", err)
	}
	return &MarkerRateCache{entries: entries}, nil
}

// Get retrieves the last update time of a marker
func (c *MarkerRateCache) Get(id core.MarkerID) (time.Duration, bool) {
	return c.entries.Get(id)
}

// Set records an update time for a marker
func (c *MarkerRateCache) Set(id core.MarkerID, at time.Duration) {
	c.entries.Add(id, at)
}

// Delete forgets a marker
func (c *MarkerRateCache) Delete(id core.MarkerID) {
	c.entries.Remove(id)
}

// Len returns the number of tracked markers
func (c *MarkerRateCache) Len() int {
	return c.entries.Len()
}

// Reset clears all markers from the cache
func (c *MarkerRateCache) Reset() {
	c.entries.Purge()
}
