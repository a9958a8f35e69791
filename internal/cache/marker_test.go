package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

func newTestMarkerCache(t *testing.T, size int) *MarkerRateCache {
	cache, err := NewMarkerRateCache(size)
	require.NoError(t, err)
	return cache
}

func TestMarkerRateCache_SetAndGet(t *testing.T) {
	cache := newTestMarkerCache(t, 4)

	cache.Set(core.MarkerID(1), 25*time.Millisecond)

	at, ok := cache.Get(core.MarkerID(1))
	require.True(t, ok, "expected to find marker 1")
	assert.Equal(t, 25*time.Millisecond, at)
}

func TestMarkerRateCache_Get_NotFound(t *testing.T) {
	cache := newTestMarkerCache(t, 4)

	_, ok := cache.Get(core.MarkerID(7))
	assert.False(t, ok, "expected not to find marker 7")
}

func TestMarkerRateCache_Overwrite(t *testing.T) {
	cache := newTestMarkerCache(t, 4)

	cache.Set(1, time.Millisecond)
	cache.Set(1, 2*time.Millisecond)

	at, _ := cache.Get(1)
	assert.Equal(t, 2*time.Millisecond, at)
	assert.Equal(t, 1, cache.Len())
}

func TestMarkerRateCache_EvictsLeastRecent(t *testing.T) {
	cache := newTestMarkerCache(t, 2)

	cache.Set(1, 0)
	cache.Set(2, 0)
	cache.Set(3, 0)

	_, ok := cache.Get(1)
	assert.False(t, ok, "oldest marker should be evicted")
	assert.Equal(t, 2, cache.Len())
}

func TestMarkerRateCache_DefaultSize(t *testing.T) {
	cache := newTestMarkerCache(t, 0)

	for i := 0; i < DefaultMarkerCacheSize+10; i++ {
		cache.Set(core.MarkerID(i), 0)
	}
	assert.Equal(t, DefaultMarkerCacheSize, cache.Len())
}

func TestMarkerRateCache_DeleteAndReset(t *testing.T) {
	cache := newTestMarkerCache(t, 4)

	cache.Set(1, 0)
	cache.Set(2, 0)

	cache.Delete(1)
	_, ok := cache.Get(1)
	assert.False(t, ok)

	cache.Reset()
	assert.Equal(t, 0, cache.Len())
}
