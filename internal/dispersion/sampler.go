// Package dispersion samples the host's accuracy cone at a fixed baseline
// cadence, independent of how fast the surrounding aim loop ticks.
//
// Rotation speed measured over an accelerated tick is dominated by the short
// denominator: a small hand movement reads as a fast sweep and the host's
// formula blooms the cone. Resampling once per baseline interval, with the
// speed measured over that whole window, reproduces the cone a baseline run
// would show.
package dispersion

import (
	"fmt"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/cache"
	"github.com/Pruszko/ResponsiveReticle/internal/geo"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/Pruszko/ResponsiveReticle/pkg/host"
)

// Sampler wraps host.Accuracy with a per-entity time-windowed cache.
type Sampler struct {
	accuracy host.Accuracy
	interval time.Duration
	entries  *cache.DispersionCache
}

// New returns a Sampler that recomputes at most once per interval per entity.
func New(accuracy host.Accuracy, interval time.Duration) (*Sampler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: sampling interval %s", core.ErrInvalidTiming, interval)
	}
	return &Sampler{
		accuracy: accuracy,
		interval: interval,
		entries:  cache.NewDispersionCache(),
	}, nil
}

// Interval returns the baseline sampling interval.
func (s *Sampler) Interval() time.Duration {
	return s.interval
}

// Sample returns the accuracy cone for entity id at time now. The second
// result is true when the cached cone was returned unchanged.
//
// The first call uses rotationSpeed as given. Later calls inside the interval
// ignore rotationSpeed; once the interval has elapsed the speed is re-derived
// from the yaw travelled since the last sample.
func (s *Sampler) Sample(id core.EntityID, rotationSpeed, yaw float64, now time.Duration) (core.AccuracyCone, bool) {
	entry, ok := s.entries.Get(id)
	if !ok {
		return s.store(id, rotationSpeed, yaw, now), false
	}

	elapsed := now - entry.LastSampleTime
	if elapsed < s.interval {
		return entry.Cone, true
	}

	speed := geo.AngleDifference(entry.LastYaw, yaw) / elapsed.Seconds()
	return s.store(id, speed, yaw, now), false
}

func (s *Sampler) store(id core.EntityID, speed, yaw float64, now time.Duration) core.AccuracyCone {
	cone := s.accuracy.AccuracyCone(id, speed)
	s.entries.Set(id, cache.DispersionEntry{
		LastSampleTime: now,
		LastYaw:        yaw,
		Cone:           cone,
	})
	return cone
}

// Forget drops the cache entry of a destroyed entity.
func (s *Sampler) Forget(id core.EntityID) {
	s.entries.Delete(id)
}

// Reset drops every entry.
func (s *Sampler) Reset() {
	s.entries.Reset()
}
