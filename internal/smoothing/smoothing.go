// Package smoothing adapts the relax times handed to the marker renderers so
// that an accelerated tick does not show up as reticle jitter.
package smoothing

import (
	"fmt"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/cache"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Tuned against a 3ms accelerated tick. Other engines need their own values.
const (
	DefaultRelaxMultiplier    = 2.0
	DefaultZeroRelaxAtOrBelow = time.Millisecond
)

// Config selects the relax policy.
//
// Accelerated ticks longer than ZeroRelaxAtOrBelow get their position relax
// time multiplied by RelaxMultiplier, which keeps the marker moving instead of
// settling between updates. At or below the threshold interpolation itself
// stutters, so relax time is dropped to zero and the marker is placed every
// frame.
type Config struct {
	RelaxMultiplier    float64
	ZeroRelaxAtOrBelow time.Duration
	MarkerCacheSize    int
}

// DefaultConfig returns the tuned defaults.
func DefaultConfig() Config {
	return Config{
		RelaxMultiplier:    DefaultRelaxMultiplier,
		ZeroRelaxAtOrBelow: DefaultZeroRelaxAtOrBelow,
		MarkerCacheSize:    cache.DefaultMarkerCacheSize,
	}
}

// Adapter is the marker smoothing adapter. The marker cache it owns must be
// reset whenever the session or the controlled entity changes.
type Adapter struct {
	cfg      Config
	baseline time.Duration
	markers  *cache.MarkerRateCache
}

// New returns an Adapter that rate-limits size updates to the baseline tick.
func New(cfg Config, baseline core.TimingParameters) (*Adapter, error) {
	if err := baseline.Validate(); err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	if cfg.RelaxMultiplier <= 0 {
		return nil, fmt.Errorf("relax multiplier must be positive, got %v", cfg.RelaxMultiplier)
	}
	if cfg.ZeroRelaxAtOrBelow < 0 {
		return nil, fmt.Errorf("zero relax threshold must not be negative, got %s", cfg.ZeroRelaxAtOrBelow)
	}
	markers, err := cache.NewMarkerRateCache(cfg.MarkerCacheSize)
	if err != nil {
		return nil, err
	}
	return &Adapter{
		cfg:      cfg,
		baseline: baseline.TickInterval,
		markers:  markers,
	}, nil
}

// AdjustRelaxTime returns the relax time to forward to the position renderer.
// Only the client visual request is adjusted, recognised by a relax time equal
// to the current accelerated tick interval; server driven calls pass through.
func (a *Adapter) AdjustRelaxTime(requested time.Duration, d core.Decision) time.Duration {
	if !a.Adjusts(requested, d) {
		return requested
	}
	if d.TickInterval <= a.cfg.ZeroRelaxAtOrBelow {
		return 0
	}
	return time.Duration(float64(requested) * a.cfg.RelaxMultiplier)
}

// Adjusts reports whether AdjustRelaxTime would change requested.
func (a *Adapter) Adjusts(requested time.Duration, d core.Decision) bool {
	return d.Accelerated() && requested == d.TickInterval
}

// GateSizeUpdate reports whether a size update for marker may proceed at now.
// The first call for a marker always proceeds; later calls proceed once the
// baseline interval has passed since the last allowed one.
func (a *Adapter) GateSizeUpdate(marker core.MarkerID, now time.Duration) bool {
	if last, ok := a.markers.Get(marker); ok && now-last < a.baseline {
		return false
	}
	a.markers.Set(marker, now)
	return true
}

// SizeUpdate applies the size gate while accelerated. Allowed updates use the
// baseline relax time whatever was requested. In baseline mode the request
// passes through unchanged.
func (a *Adapter) SizeUpdate(marker core.MarkerID, now, requested time.Duration, d core.Decision) (time.Duration, bool) {
	if !d.Accelerated() {
		return requested, true
	}
	if !a.GateSizeUpdate(marker, now) {
		return 0, false
	}
	return a.baseline, true
}

// Reset forgets every tracked marker.
func (a *Adapter) Reset() {
	a.markers.Reset()
}

// TrackedMarkers returns how many markers the size gate is tracking.
func (a *Adapter) TrackedMarkers() int {
	return a.markers.Len()
}
