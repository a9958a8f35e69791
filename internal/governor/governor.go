// Package governor decides, per tick, whether the aiming loop runs at the
// accelerated rate or at the baseline server-synchronized rate.
package governor

import (
	"fmt"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/Pruszko/ResponsiveReticle/pkg/host"
)

// Defaults mirror the engine: the baseline tick is the server tick length.
var (
	DefaultBaseline = core.TimingParameters{
		TickInterval:        100 * time.Millisecond,
		MinProcessableDelta: 20 * time.Millisecond,
	}
	DefaultAccelerated = core.TimingParameters{
		TickInterval:        3 * time.Millisecond,
		MinProcessableDelta: 1 * time.Millisecond,
	}
	DefaultExcludedTags = []string{"SPG"}
)

// Config holds the two parameter sets and the vehicle classes never boosted.
type Config struct {
	Baseline     core.TimingParameters
	Accelerated  core.TimingParameters
	ExcludedTags []string
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		Baseline:     DefaultBaseline,
		Accelerated:  DefaultAccelerated,
		ExcludedTags: DefaultExcludedTags,
	}
}

// Governor is the rate decision function. It holds no per-tick state.
type Governor struct {
	baseline     core.TimingParameters
	accelerated  core.TimingParameters
	excludedTags []string
}

// New validates cfg and returns a Governor.
func New(cfg Config) (*Governor, error) {
	if err := cfg.Baseline.Validate(); err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	if err := cfg.Accelerated.Validate(); err != nil {
		return nil, fmt.Errorf("accelerated: %w", err)
	}
	if cfg.Accelerated.TickInterval > cfg.Baseline.TickInterval {
		return nil, fmt.Errorf("%w: accelerated tick %s is slower than baseline %s",
			core.ErrInvalidTiming, cfg.Accelerated.TickInterval, cfg.Baseline.TickInterval)
	}
	return &Governor{
		baseline:     cfg.Baseline,
		accelerated:  cfg.Accelerated,
		excludedTags: cfg.ExcludedTags,
	}, nil
}

// Baseline returns the non-accelerated parameters.
func (g *Governor) Baseline() core.TimingParameters {
	return g.baseline
}

// Accelerated returns the boosted parameters.
func (g *Governor) Accelerated() core.TimingParameters {
	return g.accelerated
}

// Decide applies the rules in priority order: replay playback, then missing or
// unqualified context, then boost.
func (g *Governor) Decide(tc core.TimingContext) core.Decision {
	if tc.IsReplayPlaying {
		return g.baselineDecision()
	}
	if !tc.EntityResolved || tc.VehicleClassExcluded || tc.VehicleIsStaticTurret || !tc.ControlModeAllowsBoost {
		return g.baselineDecision()
	}
	return core.Decision{Mode: core.ModeAccelerated, TimingParameters: g.accelerated}
}

func (g *Governor) baselineDecision() core.Decision {
	return core.Decision{Mode: core.ModeBaseline, TimingParameters: g.baseline}
}

// HostState is the subset of the host the governor queries.
type HostState interface {
	host.Replay
	host.Player
}

// ContextFrom builds this tick's TimingContext from host queries. A missing
// entity or rotation controller leaves the corresponding flags false.
func (g *Governor) ContextFrom(h HostState) core.TimingContext {
	tc := core.TimingContext{IsReplayPlaying: h.IsPlaying()}
	if tc.IsReplayPlaying {
		return tc
	}

	desc, ok := h.ControlledVehicle()
	if !ok {
		return tc
	}
	tc.EntityResolved = true
	for _, tag := range g.excludedTags {
		if desc.HasTag(tag) {
			tc.VehicleClassExcluded = true
			break
		}
	}

	ctrl, ok := h.RotationControl()
	if !ok {
		return tc
	}
	tc.VehicleIsStaticTurret = ctrl.DirectionLock && desc.StaticPitch
	tc.ControlModeAllowsBoost = ctrl.ClientMode
	return tc
}
