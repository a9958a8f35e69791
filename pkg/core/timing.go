package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTiming is returned when a TimingParameters pair violates 0 < min delta < tick interval.
var ErrInvalidTiming = errors.New("invalid timing parameters")

// TimingContext is the per-tick snapshot of host state the rate governor decides on.
// It is rebuilt every tick and has no identity.
type TimingContext struct {
	IsReplayPlaying        bool
	EntityResolved         bool // a controlled entity with a descriptor was found
	VehicleClassExcluded   bool // e.g. indirect-fire vehicles
	VehicleIsStaticTurret  bool // gun has a fixed secondary axis
	ControlModeAllowsBoost bool // an active rotation controller in client mode
}

// TimingParameters are the two timing values the tick pipeline runs with.
type TimingParameters struct {
	TickInterval        time.Duration
	MinProcessableDelta time.Duration
}

// Validate checks that both values are positive and MinProcessableDelta < TickInterval.
func (p TimingParameters) Validate() error {
	if p.MinProcessableDelta <= 0 || p.TickInterval <= 0 {
		return fmt.Errorf("%w: values must be positive (tick=%s, min=%s)", ErrInvalidTiming, p.TickInterval, p.MinProcessableDelta)
	}
	if p.MinProcessableDelta >= p.TickInterval {
		return fmt.Errorf("%w: min delta %s must be below tick interval %s", ErrInvalidTiming, p.MinProcessableDelta, p.TickInterval)
	}
	return nil
}

// Mode is the governor state for a tick.
type Mode uint8

const (
	ModeBaseline Mode = iota
	ModeAccelerated
)

func (m Mode) String() string {
	switch m {
	case ModeBaseline:
		return "baseline"
	case ModeAccelerated:
		return "accelerated"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Decision is what the governor hands to the rest of the tick.
type Decision struct {
	Mode Mode
	TimingParameters
}

// Accelerated reports whether the decision shortened the tick interval.
func (d Decision) Accelerated() bool {
	return d.Mode == ModeAccelerated
}
