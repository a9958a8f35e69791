package core

import "math"

// EntityID is the host identity of a controlled vehicle.
type EntityID int32

// Vec3 is a world-space vector.
type Vec3 struct {
	X, Y, Z float64
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Len returns the euclidean length of v.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// OrientationState is the turret and gun orientation of one controlled entity.
// Yaw is relative to the hull, pitch is positive up, both in radians.
type OrientationState struct {
	TurretYaw     float64
	GunPitch      float64
	RotationSpeed float64 // rad/s, never negative
}

// Geometry is the placement of the turret pivot at the time of a tick.
type Geometry struct {
	Pivot   Vec3
	HullYaw float64
}

// AccuracyCone is the result of the host's speed-dependent dispersion formula.
type AccuracyCone struct {
	Current float64
	Ideal   float64
}

// TickOutcome says what the integrator did with a tick.
type TickOutcome uint8

const (
	// OutcomeIntegrated means orientation was advanced toward a target.
	OutcomeIntegrated TickOutcome = iota
	// OutcomeIdle means no target or a locked aim: orientation kept, speed zero.
	OutcomeIdle
	// OutcomeSkipped means elapsed time was too small to process; nothing changed.
	OutcomeSkipped
)

func (o TickOutcome) String() string {
	switch o {
	case OutcomeIntegrated:
		return "integrated"
	case OutcomeIdle:
		return "idle"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}
