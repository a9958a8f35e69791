// Package rotator integrates turret yaw and gun pitch toward an aim target
// under speed and traverse limits.
package rotator

import (
	"math"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/geo"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// DefaultServerYawTolerance is how far the local yaw may lead the server yaw.
var DefaultServerYawTolerance = geo.Deg(1)

// Input is everything one integration step needs.
type Input struct {
	State   core.OrientationState
	Elapsed time.Duration
	Params  core.TimingParameters

	// Target is nil when no aim point is resolvable and none is cached.
	Target   *core.Vec3
	Geometry core.Geometry
	// Locked is true when aim is locked and no time-warp override applies.
	Locked bool

	Limits        core.RotationLimits
	MaxYawSpeed   float64
	MaxPitchSpeed float64

	// ServerYaw is consulted only when HasServerYaw is set, which callers
	// leave false during replay playback.
	ServerYaw    float64
	HasServerYaw bool
}

// Integrator advances orientation. It is stateless apart from configuration.
type Integrator struct {
	serverYawTolerance float64
}

// New returns an Integrator. A non-positive tolerance selects the default.
func New(serverYawTolerance float64) Integrator {
	if serverYawTolerance <= 0 {
		serverYawTolerance = DefaultServerYawTolerance
	}
	return Integrator{serverYawTolerance: serverYawTolerance}
}

// Integrate returns the next orientation and what was done with the step.
func (ig Integrator) Integrate(in Input) (core.OrientationState, core.TickOutcome) {
	if in.Elapsed <= in.Params.MinProcessableDelta {
		return in.State, core.OutcomeSkipped
	}

	idle := in.State
	idle.RotationSpeed = 0
	if in.Target == nil || in.Locked {
		return idle, core.OutcomeIdle
	}
	desiredYaw, desiredPitch, ok := geo.YawPitch(in.Geometry, *in.Target)
	if !ok {
		return idle, core.OutcomeIdle
	}

	dt := in.Elapsed.Seconds()
	prevYaw := in.State.TurretYaw

	yaw := ig.advanceYaw(prevYaw, desiredYaw, in.MaxYawSpeed*dt, in.Limits)
	if in.HasServerYaw {
		yaw = ig.reconcile(yaw, in.ServerYaw, in.Limits)
	}

	pitchSpeed := in.MaxPitchSpeed
	if pitchSpeed <= 0 {
		pitchSpeed = in.MaxYawSpeed
	}
	minPitch, maxPitch := in.Limits.PitchAt(yaw)
	desiredPitch = geo.Clamp(desiredPitch, minPitch, maxPitch)
	step := pitchSpeed * dt
	pitch := in.State.GunPitch + geo.Clamp(desiredPitch-in.State.GunPitch, -step, step)
	pitch = geo.Clamp(pitch, minPitch, maxPitch)

	return core.OrientationState{
		TurretYaw:     yaw,
		GunPitch:      pitch,
		RotationSpeed: geo.AngleDifference(prevYaw, yaw) / dt,
	}, core.OutcomeIntegrated
}

// advanceYaw moves current toward desired by at most maxStep. A limited
// traverse never crosses its dead zone, so the straight path inside the
// limits is used instead of the wrapped shortest turn.
func (ig Integrator) advanceYaw(current, desired, maxStep float64, l core.RotationLimits) float64 {
	if !l.YawLimited() {
		delta := geo.SignedTurn(current, desired)
		return geo.WrapAngle(current + geo.Clamp(delta, -maxStep, maxStep))
	}
	current = geo.Clamp(current, l.YawMin, l.YawMax)
	desired = geo.Clamp(desired, l.YawMin, l.YawMax)
	return geo.Clamp(current+geo.Clamp(desired-current, -maxStep, maxStep), l.YawMin, l.YawMax)
}

// reconcile keeps the local estimate within the tolerance band around the
// authoritative yaw.
func (ig Integrator) reconcile(local, server float64, l core.RotationLimits) float64 {
	off := geo.SignedTurn(server, local)
	if math.Abs(off) <= ig.serverYawTolerance {
		return local
	}
	yaw := geo.WrapAngle(server + math.Copysign(ig.serverYawTolerance, off))
	if l.YawLimited() {
		yaw = geo.Clamp(yaw, l.YawMin, l.YawMax)
	}
	return yaw
}
