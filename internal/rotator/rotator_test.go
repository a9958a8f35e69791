package rotator

import (
	"math"
	"testing"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/geo"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

var (
	baseline    = core.TimingParameters{TickInterval: 100 * time.Millisecond, MinProcessableDelta: 20 * time.Millisecond}
	accelerated = core.TimingParameters{TickInterval: 3 * time.Millisecond, MinProcessableDelta: time.Millisecond}
)

// aimAt returns a level target 100m away at the given hull-relative yaw.
func aimAt(yawDeg float64) *core.Vec3 {
	y := geo.Deg(yawDeg)
	return &core.Vec3{X: 100 * math.Sin(y), Z: 100 * math.Cos(y)}
}

func TestIntegrate_DegenerateElapsedSkips(t *testing.T) {
	ig := New(0)
	prev := core.OrientationState{TurretYaw: 0.3, GunPitch: 0.1, RotationSpeed: 0.7}

	for _, elapsed := range []time.Duration{500 * time.Microsecond, time.Millisecond, 0} {
		state, outcome := ig.Integrate(Input{
			State:       prev,
			Elapsed:     elapsed,
			Params:      accelerated,
			Target:      aimAt(90),
			MaxYawSpeed: geo.Deg(60),
		})
		assert.Equal(t, core.OutcomeSkipped, outcome)
		assert.Equal(t, prev, state, "elapsed %s must not mutate state", elapsed)
	}
}

func TestIntegrate_ClampsToMaxSpeed(t *testing.T) {
	ig := New(0)
	state, outcome := ig.Integrate(Input{
		Elapsed:     100 * time.Millisecond,
		Params:      baseline,
		Target:      aimAt(30),
		MaxYawSpeed: geo.Deg(60),
	})
	assert.Equal(t, core.OutcomeIntegrated, outcome)
	assert.InDelta(t, geo.Deg(6), state.TurretYaw, eps)
	assert.InDelta(t, geo.Deg(60), state.RotationSpeed, 1e-6)
}

func TestIntegrate_ReachesTargetWithinStep(t *testing.T) {
	ig := New(0)
	state, _ := ig.Integrate(Input{
		State:       core.OrientationState{TurretYaw: geo.Deg(28)},
		Elapsed:     100 * time.Millisecond,
		Params:      baseline,
		Target:      aimAt(30),
		MaxYawSpeed: geo.Deg(60),
	})
	assert.InDelta(t, geo.Deg(30), state.TurretYaw, 1e-9)
	assert.InDelta(t, geo.Deg(20), state.RotationSpeed, 1e-6)
}

func TestIntegrate_TurnsAcrossWrap(t *testing.T) {
	ig := New(0)
	state, _ := ig.Integrate(Input{
		State:       core.OrientationState{TurretYaw: geo.Deg(170)},
		Elapsed:     100 * time.Millisecond,
		Params:      baseline,
		Target:      aimAt(-170),
		MaxYawSpeed: geo.Deg(60),
	})
	assert.InDelta(t, geo.Deg(176), state.TurretYaw, 1e-9)
	assert.InDelta(t, geo.Deg(60), state.RotationSpeed, 1e-6)

	state, _ = ig.Integrate(Input{
		State:       core.OrientationState{TurretYaw: geo.Deg(179)},
		Elapsed:     time.Second,
		Params:      baseline,
		Target:      aimAt(-170),
		MaxYawSpeed: geo.Deg(60),
	})
	assert.InDelta(t, geo.Deg(-170), state.TurretYaw, 1e-9)
	assert.InDelta(t, geo.Deg(11), state.RotationSpeed, 1e-6)
}

func TestIntegrate_YawLimitsAvoidDeadZone(t *testing.T) {
	ig := New(0)
	limits := core.RotationLimits{YawMin: geo.Deg(-30), YawMax: geo.Deg(30)}

	// Shortest wrapped turn from 20° to 170° would cross the rear; a limited
	// traverse stops at the limit instead.
	state, _ := ig.Integrate(Input{
		State:       core.OrientationState{TurretYaw: geo.Deg(20)},
		Elapsed:     time.Second,
		Params:      baseline,
		Target:      aimAt(170),
		Limits:      limits,
		MaxYawSpeed: geo.Deg(60),
	})
	assert.InDelta(t, geo.Deg(30), state.TurretYaw, 1e-9)

	state, _ = ig.Integrate(Input{
		State:       core.OrientationState{TurretYaw: geo.Deg(20)},
		Elapsed:     100 * time.Millisecond,
		Params:      baseline,
		Target:      aimAt(-90),
		Limits:      limits,
		MaxYawSpeed: geo.Deg(60),
	})
	assert.InDelta(t, geo.Deg(14), state.TurretYaw, 1e-9)
}

func TestIntegrate_PitchFollowsYawDependentLimits(t *testing.T) {
	ig := New(0)
	limits := core.RotationLimits{Pitch: []core.PitchLimit{
		{Yaw: geo.Deg(-180), Min: geo.Deg(-8), Max: geo.Deg(20)},
		{Yaw: geo.Deg(0), Min: geo.Deg(-8), Max: geo.Deg(20)},
		{Yaw: geo.Deg(180), Min: geo.Deg(-2), Max: geo.Deg(20)},
	}}
	target := &core.Vec3{Y: -100, Z: 100} // 45° below

	state, _ := ig.Integrate(Input{
		Elapsed:       time.Second,
		Params:        baseline,
		Target:        target,
		Limits:        limits,
		MaxYawSpeed:   geo.Deg(60),
		MaxPitchSpeed: geo.Deg(90),
	})
	assert.InDelta(t, geo.Deg(-8), state.GunPitch, 1e-9)

	state, _ = ig.Integrate(Input{
		Elapsed:       10 * time.Millisecond,
		Params:        accelerated,
		Target:        target,
		Limits:        limits,
		MaxYawSpeed:   geo.Deg(60),
		MaxPitchSpeed: geo.Deg(100),
	})
	assert.InDelta(t, geo.Deg(-1), state.GunPitch, 1e-9)
}

func TestIntegrate_IdleWithoutTargetOrLocked(t *testing.T) {
	ig := New(0)
	prev := core.OrientationState{TurretYaw: 0.5, GunPitch: 0.05, RotationSpeed: 1.2}

	state, outcome := ig.Integrate(Input{State: prev, Elapsed: 50 * time.Millisecond, Params: baseline})
	assert.Equal(t, core.OutcomeIdle, outcome)
	assert.Equal(t, prev.TurretYaw, state.TurretYaw)
	assert.Equal(t, prev.GunPitch, state.GunPitch)
	assert.Zero(t, state.RotationSpeed)

	state, outcome = ig.Integrate(Input{
		State: prev, Elapsed: 50 * time.Millisecond, Params: baseline,
		Target: aimAt(90), Locked: true, MaxYawSpeed: 1,
	})
	assert.Equal(t, core.OutcomeIdle, outcome)
	assert.Equal(t, prev.TurretYaw, state.TurretYaw)
	assert.Zero(t, state.RotationSpeed)
}

func TestIntegrate_ServerReconciliation(t *testing.T) {
	ig := New(geo.Deg(1))

	// Local estimate leads by 6°, server is at 0°: clamped to the band.
	state, _ := ig.Integrate(Input{
		Elapsed:      100 * time.Millisecond,
		Params:       baseline,
		Target:       aimAt(30),
		MaxYawSpeed:  geo.Deg(60),
		ServerYaw:    0,
		HasServerYaw: true,
	})
	assert.InDelta(t, geo.Deg(1), state.TurretYaw, 1e-9)
	assert.InDelta(t, geo.Deg(10), state.RotationSpeed, 1e-6)

	// Within tolerance the local estimate is kept.
	state, _ = ig.Integrate(Input{
		Elapsed:      100 * time.Millisecond,
		Params:       baseline,
		Target:       aimAt(30),
		MaxYawSpeed:  geo.Deg(60),
		ServerYaw:    geo.Deg(5.5),
		HasServerYaw: true,
	})
	assert.InDelta(t, geo.Deg(6), state.TurretYaw, 1e-9)
}
