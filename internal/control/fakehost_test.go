package control

import (
	"math"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

type orientationCall struct {
	id         core.EntityID
	yaw, pitch float64
	relax      time.Duration
}

type positionCall struct {
	pos   core.Matrix
	relax time.Duration
}

type sizeCall struct {
	marker core.MarkerID
	size   core.MarkerSize
	relax  time.Duration
	inert  bool
}

type aimCall struct {
	id    core.EntityID
	state core.OrientationState
	cone  core.AccuracyCone
	relax time.Duration
}

// fakeHost is a scriptable host.Host that records every renderer call.
type fakeHost struct {
	now      time.Duration
	playing  bool
	timeWarp bool

	vehicle *core.VehicleDescriptor
	control *core.ControlState

	serverYaw map[core.EntityID]float64
	target    *core.Vec3
	geometry  core.Geometry
	locked    bool

	speeds []float64

	orientations []orientationCall
	positions    []positionCall
	sizes        []sizeCall
	aims         []aimCall

	onAim func(aimCall)
}

func newFakeHost() *fakeHost {
	return &fakeHost{serverYaw: map[core.EntityID]float64{}}
}

// qualify makes id the controlled tank in client mode.
func (h *fakeHost) qualify(id core.EntityID, maxYawSpeed float64) {
	h.vehicle = &core.VehicleDescriptor{ID: id, Tags: []string{"mediumTank"}, MaxYawSpeed: maxYawSpeed}
	h.control = &core.ControlState{ClientMode: true}
}

// aimAt places the target 100m away at yaw from the pivot, level.
func (h *fakeHost) aimAt(yaw float64) {
	t := core.Vec3{X: 100 * math.Sin(yaw), Z: 100 * math.Cos(yaw)}
	h.target = &t
}

func (h *fakeHost) Now() time.Duration { return h.now }
func (h *fakeHost) IsPlaying() bool { return h.playing }
func (h *fakeHost) TimeWarpActive() bool { return h.timeWarp }

func (h *fakeHost) ControlledVehicle() (core.VehicleDescriptor, bool) {
	if h.vehicle == nil {
		return core.VehicleDescriptor{}, false
	}
	return *h.vehicle, true
}

func (h *fakeHost) RotationControl() (core.ControlState, bool) {
	if h.control == nil {
		return core.ControlState{}, false
	}
	return *h.control, true
}

func (h *fakeHost) ServerYaw(id core.EntityID) (float64, bool) {
	yaw, ok := h.serverYaw[id]
	return yaw, ok
}

func (h *fakeHost) AccuracyCone(_ core.EntityID, speed float64) core.AccuracyCone {
	h.speeds = append(h.speeds, speed)
	return core.AccuracyCone{Current: 0.002 + 0.01*math.Abs(speed), Ideal: 0.002}
}

func (h *fakeHost) Target(core.EntityID) (core.Vec3, bool) {
	if h.target == nil {
		return core.Vec3{}, false
	}
	return *h.target, true
}

func (h *fakeHost) Geometry(core.EntityID) core.Geometry { return h.geometry }
func (h *fakeHost) AimLocked(core.EntityID) bool { return h.locked }

func (h *fakeHost) SetOrientation(id core.EntityID, yaw, pitch float64, relax time.Duration) {
	h.orientations = append(h.orientations, orientationCall{id, yaw, pitch, relax})
}

func (h *fakeHost) SetMarkerPosition(pos core.Matrix, relax time.Duration) {
	h.positions = append(h.positions, positionCall{pos, relax})
}

func (h *fakeHost) SetMarkerSize(marker core.MarkerID, size core.MarkerSize, relax time.Duration, inert bool) {
	h.sizes = append(h.sizes, sizeCall{marker, size, relax, inert})
}

func (h *fakeHost) AimUpdated(id core.EntityID, state core.OrientationState, cone core.AccuracyCone, relax time.Duration) {
	call := aimCall{id, state, cone, relax}
	h.aims = append(h.aims, call)
	if h.onAim != nil {
		h.onAim(call)
	}
}
