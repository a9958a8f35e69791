// Package host defines the capabilities the reticle control core consumes from
// the host engine, and the callbacks it drives on it. The integration layer
// that attaches the core to a real engine satisfies these interfaces.
package host

import (
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Clock returns simulated host time since the session origin.
type Clock interface {
	Now() time.Duration
}

// Replay reports playback state.
type Replay interface {
	IsPlaying() bool
	// TimeWarpActive is true while playback rewinds or fast-forwards and
	// orientation must be integrated even when aim is locked.
	TimeWarpActive() bool
}

// Player resolves the locally controlled entity.
type Player interface {
	ControlledVehicle() (core.VehicleDescriptor, bool)
	// RotationControl returns false when the entity has no active rotation controller.
	RotationControl() (core.ControlState, bool)
}

// Server exposes the authoritative, server reconciled turret yaw.
type Server interface {
	ServerYaw(id core.EntityID) (float64, bool)
}

// Accuracy is the host's costly speed-dependent dispersion formula.
type Accuracy interface {
	AccuracyCone(id core.EntityID, rotationSpeed float64) core.AccuracyCone
}

// Aim resolves where the entity is aiming.
type Aim interface {
	// Target returns the world point the player aims at, if any.
	Target(id core.EntityID) (core.Vec3, bool)
	Geometry(id core.EntityID) core.Geometry
	AimLocked(id core.EntityID) bool
}

// Renderer receives the visual updates.
type Renderer interface {
	SetOrientation(id core.EntityID, yaw, pitch float64, relax time.Duration)
	SetMarkerPosition(pos core.Matrix, relax time.Duration)
	SetMarkerSize(marker core.MarkerID, size core.MarkerSize, relax time.Duration, inert bool)
}

// MarkerLayer is the host marker controller. It receives each aim update and
// calls back into the core's marker entry points for every marker it drives.
type MarkerLayer interface {
	AimUpdated(id core.EntityID, state core.OrientationState, cone core.AccuracyCone, relax time.Duration)
}

// Host is everything the control loop depends on.
type Host interface {
	Clock
	Replay
	Player
	Server
	Accuracy
	Aim
	Renderer
	MarkerLayer
}
