package core

import "time"

// TickSample is one diagnostic row describing what a tick did.
type TickSample struct {
	Time          time.Duration
	Entity        EntityID
	Mode          Mode
	TickInterval  time.Duration
	Elapsed       time.Duration
	Outcome       TickOutcome
	TurretYaw     float64
	GunPitch      float64
	RotationSpeed float64
	Cone          AccuracyCone
	ConeCached    bool
}
