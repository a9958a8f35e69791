package core

import (
	"math"
	"slices"
)

// PitchLimit is one point of a yaw-dependent pitch limit table.
type PitchLimit struct {
	Yaw float64
	Min float64
	Max float64
}

// RotationLimits bounds turret yaw and gun pitch.
// A zero YawMin/YawMax pair means the turret turns freely.
// Pitch is sorted by Yaw and interpolated linearly between points.
type RotationLimits struct {
	YawMin float64
	YawMax float64
	Pitch  []PitchLimit
}

// YawLimited reports whether the turret has a restricted traverse.
func (l RotationLimits) YawLimited() bool {
	return l.YawMin != 0 || l.YawMax != 0
}

// PitchAt returns the pitch limits for the given turret yaw.
func (l RotationLimits) PitchAt(yaw float64) (minPitch, maxPitch float64) {
	switch len(l.Pitch) {
	case 0:
		return -math.Pi / 2, math.Pi / 2
	case 1:
		return l.Pitch[0].Min, l.Pitch[0].Max
	}

	first, last := l.Pitch[0], l.Pitch[len(l.Pitch)-1]
	if yaw <= first.Yaw {
		return first.Min, first.Max
	}
	if yaw >= last.Yaw {
		return last.Min, last.Max
	}

	i := 1
	for i < len(l.Pitch) && l.Pitch[i].Yaw < yaw {
		i++
	}
	a, b := l.Pitch[i-1], l.Pitch[i]
	span := b.Yaw - a.Yaw
	if span <= 0 {
		return b.Min, b.Max
	}
	t := (yaw - a.Yaw) / span
	return a.Min + (b.Min-a.Min)*t, a.Max + (b.Max-a.Max)*t
}

// VehicleDescriptor is the static data of a controlled vehicle the core needs.
type VehicleDescriptor struct {
	ID            EntityID
	Tags          []string
	StaticPitch   bool // gun elevation is fixed
	Limits        RotationLimits
	MaxYawSpeed   float64 // rad/s
	MaxPitchSpeed float64 // rad/s, zero means same as MaxYawSpeed
}

// HasTag reports whether the vehicle carries the given class tag.
func (d VehicleDescriptor) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// PitchSpeed returns the effective gun elevation speed.
func (d VehicleDescriptor) PitchSpeed() float64 {
	if d.MaxPitchSpeed > 0 {
		return d.MaxPitchSpeed
	}
	return d.MaxYawSpeed
}

// ControlState is the player's rotation controller state.
type ControlState struct {
	ClientMode    bool // false while auto-aim drives the turret
	DirectionLock bool
}
