// Package simhost is a headless host for the control core. It schedules ticks
// with the minimum-delay contract of a real engine, produces human-paced aim
// input and a lagging authoritative yaw, and drives the marker hooks the way
// the engine's marker controller does.
package simhost

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/control"
	"github.com/Pruszko/ResponsiveReticle/internal/dispatcher"
	"github.com/Pruszko/ResponsiveReticle/internal/geo"
	"github.com/Pruszko/ResponsiveReticle/internal/queue"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Marker identities the simulated marker layer drives.
const (
	ClientMarker core.MarkerID = 1
	ServerMarker core.MarkerID = 2
)

const (
	serverTick   = 100 * time.Millisecond
	targetRange  = 100.0
	historySize  = 512
	flickEvery   = 700 * time.Millisecond
	flickSpread  = math.Pi / 3
	wobbleAmp    = 0.5 * math.Pi / 180
	wobbleHz     = 1.0
	idealAngle   = 0.0023
	speedPenalty = 0.09
)

// Dispatcher is the hook entry point of the control core.
type Dispatcher interface {
	Dispatch(e dispatcher.Event) (any, error)
}

// Config describes the simulated session.
type Config struct {
	Vehicle   core.VehicleDescriptor
	Control   core.ControlState
	Replay    bool
	Jitter    time.Duration // extra scheduler delay, uniform in [0, Jitter]
	ServerLag time.Duration // age of the aim input the server turret follows
	Seed      uint64
}

// Stats summarizes a run.
type Stats struct {
	Ticks           int
	SimulatedTime   time.Duration
	MinGap, MaxGap  time.Duration
	PositionUpdates int
	SizeRequests    int
	SizeForwarded   int
}

type aimStamp struct {
	at  time.Duration
	yaw float64
}

// Host implements host.Host.
type Host struct {
	cfg   Config
	rng   *rand.Rand
	hooks Dispatcher

	now        time.Duration
	aimYaw     float64
	aimHeight  float64
	nextFlick  time.Duration
	aimHistory *queue.Queue[aimStamp]
	serverTime time.Duration
	serverYaw  float64
	yaw, pitch float64

	stats Stats
	err   error
}

// New creates a simulated host.
func New(cfg Config) *Host {
	return &Host{
		cfg:        cfg,
		rng:        rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		aimHistory: queue.New[aimStamp](historySize),
	}
}

// Attach sets the hook entry point marker updates are sent to.
func (h *Host) Attach(d Dispatcher) {
	h.hooks = d
}

// Stats returns the counters of the last run.
func (h *Host) Stats() Stats {
	return h.stats
}

// Run ticks the controlled vehicle until duration of simulated time has
// passed. Each tick is invoked no earlier than the delay the previous one
// asked for.
func (h *Host) Run(ctx context.Context, duration time.Duration) (Stats, error) {
	if h.hooks == nil {
		return Stats{}, errors.New("simhost: no dispatcher attached")
	}
	h.stats = Stats{}
	h.err = nil

	var last time.Duration
	for h.now < duration {
		if err := ctx.Err(); err != nil {
			return h.stats, err
		}

		res, err := h.hooks.Dispatch(dispatcher.Event{
			Command:   dispatcher.HookTick,
			Payload:   h.cfg.Vehicle.ID,
			Timestamp: h.now,
		})
		if err != nil {
			return h.stats, fmt.Errorf("tick at %s: %w", h.now, err)
		}
		if h.err != nil {
			return h.stats, h.err
		}
		delay, ok := res.(time.Duration)
		if !ok || delay <= 0 {
			return h.stats, fmt.Errorf("tick at %s: bad delay %v", h.now, res)
		}

		if h.stats.Ticks > 0 {
			gap := h.now - last
			if h.stats.MinGap == 0 || gap < h.stats.MinGap {
				h.stats.MinGap = gap
			}
			h.stats.MaxGap = max(h.stats.MaxGap, gap)
		}
		h.stats.Ticks++
		last = h.now

		h.now += delay + h.jitter()
		h.advanceAim()
		h.advanceServer()
	}
	h.stats.SimulatedTime = h.now
	return h.stats, nil
}

func (h *Host) jitter() time.Duration {
	if h.cfg.Jitter <= 0 {
		return 0
	}
	return time.Duration(h.rng.Int64N(int64(h.cfg.Jitter) + 1))
}

// advanceAim flicks to a new heading now and then and wobbles around it in
// between, the way a player fine-tunes aim.
func (h *Host) advanceAim() {
	if h.now >= h.nextFlick {
		h.aimYaw = (h.rng.Float64()*2 - 1) * flickSpread
		h.aimHeight = (h.rng.Float64()*2 - 1) * 5
		h.nextFlick = h.now + flickEvery/2 + time.Duration(h.rng.Int64N(int64(flickEvery)))
	}
	h.aimHistory.Push(aimStamp{at: h.now, yaw: h.currentAimYaw()})
}

// advanceServer steps the authoritative turret at the server tick toward the
// aim input it received ServerLag ago.
func (h *Host) advanceServer() {
	for h.serverTime+serverTick <= h.now {
		h.serverTime += serverTick
		target, ok := h.laggedAim(h.serverTime - h.cfg.ServerLag)
		if !ok {
			continue
		}
		step := h.cfg.Vehicle.MaxYawSpeed * serverTick.Seconds()
		h.serverYaw = geo.WrapAngle(h.serverYaw + geo.Clamp(geo.SignedTurn(h.serverYaw, target), -step, step))
	}
}

func (h *Host) laggedAim(at time.Duration) (float64, bool) {
	stamps := h.aimHistory.Snapshot()
	for i := len(stamps) - 1; i >= 0; i-- {
		if stamps[i].at <= at {
			return stamps[i].yaw, true
		}
	}
	return 0, false
}

func (h *Host) currentAimYaw() float64 {
	return h.aimYaw + wobbleAmp*math.Sin(2*math.Pi*wobbleHz*h.now.Seconds())
}

// Clock

func (h *Host) Now() time.Duration { return h.now }

// Replay

func (h *Host) IsPlaying() bool { return h.cfg.Replay }
func (h *Host) TimeWarpActive() bool { return false }

// Player

func (h *Host) ControlledVehicle() (core.VehicleDescriptor, bool) {
	return h.cfg.Vehicle, true
}

func (h *Host) RotationControl() (core.ControlState, bool) {
	return h.cfg.Control, true
}

// ServerYaw returns the authoritative turret yaw.
func (h *Host) ServerYaw(id core.EntityID) (float64, bool) {
	if id != h.cfg.Vehicle.ID {
		return 0, false
	}
	return h.serverYaw, true
}

// AccuracyCone widens linearly with rotation speed.
func (h *Host) AccuracyCone(_ core.EntityID, rotationSpeed float64) core.AccuracyCone {
	return core.AccuracyCone{
		Current: idealAngle * (1 + speedPenalty*math.Abs(rotationSpeed)*180/math.Pi),
		Ideal:   idealAngle,
	}
}

// Aim

func (h *Host) Target(id core.EntityID) (core.Vec3, bool) {
	if id != h.cfg.Vehicle.ID {
		return core.Vec3{}, false
	}
	yaw := h.currentAimYaw()
	return core.Vec3{
		X: targetRange * math.Sin(yaw),
		Y: h.aimHeight,
		Z: targetRange * math.Cos(yaw),
	}, true
}

func (h *Host) Geometry(core.EntityID) core.Geometry { return core.Geometry{} }
func (h *Host) AimLocked(core.EntityID) bool { return false }

// Renderer

func (h *Host) SetOrientation(id core.EntityID, yaw, pitch float64, _ time.Duration) {
	if id != h.cfg.Vehicle.ID {
		return
	}
	h.yaw, h.pitch = yaw, pitch
}

// Orientation returns the last orientation pushed to the renderer.
func (h *Host) Orientation() (yaw, pitch float64) {
	return h.yaw, h.pitch
}

func (h *Host) SetMarkerPosition(core.Matrix, time.Duration) {
	h.stats.PositionUpdates++
}

func (h *Host) SetMarkerSize(core.MarkerID, core.MarkerSize, time.Duration, bool) {
	h.stats.SizeForwarded++
}

// MarkerLayer

// AimUpdated places both markers at the aim point and sizes them from the cone.
func (h *Host) AimUpdated(_ core.EntityID, state core.OrientationState, cone core.AccuracyCone, relax time.Duration) {
	horizontal := targetRange * math.Cos(state.GunPitch)
	point := core.Vec3{
		X: horizontal * math.Sin(state.TurretYaw),
		Y: targetRange * math.Sin(state.GunPitch),
		Z: horizontal * math.Cos(state.TurretYaw),
	}
	h.dispatch(dispatcher.HookMarkerPosition, control.MarkerPosition{Position: core.TranslationMatrix(point), Relax: relax})

	size := core.MarkerSize{Size: cone.Current * targetRange, Offset: cone.Ideal * targetRange}
	for _, m := range []core.MarkerID{ClientMarker, ServerMarker} {
		h.stats.SizeRequests++
		h.dispatch(dispatcher.HookMarkerSize, control.MarkerSizeUpdate{Marker: m, Size: size, Relax: relax})
	}
}

func (h *Host) dispatch(command string, payload any) {
	if _, err := h.hooks.Dispatch(dispatcher.Event{Command: command, Payload: payload, Timestamp: h.now}); err != nil && h.err == nil {
		h.err = fmt.Errorf("%s at %s: %w", command, h.now, err)
	}
}
