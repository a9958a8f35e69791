// Package control runs the per-tick aiming pipeline: rate decision, rotation
// integration, dispersion sampling and marker smoothing, and exposes the
// entry points the host invokes.
//
// A Controller is not safe for concurrent use. The host calls it from its
// single simulation thread; marker callbacks re-enter it from inside Tick.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"

	"github.com/Pruszko/ResponsiveReticle/internal/dispersion"
	"github.com/Pruszko/ResponsiveReticle/internal/governor"
	"github.com/Pruszko/ResponsiveReticle/internal/rotator"
	"github.com/Pruszko/ResponsiveReticle/internal/session"
	"github.com/Pruszko/ResponsiveReticle/internal/smoothing"
	"github.com/Pruszko/ResponsiveReticle/internal/trace"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/Pruszko/ResponsiveReticle/pkg/host"
)

// Config groups the tunables of every pipeline stage.
type Config struct {
	Governor           governor.Config
	ServerYawTolerance float64 // radians; zero selects the default
	Smoothing          smoothing.Config
}

// DefaultConfig returns the engine defaults for every stage.
func DefaultConfig() Config {
	return Config{
		Governor:  governor.DefaultConfig(),
		Smoothing: smoothing.DefaultConfig(),
	}
}

// Dependencies holds optional collaborators. Nil fields get defaults.
type Dependencies struct {
	Recorder trace.Recorder
	Logger   *slog.Logger
	Meter    metric.Meter
}

// entityState is what the controller owns per entity between ticks.
type entityState struct {
	orientation core.OrientationState
	lastTime    time.Duration
	target      core.Vec3
	hasTarget   bool
}

// Controller is the control loop instance for one host session.
type Controller struct {
	host       host.Host
	governor   *governor.Governor
	integrator rotator.Integrator
	sampler    *dispersion.Sampler
	adapter    *smoothing.Adapter
	session    *session.Context
	recorder   trace.Recorder
	log        *slog.Logger
	metrics    *instruments

	entities map[core.EntityID]*entityState

	skipLog  rate.Sometimes
	traceLog rate.Sometimes
}

// New wires a Controller against h.
func New(h host.Host, cfg Config, deps Dependencies) (*Controller, error) {
	gov, err := governor.New(cfg.Governor)
	if err != nil {
		return nil, fmt.Errorf("governor: %w", err)
	}
	sampler, err := dispersion.New(h, gov.Baseline().TickInterval)
	if err != nil {
		return nil, fmt.Errorf("dispersion: %w", err)
	}
	adapter, err := smoothing.New(cfg.Smoothing, gov.Baseline())
	if err != nil {
		return nil, fmt.Errorf("smoothing: %w", err)
	}

	if deps.Recorder == nil {
		deps.Recorder = trace.Noop{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Meter == nil {
		deps.Meter = meter()
	}
	ins, err := newInstruments(deps.Meter)
	if err != nil {
		return nil, err
	}

	return &Controller{
		host:       h,
		governor:   gov,
		integrator: rotator.New(cfg.ServerYawTolerance),
		sampler:    sampler,
		adapter:    adapter,
		session:    session.NewContext(baselineDecision(gov)),
		recorder:   deps.Recorder,
		log:        deps.Logger,
		metrics:    ins,
		entities:   make(map[core.EntityID]*entityState),
		skipLog:    rate.Sometimes{Interval: time.Second},
		traceLog:   rate.Sometimes{Interval: 10 * time.Second},
	}, nil
}

func baselineDecision(g *governor.Governor) core.Decision {
	return core.Decision{Mode: core.ModeBaseline, TimingParameters: g.Baseline()}
}

// Session exposes the session context, e.g. for log attributes.
func (c *Controller) Session() *session.Context {
	return c.session
}

// Orientation returns the last integrated orientation of id.
func (c *Controller) Orientation(id core.EntityID) (core.OrientationState, bool) {
	st, ok := c.entities[id]
	if !ok {
		return core.OrientationState{}, false
	}
	return st.orientation, true
}

// LogAttrs describes the live session for logging.ContextHandler.
func (c *Controller) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{slog.String("mode", c.session.Decision().Mode.String())}
	if id, ok := c.session.Entity(); ok {
		attrs = append(attrs, slog.Int("entity", int(id)))
	}
	return attrs
}

// Tick runs one pipeline step for entity and returns the delay after which
// the host should invoke it again. The host may wait longer.
func (c *Controller) Tick(entity core.EntityID) time.Duration {
	now := c.host.Now()

	desc, hasVehicle := c.host.ControlledVehicle()
	resolved := hasVehicle && desc.ID == entity

	tc := c.governor.ContextFrom(c.host)
	tc.EntityResolved = tc.EntityResolved && resolved
	d := c.governor.Decide(tc)
	if !resolved {
		// A tick for another entity leaves the session alone. Losing the
		// controlled vehicle altogether drops the session to baseline.
		if !hasVehicle {
			c.logModeChange(c.session.SetDecision(d), d)
		}
		return d.TickInterval
	}
	c.beginTick(entity, d)

	st, ok := c.entities[entity]
	if !ok {
		// nothing to integrate against yet
		st = &entityState{lastTime: now}
		if yaw, ok := c.host.ServerYaw(entity); ok {
			st.orientation.TurretYaw = yaw
		}
		c.entities[entity] = st
		c.finish(entity, now, 0, d, st.orientation, core.OutcomeSkipped, core.AccuracyCone{}, false)
		return d.TickInterval
	}

	elapsed := now - st.lastTime
	if elapsed <= d.MinProcessableDelta {
		c.skipLog.Do(func() {
			c.log.Debug("Tick skipped, elapsed below minimum delta",
				"entity", entity, "elapsed", elapsed, "minDelta", d.MinProcessableDelta)
		})
		c.finish(entity, now, elapsed, d, st.orientation, core.OutcomeSkipped, core.AccuracyCone{}, false)
		return d.TickInterval
	}

	if target, ok := c.host.Target(entity); ok {
		st.target, st.hasTarget = target, true
	}

	in := rotator.Input{
		State:    st.orientation,
		Elapsed:  elapsed,
		Params:   d.TimingParameters,
		Geometry: c.host.Geometry(entity),
		Locked:   c.host.AimLocked(entity) && !c.host.TimeWarpActive(),

		Limits:        desc.Limits,
		MaxYawSpeed:   desc.MaxYawSpeed,
		MaxPitchSpeed: desc.PitchSpeed(),
	}
	if st.hasTarget {
		target := st.target
		in.Target = &target
	}
	if !c.host.IsPlaying() {
		in.ServerYaw, in.HasServerYaw = c.host.ServerYaw(entity)
	}

	next, outcome := c.integrator.Integrate(in)
	st.orientation = next
	st.lastTime = now

	cone, cached := c.sampler.Sample(entity, next.RotationSpeed, next.TurretYaw, now)
	c.metrics.samples.Add(context.Background(), 1,
		metric.WithAttributes(attribute.Bool("cached", cached)))

	c.host.SetOrientation(entity, next.TurretYaw, next.GunPitch, d.TickInterval)
	c.host.AimUpdated(entity, next, cone, d.TickInterval)

	c.finish(entity, now, elapsed, d, next, outcome, cone, cached)
	return d.TickInterval
}

func (c *Controller) beginTick(entity core.EntityID, d core.Decision) {
	ch := c.session.BeginTick(entity, d)
	if ch.EntitySwitched {
		c.adapter.Reset()
		c.log.Info("Controlled entity switched, marker cache cleared", "entity", entity)
	}
	c.logModeChange(ch, d)
}

func (c *Controller) logModeChange(ch session.Change, d core.Decision) {
	if !ch.ModeChanged {
		return
	}
	c.log.Info("Tick mode changed",
		"from", ch.Previous.Mode.String(),
		"to", d.Mode.String(),
		"tickInterval", d.TickInterval,
		"minDelta", d.MinProcessableDelta)
}

func (c *Controller) finish(entity core.EntityID, now, elapsed time.Duration, d core.Decision,
	state core.OrientationState, outcome core.TickOutcome, cone core.AccuracyCone, cached bool) {
	c.metrics.ticks.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("mode", d.Mode.String()),
		attribute.String("outcome", outcome.String()),
	))

	err := c.recorder.RecordTick(&core.TickSample{
		Time:          now,
		Entity:        entity,
		Mode:          d.Mode,
		TickInterval:  d.TickInterval,
		Elapsed:       elapsed,
		Outcome:       outcome,
		TurretYaw:     state.TurretYaw,
		GunPitch:      state.GunPitch,
		RotationSpeed: state.RotationSpeed,
		Cone:          cone,
		ConeCached:    cached,
	})
	if err != nil {
		c.traceLog.Do(func() {
			c.log.Warn("Failed to record tick sample", "error", err)
		})
	}
}

// UpdateMarkerPosition forwards a marker position update, adjusting the relax
// time of client visual requests while accelerated.
func (c *Controller) UpdateMarkerPosition(pos core.Matrix, relax time.Duration) {
	d := c.session.Decision()
	if c.adapter.Adjusts(relax, d) {
		c.metrics.relaxAdjusts.Add(context.Background(), 1)
	}
	c.host.SetMarkerPosition(pos, c.adapter.AdjustRelaxTime(relax, d))
}

// UpdateMarkerSize forwards a marker size update unless the size gate drops
// it. It reports whether the update was forwarded.
func (c *Controller) UpdateMarkerSize(marker core.MarkerID, size core.MarkerSize, relax time.Duration, inert bool) bool {
	relax, ok := c.adapter.SizeUpdate(marker, c.host.Now(), relax, c.session.Decision())
	if !ok {
		c.metrics.sizeDropped.Add(context.Background(), 1)
		return false
	}
	c.host.SetMarkerSize(marker, size, relax, inert)
	return true
}

// EntityDestroyed drops everything held for id. If id was the controlled
// entity the marker cache goes with it.
func (c *Controller) EntityDestroyed(id core.EntityID) {
	delete(c.entities, id)
	c.sampler.Forget(id)
	if cur, ok := c.session.Entity(); ok && cur == id {
		c.adapter.Reset()
		c.session.Reset(baselineDecision(c.governor))
	}
	c.log.Debug("Entity state released", "entity", id)
}

// ResetSession tears down all per-entity and per-marker state.
func (c *Controller) ResetSession() {
	c.entities = make(map[core.EntityID]*entityState)
	c.sampler.Reset()
	c.adapter.Reset()
	c.session.Reset(baselineDecision(c.governor))
	c.log.Info("Session reset")
}
