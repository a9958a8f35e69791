package control

import (
	"fmt"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/dispatcher"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// MarkerPosition is the payload of the marker.position hook.
type MarkerPosition struct {
	Position core.Matrix
	Relax    time.Duration
}

// MarkerSizeUpdate is the payload of the marker.size hook.
type MarkerSizeUpdate struct {
	Marker core.MarkerID
	Size   core.MarkerSize
	Relax  time.Duration
	Inert  bool
}

// RegisterHooks registers the controller entry points with the dispatcher.
func (c *Controller) RegisterHooks(d *dispatcher.Dispatcher) {
	// Per-tick and per-render hooks are hot; no logging middleware
	d.Register(dispatcher.HookTick, c.handleTick)
	d.Register(dispatcher.HookMarkerPosition, c.handleMarkerPosition)
	d.Register(dispatcher.HookMarkerSize, c.handleMarkerSize)

	// Lifecycle
	d.Register(dispatcher.HookEntityDestroyed, c.handleEntityDestroyed, dispatcher.Logged())
	d.Register(dispatcher.HookSessionReset, c.handleSessionReset, dispatcher.Logged())
}

func (c *Controller) handleTick(e dispatcher.Event) (any, error) {
	id, ok := e.Payload.(core.EntityID)
	if !ok {
		return nil, fmt.Errorf("tick: unexpected payload %T", e.Payload)
	}
	return c.Tick(id), nil
}

func (c *Controller) handleMarkerPosition(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(MarkerPosition)
	if !ok {
		return nil, fmt.Errorf("marker position: unexpected payload %T", e.Payload)
	}
	c.UpdateMarkerPosition(p.Position, p.Relax)
	return nil, nil
}

func (c *Controller) handleMarkerSize(e dispatcher.Event) (any, error) {
	p, ok := e.Payload.(MarkerSizeUpdate)
	if !ok {
		return nil, fmt.Errorf("marker size: unexpected payload %T", e.Payload)
	}
	return c.UpdateMarkerSize(p.Marker, p.Size, p.Relax, p.Inert), nil
}

func (c *Controller) handleEntityDestroyed(e dispatcher.Event) (any, error) {
	id, ok := e.Payload.(core.EntityID)
	if !ok {
		return nil, fmt.Errorf("entity destroyed: unexpected payload %T", e.Payload)
	}
	c.EntityDestroyed(id)
	return nil, nil
}

func (c *Controller) handleSessionReset(dispatcher.Event) (any, error) {
	c.ResetSession()
	return nil, nil
}
