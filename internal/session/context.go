package session

import (
	"sync"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Context holds the per-session state shared by one tick's pipeline: the
// controlled entity and the timing decision for the current tick.
// The decision is written once at the start of a tick and read by the rest of it.
type Context struct {
	mu       sync.RWMutex
	entity   core.EntityID
	hasEnt   bool
	decision core.Decision
	ticks    uint64
}

// NewContext creates a Context starting in the given baseline decision
func NewContext(initial core.Decision) *Context {
	return &Context{decision: initial}
}

// Decision returns the decision of the current tick
func (c *Context) Decision() core.Decision {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decision
}

// Entity returns the controlled entity, if one has been seen
func (c *Context) Entity() (core.EntityID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entity, c.hasEnt
}

// Ticks returns the number of ticks begun in this session
func (c *Context) Ticks() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticks
}

// Change describes what BeginTick observed.
type Change struct {
	EntitySwitched bool
	ModeChanged    bool
	Previous       core.Decision
}

// BeginTick records the decision and entity for a new tick and reports what changed.
func (c *Context) BeginTick(entity core.EntityID, d core.Decision) Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := Change{
		EntitySwitched: c.hasEnt && c.entity != entity,
		ModeChanged:    c.decision != d,
		Previous:       c.decision,
	}
	c.entity = entity
	c.hasEnt = true
	c.decision = d
	c.ticks++
	return ch
}

// SetDecision records d without touching the controlled entity or the tick
// count. It is used for ticks that do not belong to the controlled entity.
func (c *Context) SetDecision(d core.Decision) Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := Change{ModeChanged: c.decision != d, Previous: c.decision}
	c.decision = d
	return ch
}

// Reset forgets the controlled entity and returns to the given decision
func (c *Context) Reset(initial core.Decision) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entity = 0
	c.hasEnt = false
	c.decision = initial
	c.ticks = 0
}
