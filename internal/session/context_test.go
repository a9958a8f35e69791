package session

import (
	"testing"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/stretchr/testify/assert"
)

var (
	base = core.Decision{Mode: core.ModeBaseline, TimingParameters: core.TimingParameters{TickInterval: 100 * time.Millisecond, MinProcessableDelta: 20 * time.Millisecond}}
	fast = core.Decision{Mode: core.ModeAccelerated, TimingParameters: core.TimingParameters{TickInterval: 3 * time.Millisecond, MinProcessableDelta: time.Millisecond}}
)

func TestContext_Defaults(t *testing.T) {
	ctx := NewContext(base)

	assert.Equal(t, base, ctx.Decision())
	_, ok := ctx.Entity()
	assert.False(t, ok)
	assert.Zero(t, ctx.Ticks())
}

func TestContext_BeginTick(t *testing.T) {
	ctx := NewContext(base)

	ch := ctx.BeginTick(5, fast)
	assert.False(t, ch.EntitySwitched, "first entity is not a switch")
	assert.True(t, ch.ModeChanged)
	assert.Equal(t, base, ch.Previous)

	ch = ctx.BeginTick(5, fast)
	assert.False(t, ch.EntitySwitched)
	assert.False(t, ch.ModeChanged)

	ch = ctx.BeginTick(6, base)
	assert.True(t, ch.EntitySwitched)
	assert.True(t, ch.ModeChanged)

	id, ok := ctx.Entity()
	assert.True(t, ok)
	assert.Equal(t, core.EntityID(6), id)
	assert.Equal(t, uint64(3), ctx.Ticks())
}

func TestContext_SetDecisionKeepsEntity(t *testing.T) {
	ctx := NewContext(base)
	ctx.BeginTick(5, fast)

	ch := ctx.SetDecision(base)
	assert.True(t, ch.ModeChanged)
	assert.False(t, ch.EntitySwitched)
	assert.Equal(t, fast, ch.Previous)
	assert.Equal(t, base, ctx.Decision())

	id, ok := ctx.Entity()
	assert.True(t, ok)
	assert.Equal(t, core.EntityID(5), id)
	assert.Equal(t, uint64(1), ctx.Ticks())

	ch = ctx.BeginTick(5, fast)
	assert.False(t, ch.EntitySwitched)
}

func TestContext_Reset(t *testing.T) {
	ctx := NewContext(base)
	ctx.BeginTick(5, fast)

	ctx.Reset(base)

	assert.Equal(t, base, ctx.Decision())
	_, ok := ctx.Entity()
	assert.False(t, ok)

	ch := ctx.BeginTick(9, base)
	assert.False(t, ch.EntitySwitched)
}
