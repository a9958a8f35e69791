package trace

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/trace/memory"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks
var (
	_ Recorder = Noop{}
	_ Recorder = (*memory.Recorder)(nil)
	_ Recorder = Multi{}
)

type failingRecorder struct {
	calls int
}

func (f *failingRecorder) Init() error { return nil }
func (f *failingRecorder) Close() error { return errors.New("close failed") }
func (f *failingRecorder) RecordTick(*core.TickSample) error {
	f.calls++
	return errors.New("write failed")
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	mem := memory.New(0)
	bad := &failingRecorder{}
	m := Multi{bad, mem}

	require.NoError(t, m.Init())
	err := m.RecordTick(&core.TickSample{Entity: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write failed")
	assert.Equal(t, 1, bad.calls)
	require.Len(t, mem.Samples(), 1, "a failing recorder must not starve the others")

	assert.ErrorContains(t, m.Close(), "close failed")
}

func TestSummarize(t *testing.T) {
	samples := []core.TickSample{
		{Mode: core.ModeAccelerated, Outcome: core.OutcomeIntegrated, Elapsed: 4 * time.Millisecond, RotationSpeed: 0.5},
		{Mode: core.ModeAccelerated, Outcome: core.OutcomeSkipped, Elapsed: 500 * time.Microsecond, RotationSpeed: 9},
		{Mode: core.ModeAccelerated, Outcome: core.OutcomeIntegrated, Elapsed: 6 * time.Millisecond, RotationSpeed: 1.5, ConeCached: true},
		{Mode: core.ModeBaseline, Outcome: core.OutcomeIdle, Elapsed: 2 * time.Millisecond},
	}

	sum := Summarize(samples)
	assert.Equal(t, 4, sum.Ticks)
	assert.Equal(t, 3, sum.Accelerated)
	assert.Equal(t, 2, sum.Integrated)
	assert.Equal(t, 1, sum.Idle)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.ConeCacheHits)
	assert.Equal(t, 4*time.Millisecond, sum.MeanElapsed)
	assert.Equal(t, 6*time.Millisecond, sum.MaxElapsed)
	assert.Equal(t, 1.5, sum.MaxSpeed)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestNew_Types(t *testing.T) {
	r, err := New(Config{Type: "none"}, "run", nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, r)

	r, err = New(Config{Type: "memory", BufferSize: 10}, "run", nil)
	require.NoError(t, err)
	assert.IsType(t, &memory.Recorder{}, r)

	r, err = New(Config{Type: "sqlite", Path: filepath.Join(t.TempDir(), "trace.db")}, "run", nil)
	require.NoError(t, err)
	require.NoError(t, r.Init())
	require.NoError(t, r.Close())

	_, err = New(Config{Type: "influx"}, "run", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown trace type")
}
