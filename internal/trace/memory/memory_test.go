package memory

import (
	"testing"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_KeepsSamplesInOrder(t *testing.T) {
	r := New(0)
	require.NoError(t, r.Init())
	defer r.Close()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.RecordTick(&core.TickSample{Time: time.Duration(i) * time.Millisecond}))
	}

	samples := r.Samples()
	require.Len(t, samples, 3)
	assert.Equal(t, 2*time.Millisecond, samples[2].Time)
}

func TestRecorder_CapacityEvictsOldest(t *testing.T) {
	r := New(2)

	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordTick(&core.TickSample{Entity: core.EntityID(i)}))
	}

	samples := r.Samples()
	require.Len(t, samples, 2)
	assert.Equal(t, core.EntityID(3), samples[0].Entity)
	assert.Equal(t, uint64(3), r.Dropped())
}

func TestRecorder_StoresCopy(t *testing.T) {
	r := New(0)
	s := &core.TickSample{TurretYaw: 1}
	require.NoError(t, r.RecordTick(s))

	s.TurretYaw = 2
	assert.Equal(t, 1.0, r.Samples()[0].TurretYaw)
}
