package gormtrace

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(t *testing.T, cfg Config) *Recorder {
	db, err := OpenSqlite(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	r := New(db, cfg, nil)
	require.NoError(t, r.Init())
	return r
}

func TestRecorder_FlushWritesRows(t *testing.T) {
	r := newTestRecorder(t, Config{RunID: "run-1", FlushInterval: time.Hour, BatchSize: 2})
	defer r.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordTick(&core.TickSample{
			Time:          time.Duration(i) * 3 * time.Millisecond,
			Entity:        7,
			Mode:          core.ModeAccelerated,
			Outcome:       core.OutcomeIntegrated,
			RotationSpeed: float64(i),
			Cone:          core.AccuracyCone{Current: 0.01, Ideal: 0.005},
		}))
	}
	require.NoError(t, r.Flush())

	var count int64
	require.NoError(t, r.DB().Model(&TickRecord{}).Where("run_id = ?", "run-1").Count(&count).Error)
	assert.Equal(t, int64(5), count)

	var last TickRecord
	require.NoError(t, r.DB().Order("time_ns DESC").First(&last).Error)
	assert.Equal(t, int64(12*time.Millisecond), last.TimeNs)
	assert.Equal(t, "accelerated", last.Mode)
	assert.Equal(t, "integrated", last.Outcome)
	assert.Equal(t, int32(7), last.Entity)
	assert.Equal(t, 4.0, last.RotationSpeed)
	assert.Equal(t, 0.005, last.ConeIdeal)
}

func TestRecorder_FlushEmptyIsNoop(t *testing.T) {
	r := newTestRecorder(t, Config{FlushInterval: time.Hour})
	defer r.Close()

	require.NoError(t, r.Flush())
}

func TestRecorder_CloseFlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")
	db, err := OpenSqlite(path)
	require.NoError(t, err)
	r := New(db, Config{RunID: "close", FlushInterval: time.Hour}, nil)
	require.NoError(t, r.Init())

	require.NoError(t, r.RecordTick(&core.TickSample{Outcome: core.OutcomeSkipped}))
	require.NoError(t, r.Close())

	reopened, err := OpenSqlite(path)
	require.NoError(t, err)
	var count int64
	require.NoError(t, reopened.Model(&TickRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	sqlDB, err := reopened.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}

func TestRecorder_BackgroundFlush(t *testing.T) {
	r := newTestRecorder(t, Config{FlushInterval: 10 * time.Millisecond})
	defer r.Close()

	require.NoError(t, r.RecordTick(&core.TickSample{}))

	assert.Eventually(t, func() bool {
		var count int64
		r.DB().Model(&TickRecord{}).Count(&count)
		return count == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecorder_CloseWithoutInit(t *testing.T) {
	db, err := OpenSqlite(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	r := New(db, Config{}, nil)

	closed := make(chan error, 1)
	go func() { closed <- r.Close() }()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked on a flush loop that never started")
	}
}

func TestRecorder_BufferFullWarningIsThrottled(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	db, err := OpenSqlite(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	r := New(db, Config{FlushInterval: time.Hour, BufferSize: 2}, log)
	require.NoError(t, r.Init())
	defer r.Close()

	for i := 0; i < 50; i++ {
		require.NoError(t, r.RecordTick(&core.TickSample{}))
	}

	assert.Equal(t, 1, strings.Count(buf.String(), "trace buffer full"))
	assert.Equal(t, uint64(48), r.pending.Dropped())
}

func TestOpen_EmptyTargets(t *testing.T) {
	_, err := OpenSqlite("")
	require.Error(t, err)

	_, err = OpenPostgres("")
	require.Error(t, err)
}
