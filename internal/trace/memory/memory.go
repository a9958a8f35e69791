// Package memory implements an in-process trace recorder.
package memory

import (
	"github.com/Pruszko/ResponsiveReticle/internal/queue"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Recorder keeps the most recent samples in memory.
type Recorder struct {
	samples *queue.Queue[core.TickSample]
}

// New creates a recorder holding at most capacity samples (zero is unbounded).
func New(capacity int) *Recorder {
	return &Recorder{samples: queue.New[core.TickSample](capacity)}
}

func (r *Recorder) Init() error { return nil }
func (r *Recorder) Close() error { return nil }

// RecordTick stores a copy of s.
func (r *Recorder) RecordTick(s *core.TickSample) error {
	r.samples.Push(*s)
	return nil
}

// Samples returns the retained samples, oldest first.
func (r *Recorder) Samples() []core.TickSample {
	return r.samples.Snapshot()
}

// Dropped returns how many samples were evicted for capacity.
func (r *Recorder) Dropped() uint64 {
	return r.samples.Dropped()
}
