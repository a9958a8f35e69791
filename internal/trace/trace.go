// Package trace records per-tick diagnostic samples used to tune the relax
// policy and timing constants for a target engine. It is a diagnostic
// journal, not control state: nothing reads it back during a session.
package trace

import (
	"errors"
	"time"

	"github.com/Pruszko/ResponsiveReticle/pkg/core"
)

// Recorder is the interface every trace backend satisfies.
type Recorder interface {
	Init() error
	Close() error

	RecordTick(s *core.TickSample) error
}

// Noop discards every sample. It is used when tracing is disabled.
type Noop struct{}

func (Noop) Init() error { return nil }
func (Noop) Close() error { return nil }
func (Noop) RecordTick(*core.TickSample) error { return nil }

// Multi fans samples out to several recorders. Every recorder sees every
// call; errors are joined.
type Multi []Recorder

func (m Multi) Init() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Init())
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

func (m Multi) RecordTick(s *core.TickSample) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordTick(s))
	}
	return errors.Join(errs...)
}

// Summary aggregates a run of samples.
type Summary struct {
	Ticks         int
	Accelerated   int
	Integrated    int
	Idle          int
	Skipped       int
	ConeCacheHits int
	MeanElapsed   time.Duration
	MaxElapsed    time.Duration
	MaxSpeed      float64
}

// Summarize aggregates samples. Skipped ticks do not count toward elapsed
// statistics because their time is carried into the next tick.
func Summarize(samples []core.TickSample) Summary {
	var sum Summary
	var total time.Duration
	processed := 0
	for _, s := range samples {
		sum.Ticks++
		if s.Mode == core.ModeAccelerated {
			sum.Accelerated++
		}
		switch s.Outcome {
		case core.OutcomeIntegrated:
			sum.Integrated++
		case core.OutcomeIdle:
			sum.Idle++
		case core.OutcomeSkipped:
			sum.Skipped++
			continue
		}
		if s.ConeCached {
			sum.ConeCacheHits++
		}
		processed++
		total += s.Elapsed
		sum.MaxElapsed = max(sum.MaxElapsed, s.Elapsed)
		sum.MaxSpeed = max(sum.MaxSpeed, s.RotationSpeed)
	}
	if processed > 0 {
		sum.MeanElapsed = total / time.Duration(processed)
	}
	return sum
}
