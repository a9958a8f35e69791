package control

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Pruszko/ResponsiveReticle/internal/control"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type instruments struct {
	ticks        metric.Int64Counter
	samples      metric.Int64Counter
	sizeDropped  metric.Int64Counter
	relaxAdjusts metric.Int64Counter
}

func newInstruments(m metric.Meter) (*instruments, error) {
	var (
		in  instruments
		err error
	)

	in.ticks, err = m.Int64Counter(
		"reticle.ticks",
		metric.WithDescription("Ticks handled, by mode and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick counter: %w", err)
	}

	in.samples, err = m.Int64Counter(
		"reticle.dispersion.samples",
		metric.WithDescription("Dispersion queries, by cache hit"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dispersion counter: %w", err)
	}

	in.sizeDropped, err = m.Int64Counter(
		"reticle.marker.size.dropped",
		metric.WithDescription("Marker size updates suppressed by the size gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating size dropped counter: %w", err)
	}

	in.relaxAdjusts, err = m.Int64Counter(
		"reticle.marker.relax.adjusted",
		metric.WithDescription("Marker position updates whose relax time was adjusted"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating relax counter: %w", err)
	}

	return &in, nil
}
