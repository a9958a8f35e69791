package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Pruszko/ResponsiveReticle/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
