package trace

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/trace/gormtrace"
	"github.com/Pruszko/ResponsiveReticle/internal/trace/memory"
)

// Config selects and configures a trace backend.
type Config struct {
	Type          string        `json:"type" mapstructure:"type"`
	Path          string        `json:"path" mapstructure:"path"`
	DSN           string        `json:"dsn" mapstructure:"dsn"`
	FlushInterval time.Duration `json:"flushInterval" mapstructure:"flushInterval"`
	BatchSize     int           `json:"batchSize" mapstructure:"batchSize"`
	BufferSize    int           `json:"bufferSize" mapstructure:"bufferSize"`
}

// New builds the backend named by cfg.Type: none, memory, sqlite or postgres.
// The returned recorder has not been initialised.
func New(cfg Config, runID string, log *slog.Logger) (Recorder, error) {
	gcfg := gormtrace.Config{
		RunID:         runID,
		FlushInterval: cfg.FlushInterval,
		BatchSize:     cfg.BatchSize,
		BufferSize:    cfg.BufferSize,
	}

	switch cfg.Type {
	case "", "none":
		return Noop{}, nil
	case "memory":
		return memory.New(cfg.BufferSize), nil
	case "sqlite":
		db, err := gormtrace.OpenSqlite(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite trace at %q: %w", cfg.Path, err)
		}
		return gormtrace.New(db, gcfg, log), nil
	case "postgres":
		db, err := gormtrace.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres trace: %w", err)
		}
		return gormtrace.New(db, gcfg, log), nil
	default:
		return nil, fmt.Errorf("unknown trace type: %s", cfg.Type)
	}
}
