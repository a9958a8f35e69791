// Package gormtrace stores tick samples in a SQL database through GORM.
// SQLite (pure Go driver) and Postgres share the same model and flush loop.
package gormtrace

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/queue"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/glebarez/sqlite"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	defaultFlushInterval = time.Second
	defaultBatchSize     = 500
	defaultBufferSize    = 100000
)

// TickRecord is the table row for one core.TickSample.
type TickRecord struct {
	ID            uint   `gorm:"primarykey"`
	RunID         string `gorm:"index;size:64"`
	TimeNs        int64  `gorm:"index"`
	Entity        int32
	Mode          string `gorm:"size:16"`
	TickInterval  int64
	Elapsed       int64
	Outcome       string `gorm:"size:16"`
	TurretYaw     float64
	GunPitch      float64
	RotationSpeed float64
	ConeCurrent   float64
	ConeIdeal     float64
	ConeCached    bool
}

func (TickRecord) TableName() string {
	return "tick_samples"
}

func newTickRecord(runID string, s *core.TickSample) TickRecord {
	return TickRecord{
		RunID:         runID,
		TimeNs:        int64(s.Time),
		Entity:        int32(s.Entity),
		Mode:          s.Mode.String(),
		TickInterval:  int64(s.TickInterval),
		Elapsed:       int64(s.Elapsed),
		Outcome:       s.Outcome.String(),
		TurretYaw:     s.TurretYaw,
		GunPitch:      s.GunPitch,
		RotationSpeed: s.RotationSpeed,
		ConeCurrent:   s.Cone.Current,
		ConeIdeal:     s.Cone.Ideal,
		ConeCached:    s.ConeCached,
	}
}

// Config holds the flush settings.
type Config struct {
	RunID         string
	FlushInterval time.Duration
	BatchSize     int
	BufferSize    int
}

// Recorder buffers samples in memory and writes them in batches from a
// background goroutine, so the tick never waits on the database.
type Recorder struct {
	db       *gorm.DB
	cfg      Config
	log      *slog.Logger
	pending  *queue.Queue[TickRecord]
	stopChan chan struct{}
	done     chan struct{}
	started  bool
	fullLog  rate.Sometimes
}

// New creates a recorder on an open database.
func New(db *gorm.DB, cfg Config, log *slog.Logger) *Recorder {
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = defaultFlushInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Recorder{
		db:       db,
		cfg:      cfg,
		log:      log,
		pending:  queue.New[TickRecord](cfg.BufferSize),
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
		fullLog:  rate.Sometimes{Interval: time.Second},
	}
}

// OpenSqlite opens (or creates) a SQLite database file.
func OpenSqlite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        defaultBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	// one writer at a time avoids SQLITE_BUSY between the flush loop and readers
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenPostgres connects to Postgres with the given DSN.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is empty")
	}
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        defaultBatchSize,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
}

// DB returns the underlying database handle.
func (r *Recorder) DB() *gorm.DB {
	return r.db
}

// Init migrates the schema and starts the flush loop.
func (r *Recorder) Init() error {
	if err := r.db.AutoMigrate(&TickRecord{}); err != nil {
		return fmt.Errorf("migrating tick_samples: %w", err)
	}
	r.started = true
	go r.flushLoop()
	return nil
}

// RecordTick queues s for the next flush.
func (r *Recorder) RecordTick(s *core.TickSample) error {
	if n := r.pending.Push(newTickRecord(r.cfg.RunID, s)); n > 0 {
		r.fullLog.Do(func() {
			r.log.Warn("trace buffer full, dropped samples", "dropped", r.pending.Dropped())
		})
	}
	return nil
}

// Flush writes every queued sample.
func (r *Recorder) Flush() error {
	records := r.pending.GetAndEmpty()
	if len(records) == 0 {
		return nil
	}
	if err := r.db.CreateInBatches(records, r.cfg.BatchSize).Error; err != nil {
		return fmt.Errorf("writing %d tick samples: %w", len(records), err)
	}
	return nil
}

// Close stops the flush loop, writes what is left and closes the database.
// It does not wait for a loop that Init never started.
func (r *Recorder) Close() error {
	if r.started {
		close(r.stopChan)
		<-r.done
	}

	flushErr := r.Flush()
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("closing trace database: %w", err)
	}
	return flushErr
}

func (r *Recorder) flushLoop() {
	defer close(r.done)
	ticker := time.NewTicker(r.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			start := time.Now()
			if err := r.Flush(); err != nil {
				r.log.Error("trace flush failed", "error", err)
			} else {
				r.log.Debug("trace flushed", "duration", time.Since(start))
			}
		}
	}
}
