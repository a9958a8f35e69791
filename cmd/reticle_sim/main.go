// reticle_sim runs the control core against a simulated host and prints how
// the tick pipeline behaved. It is the tuning bench for the relax policy and
// timing constants of a target engine.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/config"
	"github.com/Pruszko/ResponsiveReticle/internal/control"
	"github.com/Pruszko/ResponsiveReticle/internal/dispatcher"
	"github.com/Pruszko/ResponsiveReticle/internal/geo"
	"github.com/Pruszko/ResponsiveReticle/internal/logging"
	intOtel "github.com/Pruszko/ResponsiveReticle/internal/otel"
	"github.com/Pruszko/ResponsiveReticle/internal/simhost"
	"github.com/Pruszko/ResponsiveReticle/internal/trace"
	"github.com/Pruszko/ResponsiveReticle/internal/trace/memory"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName        = "reticle_sim"
	logMaxSizeMB   = 10
	logMaxBackups  = 3
	summaryBacklog = 1 << 20
)

var (
	CurrentVersion = "0.0.1"
	BuildDate      = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "reticle_sim:", err)
		os.Exit(1)
	}
}

func parseFlags() string {
	configDir := pflag.StringP("config-dir", "c", ".", "directory holding "+config.ConfigName)
	pflag.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	pflag.String("logs-dir", "", "directory for log files; empty logs to stdout")
	pflag.DurationP("duration", "d", 0, "simulated time to run")
	pflag.Duration("jitter", 0, "maximum extra scheduler delay per tick")
	pflag.Uint64("seed", 0, "random seed for the synthetic aim input")
	pflag.Bool("replay", false, "simulate replay playback")
	pflag.Bool("auto-aim", false, "simulate auto-aim (rotator not in client mode)")
	pflag.String("trace", "", "trace backend: none, memory, sqlite, postgres")
	pflag.String("trace-path", "", "sqlite trace file")
	pflag.Bool("version", false, "print version and exit")
	pflag.Parse()
	return *configDir
}

// bindFlags maps command line flags onto config keys. Only flags given on
// the command line override the config file.
func bindFlags() {
	for key, flag := range map[string]string{
		"logLevel":     "log-level",
		"logsDir":      "logs-dir",
		"sim.duration": "duration",
		"sim.jitter":   "jitter",
		"sim.seed":     "seed",
		"sim.replay":   "replay",
		"sim.autoAim":  "auto-aim",
		"trace.type":   "trace",
		"trace.path":   "trace-path",
	} {
		f := pflag.Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		_ = viper.BindPFlag(key, f)
	}
}

func run() error {
	sessionStart := time.Now()
	configDir := parseFlags()

	if err := config.Load(configDir); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
	}
	bindFlags()

	if v, _ := pflag.CommandLine.GetBool("version"); v {
		fmt.Printf("%s %s (built %s)\n", appName, CurrentVersion, BuildDate)
		return nil
	}

	settings, err := config.Get()
	if err != nil {
		return err
	}

	var logFile io.WriteCloser
	if settings.LogsDir != "" {
		logFile = logging.OpenLogFile(logging.LogFilePath(settings.LogsDir, appName, sessionStart), logMaxSizeMB, logMaxBackups)
		defer logFile.Close()
	}

	otelCfg := intOtel.Config{
		Enabled:        settings.OTel.Enabled,
		ServiceName:    settings.OTel.ServiceName,
		BatchTimeout:   settings.OTel.BatchTimeout,
		MetricInterval: settings.OTel.MetricInterval,
		Endpoint:       settings.OTel.Endpoint,
		Insecure:       settings.OTel.Insecure,
	}
	if settings.OTel.Enabled {
		otelFile := logging.OpenLogFile(logging.LogFilePath(settings.LogsDir, appName+".otel", sessionStart), logMaxSizeMB, logMaxBackups)
		defer otelFile.Close()
		otelCfg.LogWriter = otelFile
		otelCfg.MetricWriter = otelFile
	}
	provider, err := intOtel.New(otelCfg)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "otel shutdown:", err)
		}
	}()

	var logWriter io.Writer
	if logFile != nil {
		logWriter = logFile
	}
	logManager := logging.NewSlogManager()
	logManager.Setup(logWriter, settings.LogLevel, provider.LoggerProvider())

	var ctrl *control.Controller
	logManager.AttachContext(func() []slog.Attr {
		if ctrl == nil {
			return nil
		}
		return ctrl.LogAttrs()
	})
	logger := logManager.Logger()
	logger.Info("Starting simulation",
		"version", CurrentVersion,
		"duration", settings.Sim.Duration,
		"trace", settings.Trace.Type)

	runID := fmt.Sprintf("sim-%s", sessionStart.UTC().Format("20060102T150405"))
	backend, err := trace.New(settings.Trace, runID, logger)
	if err != nil {
		return err
	}
	samples := memory.New(summaryBacklog)
	recorder := trace.Multi{samples, backend}
	if err := recorder.Init(); err != nil {
		return fmt.Errorf("trace init: %w", err)
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Error("Failed to close trace", "error", err)
		}
	}()

	host := simhost.New(simhost.Config{
		Vehicle: core.VehicleDescriptor{
			ID:            1,
			Tags:          settings.Sim.VehicleTags,
			MaxYawSpeed:   geo.Deg(settings.Sim.YawSpeedDeg),
			MaxPitchSpeed: geo.Deg(settings.Sim.PitchSpeedDeg),
		},
		Control:   core.ControlState{ClientMode: !settings.Sim.AutoAim},
		Replay:    settings.Sim.Replay,
		Jitter:    settings.Sim.Jitter,
		ServerLag: settings.Sim.ServerLag,
		Seed:      uint64(settings.Sim.Seed),
	})

	ctrl, err = control.New(host, control.Config{
		Governor:           settings.Governor.Governor(),
		ServerYawTolerance: settings.Rotator.ServerYawTolerance(),
		Smoothing:          settings.Smoothing.Smoothing(),
	}, control.Dependencies{
		Recorder: recorder,
		Logger:   logger,
		Meter:    provider.Meter("github.com/Pruszko/ResponsiveReticle/internal/control"),
	})
	if err != nil {
		return err
	}

	d, err := dispatcher.NewWithMeter(logger, provider.Meter("github.com/Pruszko/ResponsiveReticle/internal/dispatcher"))
	if err != nil {
		return err
	}
	ctrl.RegisterHooks(d)
	host.Attach(d)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := host.Run(ctx, settings.Sim.Duration)
	if err != nil {
		return err
	}

	printSummary(os.Stdout, stats, trace.Summarize(samples.Samples()))
	logger.Info("Simulation finished", "ticks", stats.Ticks, "elapsed", time.Since(sessionStart))

	return provider.Flush(context.Background())
}

func printSummary(w io.Writer, stats simhost.Stats, sum trace.Summary) {
	fmt.Fprintf(w, "simulated        %s\n", stats.SimulatedTime)
	fmt.Fprintf(w, "ticks            %d (accelerated %d)\n", sum.Ticks, sum.Accelerated)
	fmt.Fprintf(w, "  integrated     %d\n", sum.Integrated)
	fmt.Fprintf(w, "  idle           %d\n", sum.Idle)
	fmt.Fprintf(w, "  skipped        %d\n", sum.Skipped)
	fmt.Fprintf(w, "tick gap         min %s max %s\n", stats.MinGap, stats.MaxGap)
	fmt.Fprintf(w, "elapsed          mean %s max %s\n", sum.MeanElapsed, sum.MaxElapsed)
	fmt.Fprintf(w, "max speed        %.1f deg/s\n", geo.ToDeg(sum.MaxSpeed))
	fmt.Fprintf(w, "cone cache hits  %d\n", sum.ConeCacheHits)
	fmt.Fprintf(w, "marker position  %d updates\n", stats.PositionUpdates)
	fmt.Fprintf(w, "marker size      %d of %d forwarded\n", stats.SizeForwarded, stats.SizeRequests)
}
