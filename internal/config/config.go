package config

import (
	"fmt"
	"time"

	"github.com/Pruszko/ResponsiveReticle/internal/geo"
	"github.com/Pruszko/ResponsiveReticle/internal/governor"
	"github.com/Pruszko/ResponsiveReticle/internal/smoothing"
	"github.com/Pruszko/ResponsiveReticle/internal/trace"
	"github.com/Pruszko/ResponsiveReticle/pkg/core"
	"github.com/spf13/viper"
)

// ConfigName is the file looked up in the config directory.
const ConfigName = "responsive_reticle.cfg.json"

// TimingConfig is one tick parameter set as written in the config file.
type TimingConfig struct {
	TickInterval        time.Duration `json:"tickInterval" mapstructure:"tickInterval"`
	MinProcessableDelta time.Duration `json:"minProcessableDelta" mapstructure:"minProcessableDelta"`
}

func (t TimingConfig) params() core.TimingParameters {
	return core.TimingParameters{TickInterval: t.TickInterval, MinProcessableDelta: t.MinProcessableDelta}
}

// GovernorConfig holds rate governor settings.
type GovernorConfig struct {
	Baseline     TimingConfig `json:"baseline" mapstructure:"baseline"`
	Accelerated  TimingConfig `json:"accelerated" mapstructure:"accelerated"`
	ExcludedTags []string     `json:"excludedTags" mapstructure:"excludedTags"`
}

// Governor converts the settings into a governor.Config.
func (g GovernorConfig) Governor() governor.Config {
	return governor.Config{
		Baseline:     g.Baseline.params(),
		Accelerated:  g.Accelerated.params(),
		ExcludedTags: g.ExcludedTags,
	}
}

// RotatorConfig holds rotation integrator settings.
type RotatorConfig struct {
	ServerYawToleranceDeg float64 `json:"serverYawToleranceDeg" mapstructure:"serverYawToleranceDeg"`
}

// ServerYawTolerance returns the tolerance in radians.
func (r RotatorConfig) ServerYawTolerance() float64 {
	return geo.Deg(r.ServerYawToleranceDeg)
}

// SmoothingConfig holds marker smoothing settings.
type SmoothingConfig struct {
	RelaxMultiplier    float64       `json:"relaxMultiplier" mapstructure:"relaxMultiplier"`
	ZeroRelaxAtOrBelow time.Duration `json:"zeroRelaxAtOrBelow" mapstructure:"zeroRelaxAtOrBelow"`
	MarkerCacheSize    int           `json:"markerCacheSize" mapstructure:"markerCacheSize"`
}

// Smoothing converts the settings into a smoothing.Config.
func (s SmoothingConfig) Smoothing() smoothing.Config {
	return smoothing.Config{
		RelaxMultiplier:    s.RelaxMultiplier,
		ZeroRelaxAtOrBelow: s.ZeroRelaxAtOrBelow,
		MarkerCacheSize:    s.MarkerCacheSize,
	}
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled        bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName    string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout   time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	MetricInterval time.Duration `json:"metricInterval" mapstructure:"metricInterval"`
	Endpoint       string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure       bool          `json:"insecure" mapstructure:"insecure"`
}

// SimConfig holds simulated host settings used by reticle_sim.
type SimConfig struct {
	Duration      time.Duration `json:"duration" mapstructure:"duration"`
	Jitter        time.Duration `json:"jitter" mapstructure:"jitter"`
	ServerLag     time.Duration `json:"serverLag" mapstructure:"serverLag"`
	Seed          int64         `json:"seed" mapstructure:"seed"`
	Replay        bool          `json:"replay" mapstructure:"replay"`
	AutoAim       bool          `json:"autoAim" mapstructure:"autoAim"`
	VehicleTags   []string      `json:"vehicleTags" mapstructure:"vehicleTags"`
	YawSpeedDeg   float64       `json:"maxYawSpeedDeg" mapstructure:"maxYawSpeedDeg"`
	PitchSpeedDeg float64       `json:"maxPitchSpeedDeg" mapstructure:"maxPitchSpeedDeg"`
}

// Settings is the full typed configuration.
type Settings struct {
	LogLevel  string          `json:"logLevel" mapstructure:"logLevel"`
	LogsDir   string          `json:"logsDir" mapstructure:"logsDir"`
	Governor  GovernorConfig  `json:"governor" mapstructure:"governor"`
	Rotator   RotatorConfig   `json:"rotator" mapstructure:"rotator"`
	Smoothing SmoothingConfig `json:"smoothing" mapstructure:"smoothing"`
	OTel      OTelConfig      `json:"otel" mapstructure:"otel"`
	Trace     trace.Config    `json:"trace" mapstructure:"trace"`
	Sim       SimConfig       `json:"sim" mapstructure:"sim"`
}

// SetDefaults registers the default value of every key. Load calls it; it is
// exported so callers can fall back to defaults when the file is missing.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./reticlelogs")

	viper.SetDefault("governor.baseline.tickInterval", governor.DefaultBaseline.TickInterval.String())
	viper.SetDefault("governor.baseline.minProcessableDelta", governor.DefaultBaseline.MinProcessableDelta.String())
	viper.SetDefault("governor.accelerated.tickInterval", governor.DefaultAccelerated.TickInterval.String())
	viper.SetDefault("governor.accelerated.minProcessableDelta", governor.DefaultAccelerated.MinProcessableDelta.String())
	viper.SetDefault("governor.excludedTags", governor.DefaultExcludedTags)

	viper.SetDefault("rotator.serverYawToleranceDeg", 1.0)

	viper.SetDefault("smoothing.relaxMultiplier", smoothing.DefaultRelaxMultiplier)
	viper.SetDefault("smoothing.zeroRelaxAtOrBelow", smoothing.DefaultZeroRelaxAtOrBelow.String())
	viper.SetDefault("smoothing.markerCacheSize", 64)

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "responsive-reticle")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.metricInterval", "10s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("trace.type", "none")
	viper.SetDefault("trace.path", "./reticle_trace.db")
	viper.SetDefault("trace.dsn", "")
	viper.SetDefault("trace.flushInterval", "1s")
	viper.SetDefault("trace.batchSize", 500)
	viper.SetDefault("trace.bufferSize", 4096)

	viper.SetDefault("sim.duration", "10s")
	viper.SetDefault("sim.jitter", "500us")
	viper.SetDefault("sim.serverLag", "100ms")
	viper.SetDefault("sim.seed", 1)
	viper.SetDefault("sim.replay", false)
	viper.SetDefault("sim.autoAim", false)
	viper.SetDefault("sim.vehicleTags", []string{"mediumTank"})
	viper.SetDefault("sim.maxYawSpeedDeg", 40.0)
	viper.SetDefault("sim.maxPitchSpeedDeg", 30.0)
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// Get unmarshals the current configuration into Settings.
func Get() (Settings, error) {
	var s Settings
	if err := viper.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	return s, nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetOTelConfig returns the OTel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		BatchTimeout:   viper.GetDuration("otel.batchTimeout"),
		MetricInterval: viper.GetDuration("otel.metricInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}

// GetTraceConfig returns the trace journal section.
func GetTraceConfig() trace.Config {
	return trace.Config{
		Type:          viper.GetString("trace.type"),
		Path:          viper.GetString("trace.path"),
		DSN:           viper.GetString("trace.dsn"),
		FlushInterval: viper.GetDuration("trace.flushInterval"),
		BatchSize:     viper.GetInt("trace.batchSize"),
		BufferSize:    viper.GetInt("trace.bufferSize"),
	}
}
