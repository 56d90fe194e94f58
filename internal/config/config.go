package config

import (
	"flag"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/flowmesh/objectstore/internal/logger"
	"github.com/flowmesh/objectstore/internal/tracing"
	"github.com/flowmesh/objectstore/objectstore"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "OBJSTORE_"

// Config represents the application configuration
type Config struct {
	// Store configuration
	Store StoreConfig `envPrefix:"STORE_"`

	// Sweeper configuration (serve mode)
	Sweeper SweeperConfig `envPrefix:"SWEEPER_"`

	// Logging configuration
	Logging LoggingConfig `envPrefix:"LOG_"`

	// Metrics configuration
	Metrics MetricsConfig `envPrefix:"METRICS_"`

	// Tracing configuration
	Tracing TracingConfig `envPrefix:"TRACING_"`
}

// StoreConfig holds object store configuration
type StoreConfig struct {
	// Database file path, or ":memory:"
	Location string `env:"LOCATION" envDefault:"./data/objstore.db"`

	// Remove stale records when the store is opened
	SweepOnOpen bool `env:"SWEEP_ON_OPEN" envDefault:"true"`

	// How long a write waits on a locked database
	BusyTimeout time.Duration `env:"BUSY_TIMEOUT" envDefault:"5s"`

	// Value codec: "json", "gob"
	Codec string `env:"CODEC" envDefault:"json"`

	// Expiry applied when none is given
	DefaultExpiry string `env:"DEFAULT_EXPIRY" envDefault:"90 seconds"`
}

// SweeperConfig holds periodic sweep configuration
type SweeperConfig struct {
	// Run DeleteOld periodically in serve mode
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Interval between sweeps
	Interval time.Duration `env:"INTERVAL" envDefault:"10s"`
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	// Log level: "debug", "info", "warn", "error"
	Level string `env:"LEVEL" envDefault:"info"`

	// Log format: "json", "text"
	Format string `env:"FORMAT" envDefault:"text"`

	// Log file path, "stdout" or "stderr"
	Output string `env:"OUTPUT" envDefault:"stderr"`

	// Enable log rotation
	Rotation bool `env:"ROTATION" envDefault:"true"`

	// Max log file size in MB
	MaxSize int `env:"MAX_SIZE" envDefault:"100"`

	// Number of backup files to keep
	MaxBackups int `env:"MAX_BACKUPS" envDefault:"7"`

	// Max age in days
	MaxAge int `env:"MAX_AGE" envDefault:"30"`
}

// MetricsConfig holds metrics-related configuration
type MetricsConfig struct {
	// Enable the Prometheus endpoint in serve mode
	Enabled bool `env:"ENABLED" envDefault:"true"`

	// Metrics server address
	Addr string `env:"ADDR" envDefault:":9090"`

	// Metrics path
	Path string `env:"PATH" envDefault:"/metrics"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool    `env:"ENABLED" envDefault:"false"`
	Endpoint     string  `env:"ENDPOINT" envDefault:""`
	ExporterType string  `env:"EXPORTER" envDefault:"grpc"`
	Insecure     bool    `env:"INSECURE" envDefault:"false"`
	SampleRatio  float64 `env:"SAMPLE_RATIO" envDefault:"1.0"`
}

// Load loads configuration from the process environment, then applies
// command line flags from args. It returns the remaining positional args.
func Load(args []string) (*Config, []string, error) {
	return load(args, env.Options{Prefix: EnvPrefix})
}

func load(args []string, opts env.Options) (*Config, []string, error) {
	cfg := &Config{}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	fs := flag.NewFlagSet("objstore", flag.ContinueOnError)
	fs.StringVar(&cfg.Store.Location, "db", cfg.Store.Location, "Database file path or :memory:")
	fs.BoolVar(&cfg.Store.SweepOnOpen, "sweep-on-open", cfg.Store.SweepOnOpen, "Remove stale records on open")
	fs.StringVar(&cfg.Store.Codec, "codec", cfg.Store.Codec, "Value codec (json, gob)")
	fs.StringVar(&cfg.Store.DefaultExpiry, "default-expiry", cfg.Store.DefaultExpiry, "Expiry used when none is given")
	fs.DurationVar(&cfg.Sweeper.Interval, "sweep-interval", cfg.Sweeper.Interval, "Interval between sweeps in serve mode")
	fs.StringVar(&cfg.Metrics.Addr, "metrics-addr", cfg.Metrics.Addr, "Metrics server address")
	fs.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.Logging.Format, "log-format", cfg.Logging.Format, "Log format (json, text)")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	if cfg.Store.Location != objectstore.MemoryLocation && !strings.HasPrefix(cfg.Store.Location, "file:") {
		cfg.Store.Location = filepath.Clean(cfg.Store.Location)
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Store.Location == "" {
		return fmt.Errorf("store location cannot be empty")
	}

	if _, err := objectstore.CodecByName(strings.ToLower(c.Store.Codec)); err != nil {
		return err
	}

	if _, err := objectstore.In(c.Store.DefaultExpiry).Resolve(time.Now()); err != nil {
		return fmt.Errorf("invalid default expiry: %w", err)
	}

	if c.Sweeper.Enabled && c.Sweeper.Interval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	validLogFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics address cannot be empty")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return fmt.Errorf("tracing endpoint is required when tracing is enabled")
	}

	return nil
}

// LoggerConfig converts the logging section for logger.Init
func (c *Config) LoggerConfig() *logger.Config {
	return &logger.Config{
		Level:      c.Logging.Level,
		Format:     c.Logging.Format,
		Output:     c.Logging.Output,
		Rotation:   c.Logging.Rotation,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}

// TracingConfig converts the tracing section for tracing.NewProvider
func (c *Config) TracingConfig(version string) tracing.TracingConfig {
	tc := tracing.DefaultTracingConfig()
	tc.Enabled = c.Tracing.Enabled
	tc.Endpoint = c.Tracing.Endpoint
	tc.ExporterType = c.Tracing.ExporterType
	tc.Insecure = c.Tracing.Insecure
	tc.SampleRatio = c.Tracing.SampleRatio
	tc.ServiceVersion = version
	return tc
}
