// Package config loads the ngdefc configuration from defaults, an optional
// .ngdefc.yaml file and NGDEFC_ environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidFormat       = errors.New("invalid log format")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidWorkers      = errors.New("workers must be positive")
)

// Default configuration values.
const (
	DefaultConfigName   = ".ngdefc"
	DefaultOutputFormat = OutputFormatJS
	DefaultLogLevel     = "info"
	DefaultLogFormat    = LogFormatText
	DefaultWorkers      = 4

	envPrefix = "NGDEFC"
)

// Output formats.
const (
	OutputFormatJS  = "js"
	OutputFormatDTS = "dts"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration for the ngdefc CLI.
type Config struct {
	Compiler  CompilerConfig  `mapstructure:"compiler"`
	Output    OutputConfig    `mapstructure:"output"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Workers   int             `mapstructure:"workers"`
}

// CompilerConfig drives the definition compiler.
type CompilerConfig struct {
	// ClosureCompiler names pooled constants the way Closure expects
	ClosureCompiler bool `mapstructure:"closure_compiler"`

	// EmitClassStatements assigns each definition to its class
	// (`Name.ngDirectiveDef = ...`). Otherwise it is declared as a
	// `Name_ngDirectiveDef` variable.
	EmitClassStatements bool `mapstructure:"emit_class_statements"`

	// WrapInClosure is the default for components that leave
	// directive/pipe wrapping unspecified
	WrapInClosure bool `mapstructure:"wrap_in_closure"`
}

// OutputConfig selects what the CLI prints.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Summary bool   `mapstructure:"summary"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds tracing and metrics configuration.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`

	// MetricsFile receives a Prometheus text dump of the run's metrics
	MetricsFile string `mapstructure:"metrics_file"`
}

// Load reads configuration from configPath, or from .ngdefc.yaml in the
// working directory when configPath is empty. A missing default file is
// not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(err, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("compiler.closure_compiler", false)
	v.SetDefault("compiler.emit_class_statements", true)
	v.SetDefault("compiler.wrap_in_closure", false)

	v.SetDefault("output.format", DefaultOutputFormat)
	v.SetDefault("output.summary", false)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.format", DefaultLogFormat)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.metrics_file", "")

	v.SetDefault("workers", DefaultWorkers)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}

	switch c.Output.Format {
	case OutputFormatJS, OutputFormatDTS:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidOutputFormat, c.Output.Format)
	}

	switch c.Log.Format {
	case LogFormatText, LogFormatJSON:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Log.Format)
	}

	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses the configured level name.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
	}
	return level, nil
}
