// Package config loads livediff settings from TOML files and environment
// variables.
//
// Precedence, lowest to highest: built-in defaults, the TOML file, then
// LIVEDIFF_* environment variables. Command-line flags are applied by the
// caller on top of the result.
package config

import (
	"fmt"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/dshills/livediff/internal/diff"
)

// Duration is a time.Duration that reads and writes as "2s" in TOML.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the complete livediff configuration.
type Config struct {
	Diff    DiffConfig    `toml:"diff"`
	Worker  WorkerConfig  `toml:"worker"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	Session SessionConfig `toml:"session"`
}

// DiffConfig controls diff computation.
type DiffConfig struct {
	ContextLines  int      `toml:"context_lines"`
	Algorithm     string   `toml:"algorithm"`
	MaxLines      int      `toml:"max_lines"`
	MaxMemoryMB   int      `toml:"max_memory_mb"`
	Timeout       Duration `toml:"timeout"`
	CheckInterval int      `toml:"check_interval"`
}

// WorkerConfig sizes the diff worker pool.
type WorkerConfig struct {
	Workers   int `toml:"workers"`
	QueueSize int `toml:"queue_size"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "console" or "json".
	Format string `toml:"format"`

	// Development enables zap's development mode.
	Development bool `toml:"development"`

	// File, if set, receives log output instead of stderr.
	File string `toml:"file"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled"`
	Namespace string `toml:"namespace"`

	// Addr, if set, serves /metrics on this address.
	Addr string `toml:"addr"`
}

// SessionConfig configures pairing persistence.
type SessionConfig struct {
	// Path is the YAML session file. Empty disables persistence.
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Diff: DiffConfig{
			ContextLines:  diff.DefaultContextLines,
			Algorithm:     string(diff.AlgorithmMyers),
			MaxLines:      diff.DefaultMaxDiffLines,
			MaxMemoryMB:   diff.DefaultMaxDiffMemoryMB,
			Timeout:       Duration(diff.DefaultTimeout),
			CheckInterval: diff.DefaultCheckInterval,
		},
		Worker: WorkerConfig{
			Workers:   2,
			QueueSize: 64,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Namespace: "livediff",
		},
	}
}

// Validate checks every section and returns the first problem found.
func (c Config) Validate() error {
	d := c.Diff
	if d.ContextLines < 0 {
		return fmt.Errorf("%w: diff.context_lines must be >= 0, got %d", ErrValidationFailed, d.ContextLines)
	}
	switch diff.Algorithm(d.Algorithm) {
	case diff.AlgorithmMyers, diff.AlgorithmDMP:
	default:
		return fmt.Errorf("%w: diff.algorithm must be myers or dmp, got %q", ErrValidationFailed, d.Algorithm)
	}
	if d.Timeout < 0 {
		return fmt.Errorf("%w: diff.timeout must not be negative", ErrValidationFailed)
	}
	if d.CheckInterval < 0 {
		return fmt.Errorf("%w: diff.check_interval must be >= 0", ErrValidationFailed)
	}

	if c.Worker.Workers <= 0 {
		return fmt.Errorf("%w: worker.workers must be > 0, got %d", ErrValidationFailed, c.Worker.Workers)
	}
	if c.Worker.QueueSize <= 0 {
		return fmt.Errorf("%w: worker.queue_size must be > 0, got %d", ErrValidationFailed, c.Worker.QueueSize)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrValidationFailed, err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrValidationFailed, c.Log.Format)
	}

	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("%w: metrics.namespace is required when metrics are enabled", ErrValidationFailed)
	}
	return nil
}

// Options converts the diff section into diff options.
func (d DiffConfig) Options() diff.Options {
	return diff.Options{
		ContextLines:  d.ContextLines,
		Algorithm:     diff.Algorithm(d.Algorithm),
		MaxLines:      d.MaxLines,
		MaxMemoryMB:   d.MaxMemoryMB,
		Timeout:       time.Duration(d.Timeout),
		CheckInterval: d.CheckInterval,
	}
}
