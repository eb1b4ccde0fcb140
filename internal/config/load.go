package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LIVEDIFF_"

// Load reads path on top of the defaults, then applies environment
// overrides. A missing file is not an error. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := Parse(path, data, &cfg); err != nil {
				return Config{}, err
			}
		case os.IsNotExist(err):
			// File doesn't exist, keep defaults
		default:
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML data into cfg. Unknown keys are rejected.
func Parse(source string, data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		perr := &ParseError{Path: source, Message: err.Error(), Err: err}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return perr
	}
	return nil
}

// Encode writes cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	return toml.Marshal(cfg)
}

// envSetter parses one environment value into the config.
type envSetter func(c *Config, val string) error

// envMapping maps variable names (without prefix) to setters.
func envMapping() map[string]envSetter {
	return map[string]envSetter{
		"DIFF_CONTEXT_LINES":  intSetter(func(c *Config) *int { return &c.Diff.ContextLines }),
		"DIFF_ALGORITHM":      stringSetter(func(c *Config) *string { return &c.Diff.Algorithm }),
		"DIFF_MAX_LINES":      intSetter(func(c *Config) *int { return &c.Diff.MaxLines }),
		"DIFF_MAX_MEMORY_MB":  intSetter(func(c *Config) *int { return &c.Diff.MaxMemoryMB }),
		"DIFF_CHECK_INTERVAL": intSetter(func(c *Config) *int { return &c.Diff.CheckInterval }),
		"DIFF_TIMEOUT": func(c *Config, val string) error {
			d, err := time.ParseDuration(val)
			if err != nil {
				return err
			}
			c.Diff.Timeout = Duration(d)
			return nil
		},
		"WORKER_WORKERS":    intSetter(func(c *Config) *int { return &c.Worker.Workers }),
		"WORKER_QUEUE_SIZE": intSetter(func(c *Config) *int { return &c.Worker.QueueSize }),
		"LOG_LEVEL":         stringSetter(func(c *Config) *string { return &c.Log.Level }),
		"LOG_FORMAT":        stringSetter(func(c *Config) *string { return &c.Log.Format }),
		"LOG_FILE":          stringSetter(func(c *Config) *string { return &c.Log.File }),
		"LOG_DEVELOPMENT":   boolSetter(func(c *Config) *bool { return &c.Log.Development }),
		"METRICS_ENABLED":   boolSetter(func(c *Config) *bool { return &c.Metrics.Enabled }),
		"METRICS_NAMESPACE": stringSetter(func(c *Config) *string { return &c.Metrics.Namespace }),
		"METRICS_ADDR":      stringSetter(func(c *Config) *string { return &c.Metrics.Addr }),
		"SESSION_PATH":      stringSetter(func(c *Config) *string { return &c.Session.Path }),
	}
}

// ApplyEnv overrides settings from LIVEDIFF_* variables found by lookup.
// Empty values are treated as set.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envMapping() {
		val, ok := lookup(EnvPrefix + name)
		if !ok {
			continue
		}
		if err := set(c, val); err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalidEnv, EnvPrefix, name, val, err)
		}
	}
	return nil
}

func intSetter(field func(*Config) *int) envSetter {
	return func(c *Config, val string) error {
		n, err := strconv.Atoi(val)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolSetter(field func(*Config) *bool) envSetter {
	return func(c *Config, val string) error {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func stringSetter(field func(*Config) *string) envSetter {
	return func(c *Config, val string) error {
		*field(c) = val
		return nil
	}
}
