// Package config loads the YAML configuration an embedphp host uses to
// construct a Handler and, optionally, the workerpool demo around it.
// Trimmed from sadewadee-maboo/internal/config/config.go down to what an
// Embed needs; the rest of the teacher's Config (websocket, static,
// metrics, watch, HTTP/2/3, ACME, PHP-version auto-selection) describes a
// server façade, not the handler core — see DESIGN.md for the drop
// rationale on each.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for one embedphp-backed host.
type Config struct {
	App     AppConfig  `yaml:"app"`
	PHP     PHPConfig  `yaml:"php"`
	Pool    PoolConfig `yaml:"pool"`
	Logging LogConfig  `yaml:"logging"`
}

// AppConfig describes the Handler's docroot and argv.
type AppConfig struct {
	Root string   `yaml:"root"`
	Argv []string `yaml:"argv"`
}

// PHPConfig describes interpreter-level overrides.
type PHPConfig struct {
	ThrowRequestErrors bool              `yaml:"throw_request_errors"`
	IniOverrides       map[string]string `yaml:"ini"`
}

// PoolConfig sizes the internal/workerpool demo.
type PoolConfig struct {
	MinWorkers  int      `yaml:"min_workers"`
	MaxWorkers  int      `yaml:"max_workers"`
	MaxJobs     int      `yaml:"max_jobs"`
	IdleTimeout Duration `yaml:"idle_timeout"`
	// MaxRSSBytes, when nonzero, recycles a worker once its OS thread's
	// peak resident set size (getrusage RUSAGE_THREAD) exceeds it. Zero
	// disables memory-based recycling.
	MaxRSSBytes int64 `yaml:"max_rss_bytes"`
}

// LogConfig configures the slog handler, the way maboo's
// cmd/maboo/main.go setupLogger does.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Duration is a time.Duration that supports YAML string unmarshaling,
// reused verbatim from the teacher's internal/config/config.go.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads config from a YAML file, applying defaults for missing
// values.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.App.Root == "" {
		return fmt.Errorf("app.root is required")
	}
	if c.Pool.MinWorkers < 1 {
		return fmt.Errorf("pool.min_workers must be >= 1, got %d", c.Pool.MinWorkers)
	}
	if c.Pool.MaxWorkers < c.Pool.MinWorkers {
		return fmt.Errorf("pool.max_workers (%d) must be >= pool.min_workers (%d)", c.Pool.MaxWorkers, c.Pool.MinWorkers)
	}
	if c.Pool.MaxJobs < 0 {
		return fmt.Errorf("pool.max_jobs must be >= 0, got %d", c.Pool.MaxJobs)
	}
	return nil
}
