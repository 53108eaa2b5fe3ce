package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix      = "SANTA_"
	EnvConfigPath  = "SANTA_CONFIG"
	DefaultEnvFile = ".env"
)

// metricNamePart matches a Prometheus namespace, subsystem or label name.
var metricNamePart = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// LoadOption tunes Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file    string
	envFile string
}

// WithFile loads path as YAML, taking precedence over SANTA_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// WithEnvFile reads variables from path instead of ./.env. A missing file is ignored.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.envFile = path
		}
	}
}

// Load builds a Config by layering, lowest precedence first:
//  1. defaults (New)
//  2. YAML file from WithFile or SANTA_CONFIG
//  3. SANTA_* variables, where a .env file fills in any not already set
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := loadOptions{envFile: DefaultEnvFile}
	for _, opt := range opts {
		opt(&o)
	}

	if err := godotenv.Load(o.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: env file %s: %w", ErrLoadConfig, o.envFile, err)
	}

	k := koanf.New(".")

	path := o.file
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SANTA_SEND_TIMEOUT_MS -> send_timeout_ms; underscores stay to match the flat keys
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make a run fail later.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if strings.TrimSpace(c.StoreDir) == "" {
		return fmt.Errorf("%w: store_dir must not be empty", ErrInvalidConfig)
	}
	if strings.ContainsAny(c.Suffix, `/\`) {
		return fmt.Errorf("%w: suffix must not contain a path separator", ErrInvalidConfig)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be at least 1, got %d", ErrInvalidConfig, c.MaxAttempts)
	}
	if c.SendTimeoutMS < 0 {
		return fmt.Errorf("%w: send_timeout_ms must not be negative", ErrInvalidConfig)
	}
	return c.validateMetrics()
}

func (c *Config) validateMetrics() error {
	for key, v := range map[string]string{"metrics_namespace": c.MetricsNamespace, "metrics_subsystem": c.MetricsSubsystem} {
		if v != "" && !metricNamePart.MatchString(v) {
			return fmt.Errorf("%w: %s %q is not a valid metric name part", ErrInvalidConfig, key, v)
		}
	}
	for name := range c.MetricsLabels {
		if !metricNamePart.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	for i := 1; i < len(c.MetricsLatencyBucketsMS); i++ {
		if c.MetricsLatencyBucketsMS[i] <= c.MetricsLatencyBucketsMS[i-1] {
			return fmt.Errorf("%w: metrics_latency_buckets_ms must be strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}

// RequireSender checks the settings a live run needs.
func (c *Config) RequireSender() error {
	if strings.TrimSpace(c.Sender) == "" {
		return fmt.Errorf("%w: sender must be set for live runs", ErrInvalidConfig)
	}
	return nil
}
