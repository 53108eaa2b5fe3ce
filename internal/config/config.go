// Package config defines the santa configuration and how it is layered from
// defaults, a YAML file, a .env file and SANTA_* environment variables.
package config

import (
	"time"

	"github.com/okian/santa/internal/domain/model"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Sender is the From address of every invitation. Required for live runs.
	Sender string `koanf:"sender"`

	// StoreDir is where roster artifacts are written.
	StoreDir string `koanf:"store_dir"`

	// Suffix is appended to the artifact date, e.g. "_office".
	Suffix string `koanf:"suffix"`

	// DryRun prints invitations instead of sending them.
	DryRun bool `koanf:"dry_run"`

	// Workers is the number of concurrent sends.
	Workers int `koanf:"workers"`

	// MaxAttempts caps derangement reshuffles.
	MaxAttempts int `koanf:"max_attempts"`

	// SendTimeoutMS bounds each send, in milliseconds.
	SendTimeoutMS int `koanf:"send_timeout_ms"`

	TokenFile       string `koanf:"token_file"`
	CredentialsFile string `koanf:"credentials_file"`

	// GmailScopes overrides the OAuth scopes requested at consent.
	GmailScopes []string `koanf:"gmail_scopes"`

	// MetricsFile, when set, receives a Prometheus textfile at exit.
	MetricsFile string `koanf:"metrics_file"`

	// Metric naming; empty keeps santa_run_*.
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsSubsystem string            `koanf:"metrics_subsystem"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBucketsMS replaces the latency histogram buckets.
	MetricsLatencyBucketsMS []float64 `koanf:"metrics_latency_buckets_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		StoreDir:        ".",
		Workers:         1,
		MaxAttempts:     10_000,
		SendTimeoutMS:   30_000,
		TokenFile:       "token.json",
		CredentialsFile: "credentials.json",
	}
}

// Mode returns the delivery mode selected by DryRun.
func (c *Config) Mode() model.Mode {
	if c.DryRun {
		return model.ModeDryRun
	}
	return model.ModeLive
}

// SendTimeout returns SendTimeoutMS as a duration.
func (c *Config) SendTimeout() time.Duration {
	return time.Duration(c.SendTimeoutMS) * time.Millisecond
}
