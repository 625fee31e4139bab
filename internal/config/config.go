// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load(ctx) layers an optional YAML file and environment variables on top.
// - Validation errors wrap ErrInvalidConfig; loader errors wrap ErrLoadConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CurriculumPath points at a JSON or YAML song list. Empty uses the
	// curriculum compiled into the binary.
	CurriculumPath string `koanf:"curriculum_path"`

	// MaxBodyBytes caps the size of POST bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	LLM     LLMConfig     `koanf:"llm"`
	Tracing TracingConfig `koanf:"tracing"`
	Metrics MetricsConfig `koanf:"metrics"`
}

// LLMConfig configures the text-generation collaborator.
type LLMConfig struct {
	BaseURL    string        `koanf:"base_url"`
	APIKey     string        `koanf:"api_key"`
	APIVersion string        `koanf:"api_version"`
	Model      string        `koanf:"model"`
	MaxTokens  int           `koanf:"max_tokens"`
	Timeout    time.Duration `koanf:"timeout"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	// Exporter is one of none, stdout, otlp.
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	Insecure    bool    `koanf:"insecure"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

// MetricsConfig shapes the Prometheus collectors.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`

	// Buckets overrides the HTTP latency histogram buckets (seconds).
	Buckets []float64 `koanf:"buckets"`

	// ConstLabels are attached to every metric, e.g. {"env": "prod"}.
	ConstLabels map[string]string `koanf:"const_labels"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:     "info",
		LogFormat:    "text",
		Addr:         ":8080",
		MaxBodyBytes: 1 << 20,
		LLM: LLMConfig{
			BaseURL:    "https://api.anthropic.com",
			APIVersion: "2023-06-01",
			Model:      "claude-sonnet-4-20250514",
			MaxTokens:  4096,
			Timeout:    120 * time.Second,
		},
		Tracing: TracingConfig{
			Exporter:    "none",
			SampleRatio: 1,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "practiceplan",
			Subsystem: "api",
		},
	}
}
