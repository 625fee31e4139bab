package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variable names.
const (
	EnvPrefix     = "PRACTICEPLAN_"
	EnvConfigFile = EnvPrefix + "CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PRACTICEPLAN_CONFIG is set
//  3. env (prefix PRACTICEPLAN_, "__" separates nested keys)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// PRACTICEPLAN_LLM__MAX_TOKENS -> llm.max_tokens
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}
	// The config file path itself is not a config key.
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the invariants the service relies on at startup.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive", ErrInvalidConfig)
	case strings.TrimSpace(c.LLM.BaseURL) == "":
		return fmt.Errorf("%w: llm.base_url must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.LLM.Model) == "":
		return fmt.Errorf("%w: llm.model must not be empty", ErrInvalidConfig)
	case c.LLM.MaxTokens <= 0:
		return fmt.Errorf("%w: llm.max_tokens must be positive", ErrInvalidConfig)
	case c.LLM.Timeout <= 0:
		return fmt.Errorf("%w: llm.timeout must be positive", ErrInvalidConfig)
	}

	for i := 1; i < len(c.Metrics.Buckets); i++ {
		if c.Metrics.Buckets[i] <= c.Metrics.Buckets[i-1] {
			return fmt.Errorf("%w: metrics.buckets must be strictly increasing", ErrInvalidConfig)
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Tracing.Exporter)) {
	case "", "none", "stdout", "otlp":
	default:
		return fmt.Errorf("%w: unknown tracing.exporter %q", ErrInvalidConfig, c.Tracing.Exporter)
	}
	return nil
}
