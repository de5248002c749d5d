package config

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration to support string based YAML decoding.
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses duration values expressed as Go-style strings or numbers interpreted as seconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		raw := strings.TrimSpace(value.Value)
		if raw == "" {
			d.Duration = 0
			return nil
		}
		parsed, err := time.ParseDuration(raw)
		if err == nil {
			d.Duration = parsed
			return nil
		}
		secs, convErr := time.ParseDuration(fmt.Sprintf("%ss", raw))
		if convErr == nil {
			d.Duration = secs
			return nil
		}
		return fmt.Errorf("invalid duration value %q: %w", raw, err)
	default:
		return fmt.Errorf("unsupported duration node kind: %v", value.Kind)
	}
}

// MarshalYAML renders the duration as a string to keep config edits human-friendly.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds application level configuration for the transaction registry
// core, aggregated from file and environment variables. It deliberately
// carries no HTTP, webhook, or payment-provider sections — those are external
// collaborators per SPEC_FULL.md §1.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Postgres PostgresConfig `yaml:"postgres"`
	Registry RegistryConfig `yaml:"registry"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Environment string `yaml:"environment"`
}

// PostgresConfig holds the store gateway's connection parameters.
type PostgresConfig struct {
	URL  string             `yaml:"url"`
	Pool PostgresPoolConfig `yaml:"pool"`
}

// PostgresPoolConfig mirrors the teacher's connection-pool sizing knobs.
type PostgresPoolConfig struct {
	MaxOpenConns    int      `yaml:"max_open_conns"`
	MaxIdleConns    int      `yaml:"max_idle_conns"`
	ConnMaxLifetime Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime Duration `yaml:"conn_max_idle_time"`
}

// RegistryConfig holds the Core's own timeouts and behavioral knobs (§5, §6).
type RegistryConfig struct {
	// StatementTimeout bounds a single Store Gateway query (default 15s per §5).
	StatementTimeout Duration `yaml:"statement_timeout"`
	// LockTimeout bounds time spent waiting on a row lock (default unlimited per §5).
	LockTimeout Duration `yaml:"lock_timeout"`
	// RetryEnabled toggles the Store Gateway's retry envelope (default off per §4.1).
	RetryEnabled bool `yaml:"retry_enabled"`
	// RetryMaxAttempts bounds the linear-backoff retry loop.
	RetryMaxAttempts int `yaml:"retry_max_attempts"`
	// RetryBackoff is the fixed linear-backoff step between attempts.
	RetryBackoff Duration `yaml:"retry_backoff"`
	// DateWindowTimezone is the IANA zone used to expand dateStart/dateEnd filters (§4.5.5).
	DateWindowTimezone string `yaml:"date_window_timezone"`
}
