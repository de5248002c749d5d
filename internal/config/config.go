package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file and applies environment
// overrides, following the teacher's default -> file -> env -> finalize
// pipeline. A local .env file (if present) is loaded first via godotenv so
// CEDROS-style deployments can keep secrets out of the YAML file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		if err := cfg.parseFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "json",
			Environment: "production",
		},
		Postgres: PostgresConfig{
			Pool: PostgresPoolConfig{
				MaxOpenConns:    20,
				MaxIdleConns:    5,
				ConnMaxLifetime: Duration{Duration: 30 * time.Minute},
				ConnMaxIdleTime: Duration{Duration: 5 * time.Minute},
			},
		},
		Registry: RegistryConfig{
			StatementTimeout:   Duration{Duration: 15 * time.Second},
			LockTimeout:        Duration{Duration: 0}, // unlimited
			RetryEnabled:       false,
			RetryMaxAttempts:   3,
			RetryBackoff:       Duration{Duration: 100 * time.Millisecond},
			DateWindowTimezone: "Asia/Hong_Kong",
		},
	}
}

// parseFile loads YAML configuration from the given path, overlaying it onto
// the defaults already present on cfg.
func (c *Config) parseFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// finalize applies cross-field defaults and validates the configuration.
func (c *Config) finalize() error {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Registry.DateWindowTimezone == "" {
		c.Registry.DateWindowTimezone = "Asia/Hong_Kong"
	}
	if _, err := time.LoadLocation(c.Registry.DateWindowTimezone); err != nil {
		return fmt.Errorf("registry.date_window_timezone: %w", err)
	}
	if c.Registry.StatementTimeout.Duration <= 0 {
		c.Registry.StatementTimeout = Duration{Duration: 15 * time.Second}
	}
	if c.Registry.RetryMaxAttempts <= 0 {
		c.Registry.RetryMaxAttempts = 3
	}
	if c.Postgres.Pool.MaxOpenConns <= 0 {
		c.Postgres.Pool.MaxOpenConns = 20
	}
	return nil
}
