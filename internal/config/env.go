package config

import (
	"fmt"
	"os"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over YAML configuration. All env
// vars use the TXREGISTRY_ prefix for namespace isolation, mirroring the
// teacher's CEDROS_ prefix convention.
func (c *Config) applyEnvOverrides() {
	setIfEnv(&c.Logging.Level, "TXREGISTRY_LOG_LEVEL")
	setIfEnv(&c.Logging.Format, "TXREGISTRY_LOG_FORMAT")
	setIfEnv(&c.Logging.Environment, "TXREGISTRY_ENVIRONMENT")

	setIfEnv(&c.Postgres.URL, "TXREGISTRY_POSTGRES_URL")
	setIntIfEnv(&c.Postgres.Pool.MaxOpenConns, "TXREGISTRY_POSTGRES_MAX_OPEN_CONNS")
	setIntIfEnv(&c.Postgres.Pool.MaxIdleConns, "TXREGISTRY_POSTGRES_MAX_IDLE_CONNS")
	setDurationIfEnv(&c.Postgres.Pool.ConnMaxLifetime, "TXREGISTRY_POSTGRES_CONN_MAX_LIFETIME")
	setDurationIfEnv(&c.Postgres.Pool.ConnMaxIdleTime, "TXREGISTRY_POSTGRES_CONN_MAX_IDLE_TIME")

	setDurationIfEnv(&c.Registry.StatementTimeout, "TXREGISTRY_STATEMENT_TIMEOUT")
	setDurationIfEnv(&c.Registry.LockTimeout, "TXREGISTRY_LOCK_TIMEOUT")
	setBoolIfEnv(&c.Registry.RetryEnabled, "TXREGISTRY_RETRY_ENABLED")
	setIntIfEnv(&c.Registry.RetryMaxAttempts, "TXREGISTRY_RETRY_MAX_ATTEMPTS")
	setDurationIfEnv(&c.Registry.RetryBackoff, "TXREGISTRY_RETRY_BACKOFF")
	setIfEnv(&c.Registry.DateWindowTimezone, "TXREGISTRY_DATE_WINDOW_TIMEZONE")
}

func setIfEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func setBoolIfEnv(target *bool, key string) {
	v := os.Getenv(key)
	switch v {
	case "true", "1", "yes", "on":
		*target = true
	case "false", "0", "no", "off":
		*target = false
	}
}

func setDurationIfEnv(target *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			target.Duration = dur
		}
	}
}

func setIntIfEnv(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			*target = n
		}
	}
}
