package config

import "database/sql"

// ApplyPostgresPoolSettings configures *sql.DB pool sizing from PostgresPoolConfig.
func ApplyPostgresPoolSettings(db *sql.DB, cfg PostgresPoolConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime.Duration > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime.Duration)
	}
	if cfg.ConnMaxIdleTime.Duration > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime.Duration)
	}
}
