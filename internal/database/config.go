package database

import (
	"fmt"
	"time"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config describes how to reach the relational store.
type Config struct {
	Driver          string        `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
}

// DefaultConfig opens a shared in-memory sqlite database.
func DefaultConfig() Config {
	return Config{
		Driver:         DriverSQLite,
		DSN:            "file:feed?mode=memory&cache=shared",
		MaxOpenConns:   10,
		MaxIdleConns:   2,
		ConnectTimeout: 30 * time.Second,
	}
}

// ConfigError reports an invalid database setting.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("database config error in field %s: %s", e.Field, e.Message)
}

// Validate checks the settings Open relies on.
func (c Config) Validate() error {
	switch c.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return &ConfigError{Field: "Driver", Message: "must be one of sqlite3, postgres"}
	}
	if c.DSN == "" {
		return &ConfigError{Field: "DSN", Message: "must not be empty"}
	}
	if c.MaxOpenConns < 0 || c.MaxIdleConns < 0 {
		return &ConfigError{Field: "MaxOpenConns", Message: "must be non-negative"}
	}
	if c.ConnMaxLifetime < 0 || c.ConnectTimeout < 0 {
		return &ConfigError{Field: "ConnMaxLifetime", Message: "must be non-negative"}
	}
	return nil
}
