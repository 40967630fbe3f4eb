// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Loading layers sources on top of the defaults; see Load.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr" validate:"required"`

	// DBPath is the SQLite database file. ":memory:" keeps everything in process.
	DBPath string `koanf:"db_path" validate:"required"`

	// PoolSize caps open store connections.
	PoolSize int `koanf:"pool_size" validate:"min=1,max=64"`

	// BusyTimeoutMS is how long SQLite waits on a locked database.
	BusyTimeoutMS int `koanf:"busy_timeout_ms" validate:"min=0"`

	// StoreTimeoutMS bounds every store round trip.
	StoreTimeoutMS int `koanf:"store_timeout_ms" validate:"min=1"`

	// ShutdownTimeoutMS bounds graceful HTTP shutdown.
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms" validate:"min=1"`

	// PoolStatsIntervalMS sets how often pool gauges are refreshed.
	PoolStatsIntervalMS int `koanf:"pool_stats_interval_ms" validate:"min=100"`

	// Network database keys kept for deployment manifests written against a
	// server database. Only DBName is used: it names the file when DBPath is empty.
	DBHost     string `koanf:"db_host"`
	DBPort     int    `koanf:"db_port" validate:"omitempty,min=1,max=65535"`
	DBUser     string `koanf:"db_user"`
	DBPassword string `koanf:"db_password"`
	DBName     string `koanf:"db_name"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":8080",
		DBPath:              "cardcatalog.db",
		PoolSize:            3,
		BusyTimeoutMS:       5000,
		StoreTimeoutMS:      5000,
		ShutdownTimeoutMS:   30000,
		PoolStatsIntervalMS: 5000,
	}
}

// StoreTimeout returns StoreTimeoutMS as a duration.
func (c *Config) StoreTimeout() time.Duration {
	return time.Duration(c.StoreTimeoutMS) * time.Millisecond
}

// BusyTimeout returns BusyTimeoutMS as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}

// PoolStatsInterval returns PoolStatsIntervalMS as a duration.
func (c *Config) PoolStatsInterval() time.Duration {
	return time.Duration(c.PoolStatsIntervalMS) * time.Millisecond
}

// UnusedDBKeys lists the network database keys that were set but have no
// effect on the SQLite store.
func (c *Config) UnusedDBKeys() []string {
	var keys []string
	if c.DBHost != "" {
		keys = append(keys, "db_host")
	}
	if c.DBPort != 0 {
		keys = append(keys, "db_port")
	}
	if c.DBUser != "" {
		keys = append(keys, "db_user")
	}
	if c.DBPassword != "" {
		keys = append(keys, "db_password")
	}
	return keys
}
