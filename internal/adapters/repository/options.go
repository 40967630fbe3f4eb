// Package repository defines the catalog store surface and its SQLite implementation.
package repository

import (
	"time"

	"github.com/okian/cardcatalog/pkg/logger"
)

// Option applies a configuration option to the SQLiteStore.
type Option func(*SQLiteStore)

// WithPoolSize bounds the number of open connections.
func WithPoolSize(n int) Option {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithBusyTimeout sets how long a connection waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *SQLiteStore) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}
