package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/cardcatalog/pkg/logger"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	defaultPoolSize    = 3
	defaultBusyTimeout = 5 * time.Second
)

// SQLiteStore implements Store on a pooled SQLite database.
type SQLiteStore struct {
	db          *sql.DB
	poolSize    int
	busyTimeout time.Duration
	logger      logger.Logger
}

var _ Store = (*SQLiteStore)(nil)

// Open connects to the database at path, applies the schema and sizes the
// connection pool. A plain ":memory:" path is limited to one connection
// because every connection would otherwise see its own empty database; use
// "file:name?mode=memory&cache=shared" for a pooled in-memory store.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		poolSize:    defaultPoolSize,
		busyTimeout: defaultBusyTimeout,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if path == ":memory:" {
		s.poolSize = 1
	}

	db, err := sql.Open("sqlite", buildDSN(path, s.busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(s.poolSize)
	db.SetMaxIdleConns(s.poolSize)
	s.db = db

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info(ctx, "store opened", logger.String("path", path), logger.Int("pool_size", s.poolSize))
	return s, nil
}

// buildDSN turns a path into a URI carrying per-connection pragmas.
func buildDSN(path string, busy time.Duration) string {
	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	// Transactions here always write, so take the write lock up front.
	return fmt.Sprintf("%s%s_pragma=foreign_keys(1)&_pragma=busy_timeout(%d)&_txlock=immediate",
		dsn, sep, busy.Milliseconds())
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// Ping checks that a connection can be acquired.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return nil
}

// Stats reports connection pool usage.
func (s *SQLiteStore) Stats() sql.DBStats {
	return s.db.Stats()
}

// Close releases every pooled connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY conflict.
func isUniqueViolation(err error) bool {
	var serr *sqlite.Error
	if !errors.As(err, &serr) {
		return false
	}
	switch serr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

// boolToInt converts a Go bool to an integer (0 or 1) for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullableFloat32 converts a scanned REAL into an optional float32.
func nullableFloat32(v sql.NullFloat64) *float32 {
	if !v.Valid {
		return nil
	}
	f := float32(v.Float64)
	return &f
}
