// Package service owns the lifecycle of the card catalog: it opens the store,
// builds the catalog on top of it and reports operational state to the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/cardcatalog/internal/adapters/repository"
	"github.com/okian/cardcatalog/internal/catalog"
	"github.com/okian/cardcatalog/pkg/logger"
	"github.com/okian/cardcatalog/pkg/metrics"
)

// ErrNotStarted is returned by operations that need an open store.
var ErrNotStarted = errors.New("service not started")

// Service implements the operational dependencies of the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   *repository.SQLiteStore
	catalog *catalog.Catalog

	// Configuration
	dbPath       string
	poolSize     int
	busyTimeout  time.Duration
	storeTimeout time.Duration

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDBPath sets the SQLite database file.
func WithDBPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dbPath = path
		}
	}
}

// WithPoolSize caps open store connections.
func WithPoolSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.poolSize = size
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.busyTimeout = d
		}
	}
}

// WithStoreTimeout bounds every catalog store call.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dbPath:       "cardcatalog.db",
		poolSize:     3,
		busyTimeout:  5 * time.Second,
		storeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the store and builds the catalog.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting card catalog service...")

	store, err := repository.Open(ctx, s.dbPath,
		repository.WithPoolSize(s.poolSize),
		repository.WithBusyTimeout(s.busyTimeout),
		repository.WithLogger(s.logger.Named("store")),
	)
	if err != nil {
		return fmt.Errorf("starting service: %w", err)
	}
	s.store = store
	s.catalog = catalog.New(store,
		catalog.WithLogger(s.logger.Named("catalog")),
		catalog.WithStoreTimeout(s.storeTimeout),
	)

	s.started = true
	s.logger.Info(ctx, "card catalog service started",
		logger.String("dbPath", s.dbPath),
		logger.Int("poolSize", s.poolSize),
		logger.Duration("storeTimeout", s.storeTimeout),
	)
	return nil
}

// Stop closes the store. It is safe to call more than once.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(context.Background(), "stopping card catalog service...")

	err := s.store.Close()
	s.store = nil
	s.catalog = nil
	s.started = false

	if err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	s.logger.Info(context.Background(), "card catalog service stopped")
	return nil
}

// Catalog returns the catalog, or nil before Start.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

// Ping checks that the store can hand out a connection.
func (s *Service) Ping(ctx context.Context) error {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return ErrNotStarted
	}
	return store.Ping(ctx)
}

// ImportSet loads an official set into the store.
func (s *Service) ImportSet(ctx context.Context, set repository.SetImport) (repository.SetRow, int, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()

	if store == nil {
		return repository.SetRow{}, 0, ErrNotStarted
	}
	row, added, err := store.ImportSet(ctx, set)
	if err != nil {
		return repository.SetRow{}, 0, err
	}
	s.logger.Info(ctx, "set imported",
		logger.String("set", row.Name),
		logger.Int32("setID", row.ID),
		logger.Int("cardsAdded", added),
		logger.Int("cardsInFile", len(set.Cards)),
	)
	return row, added, nil
}

// GetStats returns service statistics for monitoring and refreshes the
// pool gauges.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":  s.started,
		"dbPath":   s.dbPath,
		"poolSize": s.poolSize,
	}

	if s.started {
		pool := s.store.Stats()
		stats["openConnections"] = pool.OpenConnections
		stats["inUse"] = pool.InUse
		stats["idle"] = pool.Idle
		stats["waitCount"] = pool.WaitCount
		stats["waitDurationMs"] = pool.WaitDuration.Milliseconds()

		metrics.UpdatePool(pool.OpenConnections, pool.InUse, pool.Idle, pool.WaitCount)
	}

	return stats
}

// RunPoolMetrics refreshes the pool gauges every interval until ctx is done.
func (s *Service) RunPoolMetrics(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.GetStats()
		}
	}
}
