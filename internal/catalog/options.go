package catalog

import (
	"time"

	"github.com/okian/cardcatalog/pkg/logger"
)

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithLogger sets the catalog logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStoreTimeout bounds every store call. Expiry surfaces as a server error.
func WithStoreTimeout(d time.Duration) Option {
	return func(c *Catalog) {
		if d > 0 {
			c.storeTimeout = d
		}
	}
}

// WithSeedSource replaces the generator of fresh shuffle seeds.
func WithSeedSource(src SeedSource) Option {
	return func(c *Catalog) {
		if src != nil {
			c.newSeed = src
		}
	}
}
