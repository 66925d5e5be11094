// Package store provides read access to the catalog and wardrobe data the
// agents consume. The agents depend only on the Store interface, making it
// easy to swap between in-memory (tests) and PostgreSQL (production)
// implementations. The core never writes through this interface.
package store

import (
	"context"

	"github.com/closetmind/assistant/pkg/models"
)

// CatalogStore reads store-joined catalog products.
type CatalogStore interface {
	// ActiveCatalog returns every active, in-stock product joined with its
	// store, ordered by name.
	ActiveCatalog(ctx context.Context) ([]models.CatalogProduct, error)

	// SearchCatalog runs the deterministic fallback search: case-insensitive
	// substring match over name/description/category/brand plus the optional
	// filters, ordered by rating desc then price asc, capped at filter.Limit.
	SearchCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogProduct, error)
}

// WardrobeStore reads a user's personal wardrobe.
type WardrobeStore interface {
	UserWardrobe(ctx context.Context, userID int64) ([]models.WardrobeItem, error)
}

// Store is the combined read interface the agents are wired with.
type Store interface {
	CatalogStore
	WardrobeStore

	// Ping checks if the backing database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the store.
	Close() error
}
