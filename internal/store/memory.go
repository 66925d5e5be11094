package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/closetmind/assistant/pkg/models"
)

// MemoryStore is a thread-safe in-memory Store used by tests and the
// zero-config development server.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[int64]models.CatalogProduct
	wardrobe map[int64][]models.WardrobeItem
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[int64]models.CatalogProduct),
		wardrobe: make(map[int64][]models.WardrobeItem),
	}
}

// PutProduct inserts or replaces a catalog product.
func (s *MemoryStore) PutProduct(p models.CatalogProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// PutWardrobeItem appends an item to a user's wardrobe.
func (s *MemoryStore) PutWardrobeItem(item models.WardrobeItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wardrobe[item.UserID] = append(s.wardrobe[item.UserID], item)
}

// ActiveCatalog returns active, in-stock products ordered by name.
func (s *MemoryStore) ActiveCatalog(_ context.Context) ([]models.CatalogProduct, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.CatalogProduct
	for _, p := range s.products {
		if p.InStock() {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SearchCatalog runs the deterministic substring search over the active
// catalog, ordered by rating desc then price asc.
func (s *MemoryStore) SearchCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogProduct, error) {
	all, err := s.ActiveCatalog(ctx)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	var out []models.CatalogProduct
	for _, p := range all {
		if query != "" && !matchesQuery(&p, query) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
			continue
		}
		if filter.Color != "" && !containsFold(p.Colors, filter.Color) {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].Price < out[j].Price
	})

	limit := filter.Limit
	if limit <= 0 || limit > models.MaxSearchResults {
		limit = models.MaxSearchResults
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matchesQuery(p *models.CatalogProduct, query string) bool {
	for _, field := range []string{p.Name, p.Description, p.Category, p.Brand} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

func containsFold(values []string, want string) bool {
	for _, v := range values {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// UserWardrobe returns a copy of the user's wardrobe items.
func (s *MemoryStore) UserWardrobe(_ context.Context, userID int64) ([]models.WardrobeItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.wardrobe[userID]
	out := make([]models.WardrobeItem, len(items))
	copy(out, items)
	return out, nil
}

// Ping always succeeds for the in-memory store.
func (s *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
