package store

import (
	"context"
	"fmt"

	"github.com/closetmind/assistant/internal/config"
	"github.com/closetmind/assistant/pkg/models"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// PostgresStore is the production Store backed by the ClosetMind database.
// The products/stores/clothing_items tables are owned and migrated by the
// surrounding CRUD application; this store only reads them.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL and verifies the connection.
func NewPostgresStore(ctx context.Context, cfg config.DatabaseConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if cfg.MaxConnections > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConnections)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	log.Info().Msg("postgres store initialized")
	return &PostgresStore{pool: pool}, nil
}

const productColumns = `
	p.id, p.name, p.price, p.original_price, p.category,
	COALESCE(p.brand, ''), COALESCE(p.description, ''),
	COALESCE(p.sizes, '{}'), COALESCE(p.colors, '{}'),
	COALESCE(p.image_urls, '{}'), COALESCE(p.features, '{}'),
	p.store_id, s.name, s.city, p.stock_quantity, p.rating, p.is_active`

// ActiveCatalog returns every active, in-stock product joined with its
// store, ordered by name.
func (s *PostgresStore) ActiveCatalog(ctx context.Context) ([]models.CatalogProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.is_active AND p.stock_quantity > 0
		ORDER BY p.name`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("active catalog: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SearchCatalog runs the deterministic fallback search in SQL: ILIKE
// substring predicates over name/description/category/brand plus the
// optional filters, ordered by rating desc then price asc.
func (s *PostgresStore) SearchCatalog(ctx context.Context, filter models.CatalogFilter) ([]models.CatalogProduct, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN stores s ON s.id = p.store_id
		WHERE p.is_active AND p.stock_quantity > 0`

	args := []interface{}{}
	n := 0

	if filter.Query != "" {
		n++
		query += fmt.Sprintf(`
			AND (p.name ILIKE $%d OR p.description ILIKE $%d OR p.category ILIKE $%d OR p.brand ILIKE $%d)`, n, n, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.Category != "" {
		n++
		query += fmt.Sprintf(` AND p.category ILIKE $%d`, n)
		args = append(args, filter.Category)
	}
	if filter.Color != "" {
		n++
		query += fmt.Sprintf(` AND EXISTS (SELECT 1 FROM unnest(p.colors) c WHERE c ILIKE $%d)`, n)
		args = append(args, filter.Color)
	}
	if filter.MaxPrice > 0 {
		n++
		query += fmt.Sprintf(` AND p.price <= $%d`, n)
		args = append(args, filter.MaxPrice)
	}

	limit := filter.Limit
	if limit <= 0 || limit > models.MaxSearchResults {
		limit = models.MaxSearchResults
	}
	n++
	query += fmt.Sprintf(` ORDER BY p.rating DESC, p.price ASC LIMIT $%d`, n)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// UserWardrobe returns the user's clothing items.
func (s *PostgresStore) UserWardrobe(ctx context.Context, userID int64) ([]models.WardrobeItem, error) {
	query := `
		SELECT id, user_id, name, COALESCE(image_url, ''), COALESCE(category, ''), COALESCE(features, '{}')
		FROM clothing_items
		WHERE user_id = $1
		ORDER BY id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("user wardrobe: %w", err)
	}
	defer rows.Close()

	var items []models.WardrobeItem
	for rows.Next() {
		var item models.WardrobeItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.Name, &item.ImageURL, &item.Category, &item.Features); err != nil {
			return nil, fmt.Errorf("scan wardrobe item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanProducts(rows pgxRows) ([]models.CatalogProduct, error) {
	var products []models.CatalogProduct
	for rows.Next() {
		var p models.CatalogProduct
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Price, &p.OriginalPrice, &p.Category,
			&p.Brand, &p.Description, &p.Sizes, &p.Colors,
			&p.ImageURLs, &p.Features,
			&p.StoreID, &p.StoreName, &p.StoreCity, &p.StockQuantity, &p.Rating, &p.IsActive,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Ping checks database reachability.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
