package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/dehaan/tannery/internal/domain"
)

// CatalogStore implements domain.CatalogService using PostgreSQL.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CatalogStore implements domain.CatalogService.
var _ domain.CatalogService = (*CatalogStore)(nil)

func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

const productColumns = `id, name, slug, description, price, discount_price, available_sizes, available, created_at, updated_at`

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var discount decimal.NullDecimal

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&discount,
		&p.AvailableSizes,
		&p.Available,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if discount.Valid {
		p.DiscountPrice = &discount.Decimal
	}
	return &p, nil
}

// GetProduct returns the product with the given ID.
func (s *CatalogStore) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("catalog.get", "product", id.String())
		}
		return nil, domain.Internal(err, "catalog.get", "failed to load product")
	}
	return p, nil
}

// ListProducts returns available products, newest first.
func (s *CatalogStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE available = true ORDER BY created_at DESC`)
	if err != nil {
		return nil, domain.Internal(err, "catalog.list", "failed to list products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, domain.Internal(err, "catalog.list", "failed to scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, "catalog.list", "failed to read products")
	}
	return products, nil
}
