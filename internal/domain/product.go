package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Carts and orders snapshot its effective
// price at the moment a line is created, so later edits to the catalog
// never move totals that customers have already seen.
type Product struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	DiscountPrice  *decimal.Decimal
	AvailableSizes []string
	Available      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EffectivePrice returns the discount price when one is set below the
// regular price, otherwise the regular price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.OnSale() {
		return *p.DiscountPrice
	}
	return p.Price
}

// DiscountPercent returns the saving as a whole percentage, zero when
// the product is not on sale.
func (p *Product) DiscountPercent() int {
	if !p.OnSale() || p.Price.IsZero() {
		return 0
	}
	saving := p.Price.Sub(*p.DiscountPrice)
	return int(saving.Div(p.Price).Mul(decimal.NewFromInt(100)).Round(0).IntPart())
}

// OnSale reports whether the product has a discount price below its
// regular price.
func (p *Product) OnSale() bool {
	return p.DiscountPrice != nil && p.DiscountPrice.LessThan(p.Price)
}

// HasSize reports whether size is offered for this product. A product
// with no size list accepts any size string.
func (p *Product) HasSize(size string) bool {
	if len(p.AvailableSizes) == 0 {
		return true
	}
	for _, s := range p.AvailableSizes {
		if s == size {
			return true
		}
	}
	return false
}

// CatalogService looks up products for cart and checkout flows.
type CatalogService interface {
	// GetProduct returns the product with the given ID.
	// Returns ENOTFOUND if no such product exists.
	GetProduct(ctx context.Context, id uuid.UUID) (*Product, error)

	// ListProducts returns available products for the storefront.
	ListProducts(ctx context.Context) ([]Product, error)
}
