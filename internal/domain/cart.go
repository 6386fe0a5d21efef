package domain

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is one entry in a customer's cart, identified by the
// product/size pair. UnitPrice is the price snapshotted when the line
// was created, not the product's current price.
type CartLine struct {
	Key       string          `json:"key"`
	ProductID uuid.UUID       `json:"product_id"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`

	// Product is the current catalog record for the line, resolved when
	// the cart is read. Nil when the product has since been removed.
	Product *Product `json:"-"`
}

// LineTotal returns UnitPrice multiplied by Quantity.
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartKey builds the composite key that identifies a cart line. The
// same product in two sizes yields two independent lines.
func CartKey(productID uuid.UUID, size string) string {
	return fmt.Sprintf("%s_%s", productID, size)
}

// CartSummary is the enriched view of a session cart: lines in
// insertion order plus the derived totals.
type CartSummary struct {
	Lines     []CartLine      `json:"lines"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartService manages the session-scoped shopping cart.
//
// All mutations persist back to the session store before returning, so
// a dropped connection never loses a cart update.
type CartService interface {
	// AddItem adds quantity units of a product/size to the cart. When a
	// line for the pair already exists the quantity accumulates; with
	// override set the stored quantity is replaced instead. The line's
	// unit price is snapshotted from the catalog only when the line is
	// first created.
	//
	// Returns EINVALID when the resulting quantity would be below one,
	// and ENOTFOUND when the product does not exist or is unavailable.
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, size string, quantity int, override bool) (*CartSummary, error)

	// RemoveItem deletes the line for the product/size pair. Removing a
	// line that is not present is a no-op.
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, size string) (*CartSummary, error)

	// GetCart returns the enriched cart. Lines whose product has been
	// removed from the catalog are skipped. An absent cart reads as
	// empty.
	GetCart(ctx context.Context, sessionID string) (*CartSummary, error)

	// Clear discards the cart. Clearing an absent cart is a no-op.
	Clear(ctx context.Context, sessionID string) error
}
