package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/session"
)

// cartSessionKey names the session slot the serialized cart lives in.
const cartSessionKey = "cart"

// sessionCart is the wire form of a cart in the session store. Lines
// keep insertion order; the composite product/size key is derived, not
// stored.
type sessionCart struct {
	Lines []sessionLine `json:"lines"`
}

type sessionLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func (c *sessionCart) find(key string) *sessionLine {
	for i := range c.Lines {
		if domain.CartKey(c.Lines[i].ProductID, c.Lines[i].Size) == key {
			return &c.Lines[i]
		}
	}
	return nil
}

func (c *sessionCart) remove(key string) {
	for i := range c.Lines {
		if domain.CartKey(c.Lines[i].ProductID, c.Lines[i].Size) == key {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// CartService implements domain.CartService on a session store.
type CartService struct {
	sessions session.Store
	catalog  domain.CatalogService
	logger   *slog.Logger
}

var _ domain.CartService = (*CartService)(nil)

func NewCartService(sessions session.Store, catalog domain.CatalogService, logger *slog.Logger) *CartService {
	return &CartService{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

func (s *CartService) load(ctx context.Context, sessionID string) (*sessionCart, error) {
	raw, err := s.sessions.Get(ctx, sessionID, cartSessionKey)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return &sessionCart{}, nil
		}
		return nil, domain.Internal(err, "cart.load", "failed to load cart")
	}

	var cart sessionCart
	if err := json.Unmarshal(raw, &cart); err != nil {
		// A cart that no longer decodes is unrecoverable; start fresh
		// rather than locking the customer out of their session.
		s.logger.Warn("discarding undecodable cart", slog.String("session_id", sessionID), slog.String("error", err.Error()))
		return &sessionCart{}, nil
	}
	return &cart, nil
}

func (s *CartService) save(ctx context.Context, sessionID string, cart *sessionCart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return domain.Internal(err, "cart.save", "failed to encode cart")
	}
	if err := s.sessions.Set(ctx, sessionID, cartSessionKey, raw); err != nil {
		return domain.Internal(err, "cart.save", "failed to save cart")
	}
	return nil
}

// AddItem adds or updates a product/size line. The unit price is
// snapshotted from the catalog only when the line is first created, so
// catalog price edits never move an existing cart.
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, size string, quantity int, override bool) (*domain.CartSummary, error) {
	if override && quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if !product.Available {
		return nil, ErrProductNotFound
	}
	if !product.HasSize(size) {
		return nil, ErrSizeUnavailable
	}

	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	key := domain.CartKey(productID, size)
	line := cart.find(key)
	if line == nil {
		if quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		cart.Lines = append(cart.Lines, sessionLine{
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
			UnitPrice: product.EffectivePrice(),
		})
	} else if override {
		line.Quantity = quantity
	} else {
		if line.Quantity+quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		line.Quantity += quantity
	}

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}

	s.logger.Debug("cart item added",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID.String()),
		slog.String("size", size),
		slog.Int("quantity", quantity),
		slog.Bool("override", override),
	)

	return s.summarize(ctx, cart)
}

// RemoveItem deletes the line for the product/size pair. Absent lines
// are a no-op.
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID, size string) (*domain.CartSummary, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.remove(domain.CartKey(productID, size))

	if err := s.save(ctx, sessionID, cart); err != nil {
		return nil, err
	}
	return s.summarize(ctx, cart)
}

// GetCart returns the enriched cart view.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*domain.CartSummary, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, cart)
}

// Clear discards the session cart.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID, cartSessionKey); err != nil {
		return domain.Internal(err, "cart.clear", "failed to clear cart")
	}
	return nil
}

// summarize resolves each line against the catalog and derives the
// totals. Lines whose product has vanished are skipped rather than
// failing the whole cart.
func (s *CartService) summarize(ctx context.Context, cart *sessionCart) (*domain.CartSummary, error) {
	summary := &domain.CartSummary{
		Lines:    make([]domain.CartLine, 0, len(cart.Lines)),
		Subtotal: decimal.Zero,
	}

	for _, l := range cart.Lines {
		product, err := s.catalog.GetProduct(ctx, l.ProductID)
		if err != nil {
			if domain.IsCode(err, domain.ENOTFOUND) {
				s.logger.Warn("skipping cart line for missing product",
					slog.String("product_id", l.ProductID.String()))
				continue
			}
			return nil, err
		}

		line := domain.CartLine{
			Key:       domain.CartKey(l.ProductID, l.Size),
			ProductID: l.ProductID,
			Size:      l.Size,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Product:   product,
		}
		summary.Lines = append(summary.Lines, line)
		summary.ItemCount += l.Quantity
		summary.Subtotal = summary.Subtotal.Add(line.LineTotal())
	}

	return summary, nil
}
