package storefront

import (
	"log/slog"
	"net/http"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
	"github.com/dehaan/tannery/internal/pricing"
)

// CheckoutHandler prices the current cart before the customer commits
// to an order.
type CheckoutHandler struct {
	carts  domain.CartService
	engine *pricing.Engine
	logger *slog.Logger
}

func NewCheckoutHandler(carts domain.CartService, engine *pricing.Engine, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{carts: carts, engine: engine, logger: logger}
}

type shippingQuoteView struct {
	Method            string `json:"method"`
	ShippingCost      string `json:"shipping_cost"`
	VAT               string `json:"vat"`
	Total             string `json:"total"`
	EstimatedDelivery string `json:"estimated_delivery"`
}

// Preview handles GET /checkout/preview: the cart subtotal priced
// against every shipping method, so the checkout page can show totals
// before an order exists.
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	sessionID := ensureSession(w, r)

	cart, err := h.carts.GetCart(r.Context(), sessionID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	if len(cart.Lines) == 0 {
		handler.ErrorResponse(w, r, domain.ErrEmptyCart)
		return
	}

	quotes := h.engine.QuoteAll(cart.Subtotal)
	views := make([]shippingQuoteView, 0, len(quotes))
	for _, q := range quotes {
		views = append(views, shippingQuoteView{
			Method:            string(q.Method),
			ShippingCost:      q.ShippingCost.StringFixed(2),
			VAT:               q.VAT.StringFixed(2),
			Total:             q.Total.StringFixed(2),
			EstimatedDelivery: q.EstimatedDelivery,
		})
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"subtotal": cart.Subtotal.StringFixed(2),
		"quotes":   views,
	})
}
