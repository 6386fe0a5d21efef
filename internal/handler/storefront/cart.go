package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
	"github.com/dehaan/tannery/internal/pricing"
)

// CartHandler exposes the session cart over JSON.
type CartHandler struct {
	carts  domain.CartService
	engine *pricing.Engine
	logger *slog.Logger
}

func NewCartHandler(carts domain.CartService, engine *pricing.Engine, logger *slog.Logger) *CartHandler {
	return &CartHandler{carts: carts, engine: engine, logger: logger}
}

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Override  bool   `json:"override"`
}

// View handles GET /cart. The totals block previews standard
// shipping; checkout preview has the full per-method breakdown.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	sessionID := ensureSession(w, r)

	summary, err := h.carts.GetCart(r.Context(), sessionID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	quote := h.engine.Quote(domain.ShippingStandard, summary.Subtotal)
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"cart": summary,
		"totals": map[string]string{
			"subtotal":      summary.Subtotal.StringFixed(2),
			"shipping_cost": quote.ShippingCost.StringFixed(2),
			"vat":           quote.VAT.StringFixed(2),
			"total":         quote.Total.StringFixed(2),
		},
	})
}

// Add handles POST /cart/items.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	sessionID := ensureSession(w, r)

	var req addItemRequest
	if err := handler.DecodeJSON(w, r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "Invalid product id"))
		return
	}
	if req.Size == "" {
		handler.ErrorResponse(w, r, domain.Invalid("cart.add", "Size is required"))
		return
	}
	// Quantity defaults to one so a bare "add to cart" click works.
	if req.Quantity == 0 && !req.Override {
		req.Quantity = 1
	}

	summary, err := h.carts.AddItem(r.Context(), sessionID, productID, req.Size, req.Quantity, req.Override)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, summary)
}

// Remove handles DELETE /cart/items/{product_id}/{size}.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	sessionID := ensureSession(w, r)

	productID, err := uuid.Parse(r.PathValue("product_id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("cart.remove", "Invalid product id"))
		return
	}

	summary, err := h.carts.RemoveItem(r.Context(), sessionID, productID, r.PathValue("size"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, summary)
}

// Clear handles DELETE /cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID := ensureSession(w, r)

	if err := h.carts.Clear(r.Context(), sessionID); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
