package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
)

// ProductHandler serves the public catalog.
type ProductHandler struct {
	catalog domain.CatalogService
	logger  *slog.Logger
}

func NewProductHandler(catalog domain.CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{catalog: catalog, logger: logger}
}

type productView struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	Price           string    `json:"price"`
	DiscountPrice   *string   `json:"discount_price,omitempty"`
	EffectivePrice  string    `json:"effective_price"`
	OnSale          bool      `json:"on_sale"`
	DiscountPercent int       `json:"discount_percent,omitempty"`
	AvailableSizes  []string  `json:"available_sizes"`
}

func toProductView(p *domain.Product) productView {
	v := productView{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Price:           p.Price.StringFixed(2),
		EffectivePrice:  p.EffectivePrice().StringFixed(2),
		OnSale:          p.OnSale(),
		DiscountPercent: p.DiscountPercent(),
		AvailableSizes:  p.AvailableSizes,
	}
	if p.DiscountPrice != nil {
		s := p.DiscountPrice.StringFixed(2)
		v.DiscountPrice = &s
	}
	return v
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]productView, 0, len(products))
	for i := range products {
		views = append(views, toProductView(&products[i]))
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"products": views})
}

// Get handles GET /products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("product.get", "Invalid product id"))
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toProductView(product))
}
