package storefront

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
	"github.com/dehaan/tannery/internal/middleware"
)

// OrderHandler exposes checkout and the customer's order history.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type orderView struct {
	ID                uuid.UUID `json:"id"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"payment_status"`
	ShippingMethod    string    `json:"shipping_method"`
	EstimatedDelivery string    `json:"estimated_delivery"`
	PaymentMethod     string    `json:"payment_method"`
	Subtotal          string    `json:"subtotal"`
	ShippingCost      string    `json:"shipping_cost"`
	VAT               string    `json:"vat"`
	TotalAmount       string    `json:"total_amount"`
	AmountPaidOnline  string    `json:"amount_paid_online"`
	RemainingAmount   string    `json:"remaining_amount"`
	CreatedAt         time.Time `json:"created_at"`
}

type orderItemView struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Size        string    `json:"size"`
	Price       string    `json:"price"`
	Quantity    int       `json:"quantity"`
	LineTotal   string    `json:"line_total"`
}

func toOrderView(o *domain.Order) orderView {
	return orderView{
		ID:                o.ID,
		Status:            string(o.Status),
		PaymentStatus:     o.PaymentStatusDisplay(),
		ShippingMethod:    string(o.ShippingMethod),
		EstimatedDelivery: o.EstimatedDelivery,
		PaymentMethod:     string(o.PaymentMethod),
		Subtotal:          o.Subtotal.StringFixed(2),
		ShippingCost:      o.ShippingCost.StringFixed(2),
		VAT:               o.VAT.StringFixed(2),
		TotalAmount:       o.TotalAmount.StringFixed(2),
		AmountPaidOnline:  o.AmountPaidOnline.StringFixed(2),
		RemainingAmount:   o.RemainingAmount.StringFixed(2),
		CreatedAt:         o.CreatedAt,
	}
}

func toOrderItemViews(items []domain.OrderItem) []orderItemView {
	views := make([]orderItemView, 0, len(items))
	for i := range items {
		item := &items[i]
		views = append(views, orderItemView{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Price:       item.Price.StringFixed(2),
			Quantity:    item.Quantity,
			LineTotal:   item.LineTotal().StringFixed(2),
		})
	}
	return views
}

// Create handles POST /orders: the checkout submission.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}
	sessionID := ensureSession(w, r)

	var input domain.CreateOrderInput
	if err := handler.DecodeJSON(w, r, &input); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), sessionID, user.ID, input)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusCreated, toOrderView(order))
}

// List handles GET /orders: the customer's order history.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}

	orders, err := h.orders.ListOrders(r.Context(), user.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]orderView, 0, len(orders))
	for i := range orders {
		views = append(views, toOrderView(&orders[i]))
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"orders": views})
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("order.get", "Invalid order id"))
		return
	}

	detail, err := h.orders.GetOrder(r.Context(), orderID, user.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"order": toOrderView(detail.Order),
		"items": toOrderItemViews(detail.Items),
	})
}
