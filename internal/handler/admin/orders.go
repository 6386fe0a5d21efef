package admin

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
)

// OrderHandler is the operator surface for browsing orders and moving
// them through fulfilment.
type OrderHandler struct {
	orders domain.OrderService
	logger *slog.Logger
}

func NewOrderHandler(orders domain.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logger: logger}
}

type adminOrderView struct {
	ID               uuid.UUID `json:"id"`
	UserID           uuid.UUID `json:"user_id"`
	FullName         string    `json:"full_name"`
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	PaymentStatus    string    `json:"payment_status"`
	ShippingMethod   string    `json:"shipping_method"`
	PaymentMethod    string    `json:"payment_method"`
	TotalAmount      string    `json:"total_amount"`
	AmountPaidOnline string    `json:"amount_paid_online"`
	RemainingAmount  string    `json:"remaining_amount"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toAdminOrderView(o *domain.Order) adminOrderView {
	return adminOrderView{
		ID:               o.ID,
		UserID:           o.UserID,
		FullName:         o.FullName,
		Email:            o.Email,
		Status:           string(o.Status),
		PaymentStatus:    o.PaymentStatusDisplay(),
		ShippingMethod:   string(o.ShippingMethod),
		PaymentMethod:    string(o.PaymentMethod),
		TotalAmount:      o.TotalAmount.StringFixed(2),
		AmountPaidOnline: o.AmountPaidOnline.StringFixed(2),
		RemainingAmount:  o.RemainingAmount.StringFixed(2),
		CreatedAt:        o.CreatedAt,
		UpdatedAt:        o.UpdatedAt,
	}
}

// List handles GET /admin/orders with an optional ?status= filter.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.OrderStatus(r.URL.Query().Get("status"))

	orders, err := h.orders.ListAllOrders(r.Context(), status)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	views := make([]adminOrderView, 0, len(orders))
	for i := range orders {
		views = append(views, toAdminOrderView(&orders[i]))
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"orders": views})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles POST /admin/orders/{id}/status. The new status
// triggers the customer email matching the transition.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("admin.order.update_status", "Invalid order id"))
		return
	}

	var req updateStatusRequest
	if err := handler.DecodeJSON(w, r, &req); err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	order, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, toAdminOrderView(order))
}
