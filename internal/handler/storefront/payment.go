package storefront

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
	"github.com/dehaan/tannery/internal/middleware"
)

// PaymentHandler starts card payments for existing orders.
type PaymentHandler struct {
	payments       domain.PaymentService
	publishableKey string
	logger         *slog.Logger
}

func NewPaymentHandler(payments domain.PaymentService, publishableKey string, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{payments: payments, publishableKey: publishableKey, logger: logger}
}

// CreateIntent handles POST /orders/{id}/payment-intent. The response
// carries everything the payment page needs to confirm the card.
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		handler.UnauthorizedResponse(w, r)
		return
	}

	orderID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("payment.create_intent", "Invalid order id"))
		return
	}

	result, err := h.payments.CreateIntent(r.Context(), orderID, user.ID)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"client_secret":   result.ClientSecret,
		"amount":          result.Amount.StringFixed(2),
		"publishable_key": h.publishableKey,
	})
}
