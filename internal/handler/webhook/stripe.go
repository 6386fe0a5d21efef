package webhook

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/dehaan/tannery/internal/billing"
	"github.com/dehaan/tannery/internal/domain"
	"github.com/dehaan/tannery/internal/handler"
)

// Stripe caps webhook bodies at 64KB; anything larger is not a real
// event delivery.
const maxWebhookBody = 65536

// StripeHandler receives payment event deliveries from Stripe.
type StripeHandler struct {
	payments domain.PaymentService
	logger   *slog.Logger
}

func NewStripeHandler(payments domain.PaymentService, logger *slog.Logger) *StripeHandler {
	return &StripeHandler{payments: payments, logger: logger}
}

// Handle processes POST /webhooks/stripe. Stripe retries non-2xx
// responses, so only verification failures are rejected; events the
// shop has no use for are acknowledged.
func (h *StripeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		h.logger.Error("failed to read webhook body", slog.String("error", err.Error()))
		handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Could not read request body"))
		return
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := h.payments.HandleWebhook(r.Context(), payload, signature); err != nil {
		switch {
		case errors.Is(err, billing.ErrInvalidSignature):
			h.logger.Warn("webhook signature verification failed")
			handler.ErrorResponse(w, r, &domain.Error{
				Code:    domain.EUNAUTHORIZED,
				Message: "Webhook signature verification failed",
				Op:      "webhook.stripe",
			})
		case errors.Is(err, billing.ErrMalformedPayload):
			handler.ErrorResponse(w, r, domain.Invalid("webhook.stripe", "Malformed webhook payload"))
		default:
			handler.ErrorResponse(w, r, err)
		}
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
