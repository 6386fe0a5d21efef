package routes

import (
	"github.com/dehaan/tannery/internal/router"
)

// RegisterWebhookRoutes registers provider callback endpoints. These
// authenticate by payload signature, not by user.
func RegisterWebhookRoutes(r *router.Router, deps WebhookDeps) {
	r.Post("/webhooks/stripe", deps.StripeHandler.Handle)
}
