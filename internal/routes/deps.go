package routes

import (
	"github.com/dehaan/tannery/internal/handler/admin"
	"github.com/dehaan/tannery/internal/handler/storefront"
	"github.com/dehaan/tannery/internal/handler/webhook"
)

// StorefrontDeps contains the handlers for customer-facing routes.
type StorefrontDeps struct {
	ProductHandler  *storefront.ProductHandler
	CartHandler     *storefront.CartHandler
	CheckoutHandler *storefront.CheckoutHandler
	OrderHandler    *storefront.OrderHandler
	PaymentHandler  *storefront.PaymentHandler
}

// AdminDeps contains the handlers for operator routes.
type AdminDeps struct {
	OrderHandler *admin.OrderHandler
}

// WebhookDeps contains the handlers for provider callbacks.
type WebhookDeps struct {
	StripeHandler *webhook.StripeHandler
}
