package routes

import (
	"github.com/dehaan/tannery/internal/middleware"
	"github.com/dehaan/tannery/internal/router"
)

// RegisterStorefrontRoutes registers all customer-facing routes.
//
// Browsing and the cart work anonymously off the session cookie;
// checkout and order history require an authenticated user.
func RegisterStorefrontRoutes(r *router.Router, deps StorefrontDeps) {
	// Product browsing
	r.Get("/products", deps.ProductHandler.List)
	r.Get("/products/{id}", deps.ProductHandler.Get)

	// Shopping cart
	r.Get("/cart", deps.CartHandler.View)
	r.Post("/cart/items", deps.CartHandler.Add)
	r.Delete("/cart/items/{product_id}/{size}", deps.CartHandler.Remove)
	r.Delete("/cart", deps.CartHandler.Clear)

	// Checkout pricing preview
	r.Get("/checkout/preview", deps.CheckoutHandler.Preview)

	// Orders and payment (require authentication)
	account := r.Group(middleware.RequireUser)
	account.Post("/orders", deps.OrderHandler.Create)
	account.Get("/orders", deps.OrderHandler.List)
	account.Get("/orders/{id}", deps.OrderHandler.Get)
	account.Post("/orders/{id}/payment-intent", deps.PaymentHandler.CreateIntent)
}
