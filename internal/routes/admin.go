package routes

import (
	"github.com/dehaan/tannery/internal/middleware"
	"github.com/dehaan/tannery/internal/router"
)

// RegisterAdminRoutes registers the operator routes. Every route
// requires the operator role from the auth proxy headers.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	ops := r.Group(middleware.RequireOperator)
	ops.Get("/admin/orders", deps.OrderHandler.List)
	ops.Post("/admin/orders/{id}/status", deps.OrderHandler.UpdateStatus)
}
