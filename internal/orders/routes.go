package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/Lucaamst/farmy/internal/auth"
)

// MountRoutes registers order management (company-admin) and the courier
// delivery flow. The customer order history route lives here because this
// package owns order serialization.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleCompanyAdmin))
		r.Post("/orders", h.handleCreate)
		r.Get("/orders", h.handleList)
		r.Get("/orders/search", h.handleSearch)
		r.Get("/orders/export", h.handleExport)
		r.Patch("/orders/assign", h.handleAssign)
		r.Patch("/orders/{id}", h.handleUpdate)
		r.Delete("/orders/{id}", h.handleDelete)
		r.Get("/customers/{id}/orders", h.handleCustomerOrders)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleCourier))
		r.Get("/courier/deliveries", h.handleDeliveries)
		r.Patch("/courier/deliveries/mark-delivered", h.handleMarkDelivered)
	})
}
