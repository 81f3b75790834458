package customers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Lucaamst/farmy/internal/auth"
)

// MountRoutes registers the customer management routes, company-admin only.
// The customer order history endpoint lives with the orders package, which
// owns order serialization.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleCompanyAdmin))
		r.Post("/customers", h.handleCreate)
		r.Get("/customers", h.handleList)
		r.Get("/customers/search", h.handleSearch)
		r.Get("/customers/{id}", h.handleGet)
		r.Patch("/customers/{id}", h.handleUpdate)
		r.Delete("/customers/{id}", h.handleDelete)
	})
}
