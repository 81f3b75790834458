package couriers

import (
	"github.com/go-chi/chi/v5"

	"github.com/Lucaamst/farmy/internal/auth"
)

// MountRoutes registers the courier management routes, company-admin only.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleCompanyAdmin))
		r.Post("/couriers", h.handleCreate)
		r.Get("/couriers", h.handleList)
		r.Patch("/couriers/{id}", h.handleUpdate)
		r.Delete("/couriers/{id}", h.handleDelete)
		r.Patch("/couriers/{id}/toggle", h.handleToggle)
	})
}
