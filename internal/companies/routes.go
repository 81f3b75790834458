package companies

import (
	"github.com/go-chi/chi/v5"

	"github.com/Lucaamst/farmy/internal/auth"
)

// MountRoutes registers the company management routes. All of them are
// super-admin only.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleSuperAdmin))
		r.Post("/companies", h.handleCreate)
		r.Get("/companies", h.handleList)
		r.Patch("/companies/{id}", h.handleRename)
		r.Delete("/companies/{id}", h.handleDelete)
		r.Patch("/companies/{id}/toggle", h.handleToggle)
		r.Patch("/companies/{id}/reset-password", h.handleResetPassword)
	})
}
