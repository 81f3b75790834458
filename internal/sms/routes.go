package sms

import (
	"github.com/go-chi/chi/v5"

	"github.com/Lucaamst/farmy/internal/auth"
)

// MountRoutes registers the audit trail (admins of either level) and the
// super-admin accounting surface.
func (h *Handler) MountRoutes(r chi.Router, mw auth.Middleware) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleSuperAdmin, auth.RoleCompanyAdmin))
		r.Get("/sms-logs", h.handleLogs)
	})
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireRoles(auth.RoleSuperAdmin))
		r.Get("/super-admin/sms-stats", h.handleStats)
		r.Put("/super-admin/sms-cost-settings", h.handleUpdateCostSettings)
		r.Get("/super-admin/sms-monthly-report", h.handleMonthlyReport)
	})
}
