package security

import "github.com/go-chi/chi/v5"

// MountRoutes registers the security factor routes. Any authenticated user
// may call them; each acts on the caller's own record only.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/security", func(r chi.Router) {
		r.Get("/status", h.handleStatus)
		r.Post("/setup-pin", h.handleSetupPIN)
		r.Post("/verify-pin", h.handleVerifyPIN)
		r.Post("/send-sms-code", h.handleSendSMSCode)
		r.Post("/verify-sms-code", h.handleVerifySMSCode)
		r.Route("/webauthn", func(r chi.Router) {
			r.Post("/register-begin", h.handleBeginRegister)
			r.Post("/register-finish", h.handleFinishRegister)
			r.Post("/login-begin", h.handleBeginLogin)
			r.Post("/login-finish", h.handleFinishLogin)
		})
	})
}
