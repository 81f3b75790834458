package security

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Handler exposes the self-scoped security factor endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func decode[T any](h *Handler, w http.ResponseWriter, r *http.Request, req *T) bool {
	if err := httpx.DecodeJSON(r, req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return false
	}
	return true
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	status, err := h.service.Status(r.Context(), user.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

func (h *Handler) handleSetupPIN(w http.ResponseWriter, r *http.Request) {
	var req SetupPINRequest
	if !decode(h, w, r, &req) {
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := h.service.SetupPIN(r.Context(), user.ID, req.PIN); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "pin configured"})
}

func (h *Handler) handleVerifyPIN(w http.ResponseWriter, r *http.Request) {
	var req VerifyPINRequest
	if !decode(h, w, r, &req) {
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := h.service.VerifyPIN(r.Context(), user.ID, req.PIN); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) handleSendSMSCode(w http.ResponseWriter, r *http.Request) {
	var req SendSMSCodeRequest
	if !decode(h, w, r, &req) {
		return
	}
	user := auth.UserFromContext(r.Context())
	companyID := ""
	if user.CompanyID != nil {
		companyID = *user.CompanyID
	}
	if err := h.service.SendSMSCode(r.Context(), user.ID, companyID, req.Phone); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "code sent"})
}

func (h *Handler) handleVerifySMSCode(w http.ResponseWriter, r *http.Request) {
	var req VerifySMSCodeRequest
	if !decode(h, w, r, &req) {
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := h.service.VerifySMSCode(r.Context(), user.ID, req.Phone, req.Code); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *Handler) handleBeginRegister(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	challenge, err := h.service.BeginRegister(r.Context(), user.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, challenge)
}

func (h *Handler) handleFinishRegister(w http.ResponseWriter, r *http.Request) {
	var req FinishRegisterRequest
	if !decode(h, w, r, &req) {
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := h.service.FinishRegister(r.Context(), user.ID, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "credential registered"})
}

func (h *Handler) handleBeginLogin(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	challenge, err := h.service.BeginLogin(r.Context(), user.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, challenge)
}

func (h *Handler) handleFinishLogin(w http.ResponseWriter, r *http.Request) {
	var req FinishLoginRequest
	if !decode(h, w, r, &req) {
		return
	}
	user := auth.UserFromContext(r.Context())
	if err := h.service.FinishLogin(r.Context(), user.ID, req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"verified": true})
}
