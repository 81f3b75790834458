package couriers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Handler exposes courier management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// companyID extracts the caller's tenant. Role gating guarantees a company
// admin, so a missing company id is a server error rather than a 403.
func companyID(r *http.Request) string {
	user := auth.UserFromContext(r.Context())
	if user == nil || user.CompanyID == nil {
		return ""
	}
	return *user.CompanyID
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateCourierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	courier, err := h.service.Create(r.Context(), companyID(r), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, courier)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	couriers, err := h.service.List(r.Context(), companyID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if couriers == nil {
		couriers = []Courier{}
	}
	httpx.JSON(w, http.StatusOK, couriers)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateCourierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	courier, err := h.service.Update(r.Context(), companyID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, courier)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request) {
	courier, err := h.service.Toggle(r.Context(), companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, courier)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), companyID(r), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "courier deleted"})
}
