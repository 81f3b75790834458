package sms

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Handler exposes the audit trail and the super-admin accounting surface.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// handleLogs scopes the trail by role: super admins see every tenant,
// company admins their own.
func (h *Handler) handleLogs(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	var companyID *string
	if user.Role == auth.RoleCompanyAdmin {
		companyID = user.CompanyID
	}
	logs, err := h.service.Logs(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if logs == nil {
		logs = []Log{}
	}
	httpx.JSON(w, http.StatusOK, logs)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) handleUpdateCostSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateCostSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	settings, err := h.service.UpdateCostSettings(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

func (h *Handler) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: year must be an integer", httpx.ErrUnprocessable))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		httpx.RespondError(w, fmt.Errorf("%w: month must be 1-12", httpx.ErrUnprocessable))
		return
	}
	report, err := h.service.MonthlyReport(r.Context(), year, month)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
