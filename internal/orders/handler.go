package orders

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/platform/httpx"
)

// Handler exposes order management and courier delivery endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

func companyID(r *http.Request) string {
	user := auth.UserFromContext(r.Context())
	if user == nil || user.CompanyID == nil {
		return ""
	}
	return *user.CompanyID
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	order, err := h.service.Create(r.Context(), companyID(r), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context(), companyID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

// parseSearchFilter turns query parameters into a SearchFilter. Unparseable
// dates are a 422, matching the malformed-query taxonomy.
func parseSearchFilter(r *http.Request) (SearchFilter, error) {
	q := r.URL.Query()
	filter := SearchFilter{
		Query:     q.Get("query"),
		Status:    Status(q.Get("status")),
		CourierID: q.Get("courier_id"),
	}
	for name, dst := range map[string]**time.Time{"date_from": &filter.DateFrom, "date_to": &filter.DateTo} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, fmt.Errorf("%w: %s must be RFC3339", httpx.ErrUnprocessable, name)
		}
		*dst = &t
	}
	return filter, nil
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	filter, err := parseSearchFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	orders, err := h.service.Search(r.Context(), companyID(r), filter)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context(), companyID(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
		if err := WriteCSV(w, orders); err != nil {
			h.logger.Error("csv export failed", slog.String("error", err.Error()))
		}
	case "", "excel":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="orders.xlsx"`)
		if err := WriteXLSX(w, orders); err != nil {
			h.logger.Error("xlsx export failed", slog.String("error", err.Error()))
		}
	default:
		httpx.RespondError(w, fmt.Errorf("%w: unknown export format %q", httpx.ErrUnprocessable, format))
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpdateOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	resp, err := h.service.Update(r.Context(), companyID(r), chi.URLParam(r, "id"), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	var req AssignOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	order, err := h.service.Assign(r.Context(), companyID(r), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), companyID(r), chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func (h *Handler) handleCustomerOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListByCustomer(r.Context(), companyID(r), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	orders, err := h.service.Deliveries(r.Context(), user.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if orders == nil {
		orders = []Order{}
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) handleMarkDelivered(w http.ResponseWriter, r *http.Request) {
	var req MarkDeliveredRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	user := auth.UserFromContext(r.Context())
	order, err := h.service.MarkDelivered(r.Context(), user.ID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}
