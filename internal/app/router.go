package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/Lucaamst/farmy/internal/auth"
	"github.com/Lucaamst/farmy/internal/companies"
	"github.com/Lucaamst/farmy/internal/couriers"
	"github.com/Lucaamst/farmy/internal/customers"
	"github.com/Lucaamst/farmy/internal/observability"
	"github.com/Lucaamst/farmy/internal/orders"
	"github.com/Lucaamst/farmy/internal/security"
	"github.com/Lucaamst/farmy/internal/sms"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	AuthHandler      *auth.Handler
	AuthMiddleware   auth.Middleware
	CompaniesHandler *companies.Handler
	CouriersHandler  *couriers.Handler
	CustomersHandler *customers.Handler
	OrdersHandler    *orders.Handler
	SMSHandler       *sms.Handler
	SecurityHandler  *security.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with the API defaults. The whole
// surface lives under /api; everything but login and the probes requires a
// bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(httprate.Limit(10, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
			params.AuthHandler.MountRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.Authenticate)
			params.CompaniesHandler.MountRoutes(r, params.AuthMiddleware)
			params.CouriersHandler.MountRoutes(r, params.AuthMiddleware)
			params.CustomersHandler.MountRoutes(r, params.AuthMiddleware)
			params.OrdersHandler.MountRoutes(r, params.AuthMiddleware)
			params.SMSHandler.MountRoutes(r, params.AuthMiddleware)
			params.SecurityHandler.MountRoutes(r)
		})
	})

	return r
}
