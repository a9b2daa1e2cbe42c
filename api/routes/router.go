package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paylinkhq/paylink-backend/api/controllers"
	"github.com/paylinkhq/paylink-backend/api/middleware"
	"github.com/paylinkhq/paylink-backend/internal/reconciliation"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// RouterParams bundles the dependencies the HTTP surface needs.
type RouterParams struct {
	Config                *config.Config
	Logger                *logger.Logger
	ReconciliationService reconciliation.Service
	HealthDeps            map[string]controllers.Pinger
	MetricsHandler        http.Handler
}

// NewRouter assembles the API routes and middleware chain.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger
	svc := params.ReconciliationService

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.HealthDeps))
	})

	metricsHandler := params.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api/v1/reconciliation", func(r chi.Router) {
		// Run and cleanup operate platform-wide; the alert views are
		// tenant scoped and require the org header.
		r.Post("/run", controllers.TriggerReconciliation(svc, logg))
		r.Post("/cleanup", controllers.CleanupStaleAlerts(svc, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.OrgContext(logg))
			r.Get("/alerts", controllers.ListActiveAlerts(svc, logg))
			r.Get("/alerts/history", controllers.AlertHistory(svc, logg))
			r.Post("/alerts/{alertId}/resolve", controllers.ResolveAlert(svc, logg))
			r.Get("/stats", controllers.ReconciliationStats(svc, logg))
		})
	})

	return r
}
