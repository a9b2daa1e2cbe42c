package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/api/controllers"
	"github.com/paylinkhq/paylink-backend/internal/reconciliation"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubReconciliationService struct{}

func (stubReconciliationService) RunReconciliation(ctx context.Context) *reconciliation.RunResult {
	return &reconciliation.RunResult{}
}

func (stubReconciliationService) GetActiveAlerts(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error) {
	return []models.ReconciliationAlert{}, nil
}

func (stubReconciliationService) GetAlertHistory(ctx context.Context, params reconciliation.HistoryParams) (*reconciliation.HistoryResult, error) {
	return &reconciliation.HistoryResult{}, nil
}

func (stubReconciliationService) ResolveAlert(ctx context.Context, alertID uuid.UUID, reason string) bool {
	return true
}

func (stubReconciliationService) GetStats(ctx context.Context, orgID uuid.UUID) (*reconciliation.Stats, error) {
	return &reconciliation.Stats{}, nil
}

func (stubReconciliationService) CleanupStaleAlerts(ctx context.Context) (int64, error) {
	return 0, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(RouterParams{
		Config:                cfg,
		Logger:                logger.New(logger.Options{ServiceName: "test"}),
		ReconciliationService: stubReconciliationService{},
		HealthDeps:            map[string]controllers.Pinger{"database": stubPinger{}},
	})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouterMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterAlertsRequireOrgHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/alerts", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without org header, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/alerts", nil)
	req.Header.Set("X-Org-ID", uuid.NewString())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with org header, got %d", rec.Code)
	}
}

func TestRouterTriggerRun(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/run", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
