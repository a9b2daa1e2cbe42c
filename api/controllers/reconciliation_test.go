package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/api/middleware"
	"github.com/paylinkhq/paylink-backend/internal/reconciliation"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/types"
)

type fakeReconciliationService struct {
	runFn     func(ctx context.Context) *reconciliation.RunResult
	activeFn  func(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error)
	historyFn func(ctx context.Context, params reconciliation.HistoryParams) (*reconciliation.HistoryResult, error)
	resolveFn func(ctx context.Context, alertID uuid.UUID, reason string) bool
	statsFn   func(ctx context.Context, orgID uuid.UUID) (*reconciliation.Stats, error)
	cleanupFn func(ctx context.Context) (int64, error)
}

func (f *fakeReconciliationService) RunReconciliation(ctx context.Context) *reconciliation.RunResult {
	if f.runFn != nil {
		return f.runFn(ctx)
	}
	return &reconciliation.RunResult{}
}

func (f *fakeReconciliationService) GetActiveAlerts(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error) {
	if f.activeFn != nil {
		return f.activeFn(ctx, orgID, limit)
	}
	return nil, nil
}

func (f *fakeReconciliationService) GetAlertHistory(ctx context.Context, params reconciliation.HistoryParams) (*reconciliation.HistoryResult, error) {
	if f.historyFn != nil {
		return f.historyFn(ctx, params)
	}
	return &reconciliation.HistoryResult{}, nil
}

func (f *fakeReconciliationService) ResolveAlert(ctx context.Context, alertID uuid.UUID, reason string) bool {
	if f.resolveFn != nil {
		return f.resolveFn(ctx, alertID, reason)
	}
	return false
}

func (f *fakeReconciliationService) GetStats(ctx context.Context, orgID uuid.UUID) (*reconciliation.Stats, error) {
	if f.statsFn != nil {
		return f.statsFn(ctx, orgID)
	}
	return &reconciliation.Stats{}, nil
}

func (f *fakeReconciliationService) CleanupStaleAlerts(ctx context.Context) (int64, error) {
	if f.cleanupFn != nil {
		return f.cleanupFn(ctx)
	}
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test"})
}

func withOrg(r *http.Request, orgID uuid.UUID) *http.Request {
	return r.WithContext(middleware.WithOrgID(r.Context(), orgID.String()))
}

func TestTriggerReconciliation(t *testing.T) {
	svc := &fakeReconciliationService{
		runFn: func(ctx context.Context) *reconciliation.RunResult {
			return &reconciliation.RunResult{
				Alerts: []models.ReconciliationAlert{{ID: uuid.New()}},
			}
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/run", nil)
	rec := httptest.NewRecorder()
	TriggerReconciliation(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body types.SuccessEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestListActiveAlertsRequiresOrgContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/alerts", nil)
	rec := httptest.NewRecorder()
	ListActiveAlerts(&fakeReconciliationService{}, testLogger())(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestListActiveAlertsPassesLimit(t *testing.T) {
	orgID := uuid.New()
	var gotOrg uuid.UUID
	var gotLimit int
	svc := &fakeReconciliationService{
		activeFn: func(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error) {
			gotOrg = orgID
			gotLimit = limit
			return []models.ReconciliationAlert{}, nil
		},
	}

	req := withOrg(httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/alerts?limit=25", nil), orgID)
	rec := httptest.NewRecorder()
	ListActiveAlerts(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotOrg != orgID {
		t.Fatalf("expected org %s, got %s", orgID, gotOrg)
	}
	if gotLimit != 25 {
		t.Fatalf("expected limit 25, got %d", gotLimit)
	}
}

func TestListActiveAlertsRejectsBadLimit(t *testing.T) {
	req := withOrg(httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/alerts?limit=9999", nil), uuid.New())
	rec := httptest.NewRecorder()
	ListActiveAlerts(&fakeReconciliationService{}, testLogger())(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestResolveAlert(t *testing.T) {
	alertID := uuid.New()
	var gotReason string
	svc := &fakeReconciliationService{
		resolveFn: func(ctx context.Context, id uuid.UUID, reason string) bool {
			if id != alertID {
				t.Fatalf("expected alert %s, got %s", alertID, id)
			}
			gotReason = reason
			return true
		},
	}

	router := chi.NewRouter()
	router.Post("/alerts/{alertId}/resolve", ResolveAlert(svc, testLogger()))

	payload := strings.NewReader(`{"reason":"manually verified"}`)
	req := httptest.NewRequest(http.MethodPost, "/alerts/"+alertID.String()+"/resolve", payload)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotReason != "manually verified" {
		t.Fatalf("unexpected reason %q", gotReason)
	}
}

func TestResolveAlertNotFound(t *testing.T) {
	svc := &fakeReconciliationService{
		resolveFn: func(ctx context.Context, id uuid.UUID, reason string) bool {
			return false
		},
	}

	router := chi.NewRouter()
	router.Post("/alerts/{alertId}/resolve", ResolveAlert(svc, testLogger()))

	req := httptest.NewRequest(http.MethodPost, "/alerts/"+uuid.NewString()+"/resolve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestResolveAlertInvalidID(t *testing.T) {
	router := chi.NewRouter()
	router.Post("/alerts/{alertId}/resolve", ResolveAlert(&fakeReconciliationService{}, testLogger()))

	req := httptest.NewRequest(http.MethodPost, "/alerts/not-a-uuid/resolve", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestReconciliationStats(t *testing.T) {
	svc := &fakeReconciliationService{
		statsFn: func(ctx context.Context, orgID uuid.UUID) (*reconciliation.Stats, error) {
			return &reconciliation.Stats{TotalIssues: 6}, nil
		},
	}

	req := withOrg(httptest.NewRequest(http.MethodGet, "/api/v1/reconciliation/stats", nil), uuid.New())
	rec := httptest.NewRecorder()
	ReconciliationStats(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data reconciliation.Stats `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.TotalIssues != 6 {
		t.Fatalf("expected 6 issues, got %d", body.Data.TotalIssues)
	}
}

func TestCleanupStaleAlerts(t *testing.T) {
	svc := &fakeReconciliationService{
		cleanupFn: func(ctx context.Context) (int64, error) {
			return 12, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconciliation/cleanup", nil)
	rec := httptest.NewRecorder()
	CleanupStaleAlerts(svc, testLogger())(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
