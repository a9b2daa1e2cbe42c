package cron

import (
	"context"
	"testing"

	"go.uber.org/multierr"

	"github.com/paylinkhq/paylink-backend/internal/reconciliation"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

type fakeReconciliationService struct {
	result *reconciliation.RunResult
	called int
}

func (f *fakeReconciliationService) RunReconciliation(ctx context.Context) *reconciliation.RunResult {
	f.called++
	return f.result
}

func TestReconciliationJobCleanRun(t *testing.T) {
	svc := &fakeReconciliationService{result: &reconciliation.RunResult{}}
	job, err := NewReconciliationJob(ReconciliationJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Service: svc,
	})
	if err != nil {
		t.Fatalf("NewReconciliationJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if svc.called != 1 {
		t.Fatalf("expected one run, got %d", svc.called)
	}
	if job.Name() != "reconciliation-run" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}

func TestReconciliationJobSurfacesRunFailures(t *testing.T) {
	svc := &fakeReconciliationService{result: &reconciliation.RunResult{
		Failures: []reconciliation.RunFailure{
			{Stage: reconciliation.FailureStageDetection, Detector: "delayed_webhooks", Reason: "timeout"},
			{Stage: reconciliation.FailureStagePersistence, DedupKey: "webhook_delivery_lag_abc", Reason: "write failed"},
		},
	}}
	job, err := NewReconciliationJob(ReconciliationJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Service: svc,
	})
	if err != nil {
		t.Fatalf("NewReconciliationJob: %v", err)
	}

	runErr := job.Run(context.Background())
	if runErr == nil {
		t.Fatal("expected aggregated error")
	}
	if got := len(multierr.Errors(runErr)); got != 2 {
		t.Fatalf("expected 2 aggregated errors, got %d", got)
	}
}

func TestNewReconciliationJobValidation(t *testing.T) {
	if _, err := NewReconciliationJob(ReconciliationJobParams{Service: &fakeReconciliationService{}}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewReconciliationJob(ReconciliationJobParams{Logger: logger.New(logger.Options{ServiceName: "test"})}); err == nil {
		t.Fatal("expected error for missing service")
	}
}
