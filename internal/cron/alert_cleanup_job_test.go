package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

type fakeAlertCleaner struct {
	resolved int64
	err      error
	called   int
}

func (f *fakeAlertCleaner) CleanupStaleAlerts(ctx context.Context) (int64, error) {
	f.called++
	if f.err != nil {
		return 0, f.err
	}
	return f.resolved, nil
}

func TestAlertCleanupJobResolvesStaleAlerts(t *testing.T) {
	cleaner := &fakeAlertCleaner{resolved: 12}
	job, err := NewAlertCleanupJob(AlertCleanupJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Service: cleaner,
	})
	if err != nil {
		t.Fatalf("NewAlertCleanupJob: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cleaner.called != 1 {
		t.Fatalf("expected one sweep, got %d", cleaner.called)
	}
	if job.Name() != "alert-cleanup" {
		t.Fatalf("unexpected job name %q", job.Name())
	}
}

func TestAlertCleanupJobPropagatesErrors(t *testing.T) {
	cleaner := &fakeAlertCleaner{err: errors.New("boom")}
	job, err := NewAlertCleanupJob(AlertCleanupJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Service: cleaner,
	})
	if err != nil {
		t.Fatalf("NewAlertCleanupJob: %v", err)
	}

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
