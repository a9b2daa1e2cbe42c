package cron

import (
	"context"
	"fmt"

	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// alertCleaner is the slice of the reconciliation service the retention
// sweep needs.
type alertCleaner interface {
	CleanupStaleAlerts(ctx context.Context) (int64, error)
}

// AlertCleanupJobParams configures the stale alert retention sweep.
type AlertCleanupJobParams struct {
	Logger  *logger.Logger
	Service alertCleaner
}

type alertCleanupJob struct {
	logg    *logger.Logger
	service alertCleaner
}

// NewAlertCleanupJob builds the stale alert retention sweep job.
func NewAlertCleanupJob(params AlertCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Service == nil {
		return nil, fmt.Errorf("reconciliation service required")
	}
	return &alertCleanupJob{
		logg:    params.Logger,
		service: params.Service,
	}, nil
}

func (j *alertCleanupJob) Name() string { return "alert-cleanup" }

func (j *alertCleanupJob) Run(ctx context.Context) error {
	resolved, err := j.service.CleanupStaleAlerts(ctx)
	if err != nil {
		return fmt.Errorf("alert cleanup: %w", err)
	}

	logCtx := j.logg.WithField(ctx, "rows_resolved", resolved)
	j.logg.Info(logCtx, "alert cleanup complete")
	return nil
}
