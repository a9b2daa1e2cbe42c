package cron

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/paylinkhq/paylink-backend/internal/reconciliation"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// reconciliationRunner is the slice of the reconciliation service the
// scheduled run needs.
type reconciliationRunner interface {
	RunReconciliation(ctx context.Context) *reconciliation.RunResult
}

// ReconciliationJobParams configures the scheduled reconciliation run.
type ReconciliationJobParams struct {
	Logger  *logger.Logger
	Service reconciliationRunner
}

type reconciliationJob struct {
	logg    *logger.Logger
	service reconciliationRunner
}

// NewReconciliationJob builds the scheduled reconciliation run job.
func NewReconciliationJob(params ReconciliationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Service == nil {
		return nil, fmt.Errorf("reconciliation service required")
	}
	return &reconciliationJob{
		logg:    params.Logger,
		service: params.Service,
	}, nil
}

func (j *reconciliationJob) Name() string { return "reconciliation-run" }

func (j *reconciliationJob) Run(ctx context.Context) error {
	result := j.service.RunReconciliation(ctx)

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"alerts":       len(result.Alerts),
		"total_issues": result.Stats.TotalIssues,
		"failures":     len(result.Failures),
	})
	j.logg.Info(logCtx, "reconciliation run complete")

	// The run itself absorbs failures; surfacing them here lets the
	// worker's metrics and logs count a degraded cycle.
	var errs error
	for _, failure := range result.Failures {
		switch {
		case failure.Detector != "":
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %s", failure.Stage, failure.Detector, failure.Reason))
		case failure.DedupKey != "":
			errs = multierr.Append(errs, fmt.Errorf("%s %s: %s", failure.Stage, failure.DedupKey, failure.Reason))
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", failure.Stage, failure.Reason))
		}
	}
	return errs
}
