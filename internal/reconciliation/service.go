package reconciliation

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/pkg/db"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/metrics"
	"github.com/paylinkhq/paylink-backend/pkg/pagination"
)

// Service runs reconciliation and manages the resulting alerts.
//
// RunReconciliation never returns an error: detector reads, alert writes,
// and the stats snapshot each degrade independently, and whatever failed
// is reported inside the result.
type Service interface {
	RunReconciliation(ctx context.Context) *RunResult
	GetActiveAlerts(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error)
	GetAlertHistory(ctx context.Context, params HistoryParams) (*HistoryResult, error)
	ResolveAlert(ctx context.Context, alertID uuid.UUID, reason string) bool
	GetStats(ctx context.Context, orgID uuid.UUID) (*Stats, error)
	CleanupStaleAlerts(ctx context.Context) (int64, error)
}

// ServiceParams wires reconciliation dependencies. Metrics and Notifier
// are optional; everything else is required.
type ServiceParams struct {
	Logger   *logger.Logger
	Repo     Repository
	Sources  SourceRepository
	Policy   Policy
	Metrics  *metrics.ReconciliationMetrics
	Notifier Notifier
	Now      func() time.Time
}

type service struct {
	logg     *logger.Logger
	repo     Repository
	sources  SourceRepository
	policy   Policy
	metrics  *metrics.ReconciliationMetrics
	notifier Notifier
	now      func() time.Time
}

// NewService wires reconciliation dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "alert repository required")
	}
	if params.Sources == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "source repository required")
	}
	if params.Policy == (Policy{}) {
		params.Policy = DefaultPolicy()
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		logg:     params.Logger,
		repo:     params.Repo,
		sources:  params.Sources,
		policy:   params.Policy,
		metrics:  params.Metrics,
		notifier: params.Notifier,
		now:      params.Now,
	}, nil
}

type detectorRun struct {
	name string
	run  func(ctx context.Context) ([]AlertDraft, error)
}

func (s *service) RunReconciliation(ctx context.Context) *RunResult {
	started := s.now().UTC()
	result := &RunResult{Alerts: []models.ReconciliationAlert{}}

	drafts := s.collectDrafts(ctx, started, result)
	created := s.persistDrafts(ctx, drafts, result)

	if s.notifier != nil && len(created) > 0 {
		// Fan-out is best effort; failures are logged inside the notifier.
		_ = s.notifier.PublishAlerts(ctx, created)
	}

	stats, err := s.computeStats(ctx, uuid.Nil, started)
	if err != nil {
		s.logg.Error(ctx, "reconciliation stats snapshot failed", err)
		result.Failures = append(result.Failures, RunFailure{
			Stage:  FailureStageStats,
			Reason: err.Error(),
		})
		stats = &Stats{LastRunAt: started, NextRunAt: started.Add(s.policy.RunInterval)}
	}
	result.Stats = *stats

	s.metrics.ObserveRunDuration(s.now().UTC().Sub(started))

	lctx := s.logg.WithFields(ctx, map[string]any{
		"alerts":   len(result.Alerts),
		"created":  len(created),
		"failures": len(result.Failures),
	})
	s.logg.Info(lctx, "reconciliation run finished")
	return result
}

func (s *service) collectDrafts(ctx context.Context, now time.Time, result *RunResult) []AlertDraft {
	runs := []detectorRun{
		{
			name: DetectorOrphanedTransactions,
			run: func(ctx context.Context) ([]AlertDraft, error) {
				txns, err := s.sources.FindStaleCompletedTransactionsWithoutLink(ctx, now.Add(-s.policy.TransactionStaleness))
				if err != nil {
					return nil, err
				}
				return detectOrphanedTransactions(s.policy, now, txns), nil
			},
		},
		{
			name: DetectorOrphanedCheckoutSessions,
			run: func(ctx context.Context) ([]AlertDraft, error) {
				sessions, err := s.sources.FindStaleCompletedCheckoutSessionsWithoutTransactions(ctx, now.Add(-s.policy.TransactionStaleness))
				if err != nil {
					return nil, err
				}
				return detectOrphanedCheckoutSessions(s.policy, now, sessions), nil
			},
		},
		{
			name: DetectorMissingPaymentLinks,
			run: func(ctx context.Context) ([]AlertDraft, error) {
				links, err := s.sources.FindStaleCompletedPaymentLinksWithoutTransaction(ctx, now.Add(-s.policy.PaymentLinkStaleness))
				if err != nil {
					return nil, err
				}
				return detectMissingPaymentLinks(s.policy, now, links), nil
			},
		},
		{
			name: DetectorDelayedWebhooks,
			run: func(ctx context.Context) ([]AlertDraft, error) {
				events, err := s.sources.FindDelayedUnprocessedWebhookEvents(ctx, now.Add(-s.policy.WebhookStaleness))
				if err != nil {
					return nil, err
				}
				return detectDelayedWebhooks(s.policy, now, events), nil
			},
		},
	}

	var drafts []AlertDraft
	for _, detector := range runs {
		dctx, cancel := context.WithTimeout(ctx, s.policy.DetectorTimeout)
		found, err := detector.run(dctx)
		cancel()
		if err != nil {
			s.metrics.IncDetectorFailure(detector.name)
			lctx := s.logg.WithField(ctx, "detector", detector.name)
			s.logg.Error(lctx, "reconciliation detector failed", err)
			result.Failures = append(result.Failures, RunFailure{
				Stage:    FailureStageDetection,
				Detector: detector.name,
				Reason:   err.Error(),
			})
			continue
		}
		drafts = append(drafts, found...)
	}
	return drafts
}

// persistDrafts pushes drafts through the dedup gate and the per-type cap,
// appending every emitted alert (new or pre-existing) to the result. It
// returns only the freshly created alerts.
func (s *service) persistDrafts(ctx context.Context, drafts []AlertDraft, result *RunResult) []models.ReconciliationAlert {
	created := make([]models.ReconciliationAlert, 0, len(drafts))
	createdByType := map[enums.AlertType]int{}
	emittedByType := map[enums.AlertType]int{}

	for _, draft := range drafts {
		if emittedByType[draft.Type] >= s.policy.MaxAlertsPerType {
			// Skipped candidates stay eligible for the next run.
			continue
		}

		key := draft.DedupKey()
		existing, err := s.repo.FindUnresolvedByDedupKey(ctx, key)
		if err != nil {
			s.recordPersistenceFailure(ctx, result, key, err)
			continue
		}
		if existing != nil {
			result.Alerts = append(result.Alerts, *existing)
			emittedByType[draft.Type]++
			continue
		}

		alert := draft.toModel()
		if err := s.repo.Create(ctx, alert); err != nil {
			if db.IsUniqueViolation(err, "uq_reconciliation_alerts_unresolved_dedup") {
				// A concurrent run won the insert; the alert exists, so
				// the dedup invariant holds and there is nothing to do.
				lctx := s.logg.WithField(ctx, "dedup_key", key)
				s.logg.Info(lctx, "alert already created by concurrent run")
				continue
			}
			s.recordPersistenceFailure(ctx, result, key, err)
			continue
		}

		result.Alerts = append(result.Alerts, *alert)
		created = append(created, *alert)
		createdByType[draft.Type]++
		emittedByType[draft.Type]++
	}

	for alertType, count := range createdByType {
		s.metrics.IncAlertsCreated(alertType.String(), count)
	}
	return created
}

func (s *service) recordPersistenceFailure(ctx context.Context, result *RunResult, key string, err error) {
	lctx := s.logg.WithField(ctx, "dedup_key", key)
	s.logg.Error(lctx, "failed to persist reconciliation alert", err)
	result.Failures = append(result.Failures, RunFailure{
		Stage:    FailureStagePersistence,
		DedupKey: key,
		Reason:   err.Error(),
	})
}

func (s *service) GetActiveAlerts(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ReconciliationAlert, error) {
	if limit <= 0 {
		limit = s.policy.MaxAlertsPerType
	}
	alerts, err := s.repo.ListActive(ctx, orgID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active alerts")
	}
	return alerts, nil
}

func (s *service) GetAlertHistory(ctx context.Context, params HistoryParams) (*HistoryResult, error) {
	query := listResolvedParams{
		OrgID: params.OrganizationID,
		Limit: params.Limit,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.ListResolved(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alert history")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &HistoryResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) ResolveAlert(ctx context.Context, alertID uuid.UUID, reason string) bool {
	if alertID == uuid.Nil {
		return false
	}

	mark, err := s.repo.Resolve(ctx, alertID, reason, s.now().UTC())
	if err != nil {
		lctx := s.logg.WithField(ctx, "alert_id", alertID)
		s.logg.Error(lctx, "failed to resolve alert", err)
		return false
	}
	if !mark.Found {
		lctx := s.logg.WithField(ctx, "alert_id", alertID)
		s.logg.Warn(lctx, "alert not found")
		return false
	}
	return mark.Updated
}

func (s *service) GetStats(ctx context.Context, orgID uuid.UUID) (*Stats, error) {
	stats, err := s.computeStats(ctx, orgID, time.Time{})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconciliation stats")
	}
	return stats, nil
}

// computeStats counts the unresolved backlog per type. When lastRun is
// zero the cadence is derived from the most recent alert on record.
func (s *service) computeStats(ctx context.Context, orgID uuid.UUID, lastRun time.Time) (*Stats, error) {
	orphaned, err := s.repo.CountUnresolvedByType(ctx, orgID, enums.AlertTypeOrphanedTransaction)
	if err != nil {
		return nil, err
	}
	missing, err := s.repo.CountUnresolvedByType(ctx, orgID, enums.AlertTypeMissingPaymentLink)
	if err != nil {
		return nil, err
	}
	delayed, err := s.repo.CountUnresolvedByType(ctx, orgID, enums.AlertTypeWebhookDeliveryLag)
	if err != nil {
		return nil, err
	}

	if lastRun.IsZero() {
		lastRun = s.now().UTC()
		if recent, err := s.repo.FindMostRecent(ctx, orgID); err != nil {
			return nil, err
		} else if recent != nil {
			lastRun = recent.CreatedAt
		}
	}

	return &Stats{
		OrphanedTransactions: orphaned,
		MissingPaymentLinks:  missing,
		WebhookDelayAlerts:   delayed,
		TotalIssues:          orphaned + missing + delayed,
		LastRunAt:            lastRun,
		NextRunAt:            lastRun.Add(s.policy.RunInterval),
	}, nil
}

func (s *service) CleanupStaleAlerts(ctx context.Context) (int64, error) {
	now := s.now().UTC()
	count, err := s.repo.ResolveOlderThan(ctx, now.Add(-s.policy.AlertRetention), now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cleanup stale alerts")
	}
	if count > 0 {
		lctx := s.logg.WithField(ctx, "resolved", count)
		s.logg.Info(lctx, "auto-resolved stale alerts")
	}
	return count, nil
}
