package reconciliation

import (
	"time"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	dbtypes "github.com/paylinkhq/paylink-backend/pkg/db/types"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// AlertDraft is a detector's proposal for a new alert, before the dedup
// gate and persistence decide its fate.
type AlertDraft struct {
	OrganizationID uuid.UUID
	Type           enums.AlertType
	Severity       enums.AlertSeverity
	Title          string
	Description    string
	ResourceID     string
	ResourceType   enums.AlertResourceType
	Metadata       dbtypes.Metadata
}

// DedupKey derives the deterministic identity for this draft.
func (d AlertDraft) DedupKey() string {
	return models.AlertDedupKey(d.Type, d.ResourceID)
}

func (d AlertDraft) toModel() *models.ReconciliationAlert {
	metadata := d.Metadata
	if metadata == nil {
		metadata = dbtypes.Metadata{}
	}
	return &models.ReconciliationAlert{
		OrganizationID: d.OrganizationID,
		DedupKey:       d.DedupKey(),
		Type:           d.Type,
		Severity:       d.Severity,
		Title:          d.Title,
		Description:    d.Description,
		ResourceID:     d.ResourceID,
		ResourceType:   d.ResourceType,
		Metadata:       metadata,
	}
}

// Stats summarizes the unresolved alert backlog and run cadence.
type Stats struct {
	OrphanedTransactions int64     `json:"orphanedTransactions"`
	MissingPaymentLinks  int64     `json:"missingPaymentLinks"`
	WebhookDelayAlerts   int64     `json:"webhookDelayAlerts"`
	TotalIssues          int64     `json:"totalIssues"`
	LastRunAt            time.Time `json:"lastRunAt"`
	NextRunAt            time.Time `json:"nextRunAt"`
}

// RunFailure records a non-fatal failure absorbed during a run.
type RunFailure struct {
	Stage    string `json:"stage"`
	Detector string `json:"detector,omitempty"`
	DedupKey string `json:"dedupKey,omitempty"`
	Reason   string `json:"reason"`
}

// Failure stages.
const (
	FailureStageDetection   = "detection"
	FailureStagePersistence = "persistence"
	FailureStageStats       = "stats"
)

// RunResult is the outcome of one reconciliation run. It is always
// well-formed: a run that loses every detector and every write still
// produces an empty alert list and a zeroed stats snapshot.
type RunResult struct {
	Alerts   []models.ReconciliationAlert `json:"alerts"`
	Stats    Stats                        `json:"stats"`
	Failures []RunFailure                 `json:"failures,omitempty"`
}

// HistoryParams configures pagination over resolved alerts.
type HistoryParams struct {
	OrganizationID uuid.UUID
	Limit          int
	Cursor         string
}

// HistoryResult wraps resolved alerts and the cursor for the next page.
type HistoryResult struct {
	Items  []models.ReconciliationAlert `json:"items"`
	Cursor string                       `json:"cursor"`
}
