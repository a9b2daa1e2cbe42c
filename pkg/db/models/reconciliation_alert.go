package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/paylinkhq/paylink-backend/pkg/db/types"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// ReconciliationAlert records a detected divergence between payment record streams.
// At most one unresolved alert may exist per dedup key; resolved alerts are
// immutable history and are never deleted.
type ReconciliationAlert struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID               `gorm:"column:organization_id;type:uuid;not null" json:"organizationId"`
	DedupKey       string                  `gorm:"column:dedup_key;not null" json:"dedupKey"`
	Type           enums.AlertType         `gorm:"column:type;type:alert_type;not null" json:"type"`
	Severity       enums.AlertSeverity     `gorm:"column:severity;type:alert_severity;not null" json:"severity"`
	Title          string                  `gorm:"column:title;not null" json:"title"`
	Description    string                  `gorm:"column:description;not null" json:"description"`
	ResourceID     string                  `gorm:"column:resource_id;not null" json:"resourceId"`
	ResourceType   enums.AlertResourceType `gorm:"column:resource_type;not null" json:"resourceType"`
	Metadata       dbtypes.Metadata        `gorm:"column:metadata;type:jsonb" json:"metadata"`
	Resolved       bool                    `gorm:"column:resolved;not null;default:false" json:"resolved"`
	ResolvedAt     *time.Time              `gorm:"column:resolved_at" json:"resolvedAt,omitempty"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// AlertDedupKey derives the deterministic identity for an alert candidate.
// Two runs racing over the same underlying condition compute the same key.
func AlertDedupKey(alertType enums.AlertType, resourceID string) string {
	return fmt.Sprintf("%s_%s", alertType, resourceID)
}
