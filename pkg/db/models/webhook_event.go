package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is an inbound processor notification awaiting processing.
type WebhookEvent struct {
	ID                 uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID     uuid.UUID  `gorm:"column:organization_id;type:uuid;not null"`
	Provider           string     `gorm:"column:provider;not null"`
	EventType          string     `gorm:"column:event_type;not null"`
	Processed          bool       `gorm:"column:processed;not null;default:false"`
	ProcessingAttempts int        `gorm:"column:processing_attempts;not null;default:0"`
	FailureReason      *string    `gorm:"column:failure_reason"`
	LastProcessedAt    *time.Time `gorm:"column:last_processed_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
}
