package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// PaymentLink is a shareable payment request that settles into a transaction.
type PaymentLink struct {
	ID             uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID               `gorm:"column:organization_id;type:uuid;not null"`
	Status         enums.PaymentLinkStatus `gorm:"column:status;type:payment_link_status;not null;default:'open'"`
	TransactionID  *uuid.UUID              `gorm:"column:transaction_id;type:uuid"`
	CompletedAt    *time.Time              `gorm:"column:completed_at"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
