package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// CheckoutSession is a hosted checkout attempt that should settle into
// one or more transactions once completed.
type CheckoutSession struct {
	ID             uuid.UUID                   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID uuid.UUID                   `gorm:"column:organization_id;type:uuid;not null"`
	Status         enums.CheckoutSessionStatus `gorm:"column:status;type:checkout_session_status;not null;default:'open'"`
	CompletedAt    *time.Time                  `gorm:"column:completed_at"`
	Transactions   []Transaction               `gorm:"foreignKey:CheckoutSessionID"`
	CreatedAt      time.Time                   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time                   `gorm:"column:updated_at;autoUpdateTime"`
}
