package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// Transaction is a captured payment settlement. The reconciliation engine
// only reads transactions, it never mutates them.
type Transaction struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrganizationID    uuid.UUID               `gorm:"column:organization_id;type:uuid;not null"`
	Status            enums.TransactionStatus `gorm:"column:status;type:transaction_status;not null;default:'pending'"`
	PaymentLinkID     *uuid.UUID              `gorm:"column:payment_link_id;type:uuid"`
	CheckoutSessionID *uuid.UUID              `gorm:"column:checkout_session_id;type:uuid"`
	Amount            decimal.Decimal         `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency          string                  `gorm:"column:currency;not null;default:'usd'"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
