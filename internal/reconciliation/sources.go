package reconciliation

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// SourceRepository reads the payment records the detectors inspect.
// Every query is bounded by a staleness cutoff so a run never scans
// fresh rows that cannot yet qualify for an alert.
type SourceRepository interface {
	FindStaleCompletedTransactionsWithoutLink(ctx context.Context, cutoff time.Time) ([]models.Transaction, error)
	FindStaleCompletedPaymentLinksWithoutTransaction(ctx context.Context, cutoff time.Time) ([]models.PaymentLink, error)
	FindDelayedUnprocessedWebhookEvents(ctx context.Context, cutoff time.Time) ([]models.WebhookEvent, error)
	FindStaleCompletedCheckoutSessionsWithoutTransactions(ctx context.Context, cutoff time.Time) ([]models.CheckoutSession, error)
}

type sourceRepositoryImpl struct {
	db *gorm.DB
}

// NewSourceRepository returns a source reader bound to the provided database.
func NewSourceRepository(db *gorm.DB) SourceRepository {
	return &sourceRepositoryImpl{db: db}
}

func (r *sourceRepositoryImpl) FindStaleCompletedTransactionsWithoutLink(ctx context.Context, cutoff time.Time) ([]models.Transaction, error) {
	var txns []models.Transaction
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_link_id IS NULL AND created_at <= ?", enums.TransactionStatusCompleted, cutoff).
		Order("created_at ASC").
		Find(&txns).Error
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (r *sourceRepositoryImpl) FindStaleCompletedPaymentLinksWithoutTransaction(ctx context.Context, cutoff time.Time) ([]models.PaymentLink, error) {
	var links []models.PaymentLink
	err := r.db.WithContext(ctx).
		Where("status = ? AND transaction_id IS NULL AND completed_at IS NOT NULL AND completed_at <= ?", enums.PaymentLinkStatusCompleted, cutoff).
		Order("completed_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, err
	}
	return links, nil
}

func (r *sourceRepositoryImpl) FindDelayedUnprocessedWebhookEvents(ctx context.Context, cutoff time.Time) ([]models.WebhookEvent, error) {
	var events []models.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("processed = ? AND processing_attempts >= 1 AND created_at <= ?", false, cutoff).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *sourceRepositoryImpl) FindStaleCompletedCheckoutSessionsWithoutTransactions(ctx context.Context, cutoff time.Time) ([]models.CheckoutSession, error) {
	var sessions []models.CheckoutSession
	err := r.db.WithContext(ctx).
		Preload("Transactions").
		Where("status = ? AND completed_at IS NOT NULL AND completed_at <= ?", enums.CheckoutSessionStatusCompleted, cutoff).
		Where("NOT EXISTS (SELECT 1 FROM transactions WHERE transactions.checkout_session_id = checkout_sessions.id)").
		Order("completed_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
