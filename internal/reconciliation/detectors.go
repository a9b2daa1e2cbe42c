package reconciliation

import (
	"fmt"
	"time"

	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	dbtypes "github.com/paylinkhq/paylink-backend/pkg/db/types"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
)

// Detector names used in logs, metrics, and failure records.
const (
	DetectorOrphanedTransactions     = "orphaned_transactions"
	DetectorMissingPaymentLinks      = "missing_payment_links"
	DetectorDelayedWebhooks          = "delayed_webhooks"
	DetectorOrphanedCheckoutSessions = "orphaned_checkout_sessions"
)

// The detectors below re-check every predicate the source queries
// already filter on. Rows fetched under a racing update may no longer
// qualify by the time they are inspected, and a draft must never be
// built from a record that fails its own predicate. Staleness cutoffs
// are inclusive: a record aged exactly the threshold qualifies.

func detectOrphanedTransactions(policy Policy, now time.Time, txns []models.Transaction) []AlertDraft {
	cutoff := now.Add(-policy.TransactionStaleness)
	drafts := make([]AlertDraft, 0, len(txns))
	for _, txn := range txns {
		if txn.Status != enums.TransactionStatusCompleted || txn.PaymentLinkID != nil {
			continue
		}
		if txn.CreatedAt.After(cutoff) {
			continue
		}
		age := now.Sub(txn.CreatedAt).Round(time.Minute)
		drafts = append(drafts, AlertDraft{
			OrganizationID: txn.OrganizationID,
			Type:           enums.AlertTypeOrphanedTransaction,
			Severity:       enums.AlertSeverityHigh,
			Title:          "Orphaned completed transaction",
			Description: fmt.Sprintf(
				"Transaction %s completed %s ago but has no associated payment link",
				txn.ID, age,
			),
			ResourceID:   txn.ID.String(),
			ResourceType: enums.AlertResourceTransaction,
			Metadata: dbtypes.Metadata{
				"amount":    txn.Amount.String(),
				"currency":  txn.Currency,
				"createdAt": txn.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
	}
	return drafts
}

func detectOrphanedCheckoutSessions(policy Policy, now time.Time, sessions []models.CheckoutSession) []AlertDraft {
	cutoff := now.Add(-policy.TransactionStaleness)
	drafts := make([]AlertDraft, 0, len(sessions))
	for _, session := range sessions {
		if session.Status != enums.CheckoutSessionStatusCompleted || len(session.Transactions) > 0 {
			continue
		}
		if session.CompletedAt == nil || session.CompletedAt.After(cutoff) {
			continue
		}
		age := now.Sub(*session.CompletedAt).Round(time.Minute)
		drafts = append(drafts, AlertDraft{
			OrganizationID: session.OrganizationID,
			Type:           enums.AlertTypeOrphanedTransaction,
			Severity:       enums.AlertSeverityHigh,
			Title:          "Completed checkout session without transaction",
			Description: fmt.Sprintf(
				"Checkout session %s completed %s ago but produced no transaction",
				session.ID, age,
			),
			ResourceID:   session.ID.String(),
			ResourceType: enums.AlertResourceCheckoutSession,
			Metadata: dbtypes.Metadata{
				"completedAt": session.CompletedAt.UTC().Format(time.RFC3339),
			},
		})
	}
	return drafts
}

func detectMissingPaymentLinks(policy Policy, now time.Time, links []models.PaymentLink) []AlertDraft {
	cutoff := now.Add(-policy.PaymentLinkStaleness)
	drafts := make([]AlertDraft, 0, len(links))
	for _, link := range links {
		if link.Status != enums.PaymentLinkStatusCompleted || link.TransactionID != nil {
			continue
		}
		if link.CompletedAt == nil || link.CompletedAt.After(cutoff) {
			continue
		}
		age := now.Sub(*link.CompletedAt).Round(time.Minute)
		drafts = append(drafts, AlertDraft{
			OrganizationID: link.OrganizationID,
			Type:           enums.AlertTypeMissingPaymentLink,
			Severity:       enums.AlertSeverityMedium,
			Title:          "Completed payment link without transaction",
			Description: fmt.Sprintf(
				"Payment link %s completed %s ago but no transaction was recorded",
				link.ID, age,
			),
			ResourceID:   link.ID.String(),
			ResourceType: enums.AlertResourcePaymentLink,
			Metadata: dbtypes.Metadata{
				"completedAt": link.CompletedAt.UTC().Format(time.RFC3339),
			},
		})
	}
	return drafts
}

func detectDelayedWebhooks(policy Policy, now time.Time, events []models.WebhookEvent) []AlertDraft {
	cutoff := now.Add(-policy.WebhookStaleness)
	drafts := make([]AlertDraft, 0, len(events))
	for _, event := range events {
		if event.Processed || event.ProcessingAttempts < 1 {
			continue
		}
		if event.CreatedAt.After(cutoff) {
			continue
		}
		severity := enums.AlertSeverityMedium
		if event.ProcessingAttempts >= policy.WebhookHighSeverityAttempts {
			severity = enums.AlertSeverityHigh
		}
		age := now.Sub(event.CreatedAt).Round(time.Minute)
		metadata := dbtypes.Metadata{
			"provider":  event.Provider,
			"eventType": event.EventType,
			"attempts":  event.ProcessingAttempts,
		}
		if event.FailureReason != nil {
			metadata["failureReason"] = *event.FailureReason
		}
		drafts = append(drafts, AlertDraft{
			OrganizationID: event.OrganizationID,
			Type:           enums.AlertTypeWebhookDeliveryLag,
			Severity:       severity,
			Title:          "Webhook event stuck unprocessed",
			Description: fmt.Sprintf(
				"Webhook event %s (%s) received %s ago remains unprocessed after %d attempts",
				event.ID, event.EventType, age, event.ProcessingAttempts,
			),
			ResourceID:   event.ID.String(),
			ResourceType: enums.AlertResourceWebhook,
			Metadata:     metadata,
		})
	}
	return drafts
}
