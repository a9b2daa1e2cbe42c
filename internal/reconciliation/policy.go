package reconciliation

import (
	"time"

	"github.com/paylinkhq/paylink-backend/pkg/config"
)

const (
	defaultTransactionStaleness = 30 * time.Minute
	defaultPaymentLinkStaleness = 90 * time.Minute
	defaultWebhookStaleness     = 15 * time.Minute
	defaultHighSeverityAttempts = 5
	defaultMaxAlertsPerType     = 50
	defaultAlertRetention       = 7 * 24 * time.Hour
	defaultRunInterval          = 15 * time.Minute
	defaultDetectorTimeout      = 10 * time.Second
)

// Policy bundles every detection window and bound the engine applies.
// Payment links get a longer window than transactions because link
// completion can legitimately lag settlement.
type Policy struct {
	TransactionStaleness time.Duration
	PaymentLinkStaleness time.Duration
	WebhookStaleness     time.Duration

	// WebhookHighSeverityAttempts is the attempt count at which a delayed
	// webhook escalates to high severity; below it the alert stays medium.
	WebhookHighSeverityAttempts int

	MaxAlertsPerType int
	AlertRetention   time.Duration
	RunInterval      time.Duration
	DetectorTimeout  time.Duration
}

// DefaultPolicy returns the production detection policy.
func DefaultPolicy() Policy {
	return Policy{
		TransactionStaleness:        defaultTransactionStaleness,
		PaymentLinkStaleness:        defaultPaymentLinkStaleness,
		WebhookStaleness:            defaultWebhookStaleness,
		WebhookHighSeverityAttempts: defaultHighSeverityAttempts,
		MaxAlertsPerType:            defaultMaxAlertsPerType,
		AlertRetention:              defaultAlertRetention,
		RunInterval:                 defaultRunInterval,
		DetectorTimeout:             defaultDetectorTimeout,
	}
}

// PolicyFromConfig builds a Policy from environment configuration,
// falling back to defaults for unset or non-positive values.
func PolicyFromConfig(cfg config.ReconciliationConfig) Policy {
	policy := DefaultPolicy()
	if cfg.TransactionStaleness > 0 {
		policy.TransactionStaleness = cfg.TransactionStaleness
	}
	if cfg.PaymentLinkStaleness > 0 {
		policy.PaymentLinkStaleness = cfg.PaymentLinkStaleness
	}
	if cfg.WebhookStaleness > 0 {
		policy.WebhookStaleness = cfg.WebhookStaleness
	}
	if cfg.WebhookHighSeverityAttempts > 0 {
		policy.WebhookHighSeverityAttempts = cfg.WebhookHighSeverityAttempts
	}
	if cfg.MaxAlertsPerType > 0 {
		policy.MaxAlertsPerType = cfg.MaxAlertsPerType
	}
	if cfg.AlertRetention > 0 {
		policy.AlertRetention = cfg.AlertRetention
	}
	if cfg.RunInterval > 0 {
		policy.RunInterval = cfg.RunInterval
	}
	if cfg.DetectorTimeout > 0 {
		policy.DetectorTimeout = cfg.DetectorTimeout
	}
	return policy
}
