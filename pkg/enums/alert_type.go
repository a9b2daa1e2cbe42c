package enums

import "fmt"

// AlertType classifies the reconciliation issue an alert reports.
type AlertType string

const (
	AlertTypeOrphanedTransaction AlertType = "orphaned_transaction"
	AlertTypeMissingPaymentLink  AlertType = "missing_payment_link"
	AlertTypeWebhookDeliveryLag  AlertType = "webhook_delivery_lag"
)

var validAlertTypes = []AlertType{
	AlertTypeOrphanedTransaction,
	AlertTypeMissingPaymentLink,
	AlertTypeWebhookDeliveryLag,
}

// String implements fmt.Stringer.
func (a AlertType) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AlertType.
func (a AlertType) IsValid() bool {
	for _, candidate := range validAlertTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAlertType converts raw input into an AlertType.
func ParseAlertType(value string) (AlertType, error) {
	for _, candidate := range validAlertTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert type %q", value)
}
