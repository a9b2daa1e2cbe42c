package enums

// AlertResourceType names the source stream an alert points back into.
type AlertResourceType string

const (
	AlertResourceTransaction     AlertResourceType = "transaction"
	AlertResourcePaymentLink     AlertResourceType = "payment_link"
	AlertResourceWebhook         AlertResourceType = "webhook"
	AlertResourceCheckoutSession AlertResourceType = "checkout_session"
)

// String implements fmt.Stringer.
func (a AlertResourceType) String() string {
	return string(a)
}
