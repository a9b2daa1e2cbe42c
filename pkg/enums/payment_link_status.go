package enums

// PaymentLinkStatus tracks the lifecycle of a payment link.
type PaymentLinkStatus string

const (
	PaymentLinkStatusOpen      PaymentLinkStatus = "open"
	PaymentLinkStatusCompleted PaymentLinkStatus = "completed"
	PaymentLinkStatusExpired   PaymentLinkStatus = "expired"
)

// String implements fmt.Stringer.
func (p PaymentLinkStatus) String() string {
	return string(p)
}
