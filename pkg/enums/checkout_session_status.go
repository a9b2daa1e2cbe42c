package enums

// CheckoutSessionStatus tracks the lifecycle of a hosted checkout session.
type CheckoutSessionStatus string

const (
	CheckoutSessionStatusOpen      CheckoutSessionStatus = "open"
	CheckoutSessionStatusCompleted CheckoutSessionStatus = "completed"
	CheckoutSessionStatusExpired   CheckoutSessionStatus = "expired"
)

// String implements fmt.Stringer.
func (c CheckoutSessionStatus) String() string {
	return string(c)
}
