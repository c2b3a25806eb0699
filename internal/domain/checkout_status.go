package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle       CheckoutStatus = "IDLE"
	CheckoutStatusEditing    CheckoutStatus = "EDITING"
	CheckoutStatusSubmitting CheckoutStatus = "SUBMITTING"
	CheckoutStatusSuccess    CheckoutStatus = "SUCCESS"
	CheckoutStatusFailure    CheckoutStatus = "FAILURE"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:       {CheckoutStatusEditing},
	CheckoutStatusEditing:    {CheckoutStatusSubmitting},
	CheckoutStatusSubmitting: {CheckoutStatusSuccess, CheckoutStatusFailure},
	CheckoutStatusFailure:    {CheckoutStatusEditing, CheckoutStatusSubmitting},
}

// CanTransitionTo reports whether the checkout state machine allows from -> to.
func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSuccess
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
