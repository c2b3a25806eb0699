package checkout

import "errors"

var (
	ErrEmptyCart           = errors.New("cart is empty, nothing to checkout")
	ErrNotMounted          = errors.New("checkout is not mounted")
	ErrSubmitInProgress    = errors.New("checkout submission already in progress")
	ErrAlreadyCompleted    = errors.New("checkout already completed")
	ErrPaymentDeclined     = errors.New("payment declined")
	ErrPaymentTimeout      = errors.New("payment timed out")
	ErrInvalidPayment      = errors.New("payment rejected as invalid")
	IllegalTransitionError = errors.New("illegal transition of checkout status")
)
