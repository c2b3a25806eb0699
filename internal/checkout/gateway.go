package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// PaymentGateway charges the buyer for an order. A declined payment is a
// result with Approved false; an error means the outcome is unknown.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
}

type PaymentRequest struct {
	OrderID  string
	Buyer    Buyer
	Payment  Payment
	Items    []domain.CartItem
	Amount   decimal.Decimal
	Currency string
}

type PaymentResult struct {
	Approved      bool
	TransactionID string
	Reason        string
}
