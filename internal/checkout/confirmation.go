package checkout

import (
	"context"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// Confirmation describes an order whose payment the gateway approved.
type Confirmation struct {
	OrderID       string
	TransactionID string
	Buyer         Buyer
	Payment       string // masked
	Method        PaymentMethod
	Items         []domain.CartItem
	Pricing       pricing.Snapshot
	Currency      string
	PlacedAt      time.Time
}

// OrderSink receives every confirmed order. Its errors are logged and never
// undo the confirmation.
type OrderSink interface {
	Record(ctx context.Context, c Confirmation) error
}
