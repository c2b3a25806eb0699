// Package pricing turns a cart snapshot into subtotal, tax and total.
// Amounts keep full precision; rounding happens only in Format.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var DefaultTaxRate = decimal.RequireFromString("0.08")

type Snapshot struct {
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	TaxRate   decimal.Decimal
	ItemCount int
}

func Subtotal(items []domain.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		line := Price(item.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(line)
	}
	return subtotal
}

func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate)
}

func Total(subtotal, tax decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax)
}

func ItemCount(items []domain.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return count
}

func Compute(items []domain.CartItem, rate decimal.Decimal) Snapshot {
	subtotal := Subtotal(items)
	tax := Tax(subtotal, rate)
	return Snapshot{
		Subtotal:  subtotal,
		Tax:       tax,
		Total:     Total(subtotal, tax),
		TaxRate:   rate,
		ItemCount: ItemCount(items),
	}
}

// Price converts a stored unit price to a decimal using its shortest
// representation, so 19.99 is exactly 19.99.
func Price(p float64) decimal.Decimal {
	return decimal.NewFromFloat(p)
}

// Format renders an amount for display, rounded to cents.
func Format(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
