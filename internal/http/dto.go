package http

import (
	"time"

	"github.com/fjod/go_cart/storefront/internal/checkout"
	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/orders"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

// PricingDTO carries full-precision amounts plus their display form.
type PricingDTO struct {
	Subtotal  string              `json:"subtotal"`
	Tax       string              `json:"tax"`
	Total     string              `json:"total"`
	TaxRate   string              `json:"tax_rate"`
	ItemCount int                 `json:"item_count"`
	Formatted FormattedPricingDTO `json:"formatted"`
}

type FormattedPricingDTO struct {
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

func toPricingDTO(s pricing.Snapshot) PricingDTO {
	return PricingDTO{
		Subtotal:  s.Subtotal.String(),
		Tax:       s.Tax.String(),
		Total:     s.Total.String(),
		TaxRate:   s.TaxRate.String(),
		ItemCount: s.ItemCount,
		Formatted: FormattedPricingDTO{
			Subtotal: pricing.Format(s.Subtotal),
			Tax:      pricing.Format(s.Tax),
			Total:    pricing.Format(s.Total),
		},
	}
}

type CartResponse struct {
	Items   []d.CartItem `json:"items"`
	Pricing PricingDTO   `json:"pricing"`
}

type WishlistResponse struct {
	Items []d.WishlistItem `json:"items"`
	Count int              `json:"count"`
}

type ToggleResponse struct {
	InWishlist bool             `json:"in_wishlist"`
	Wishlist   WishlistResponse `json:"wishlist"`
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type WishlistItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type BuyerDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CheckoutStateDTO is the mounted checkout as the page renders it. The
// payment is reported masked.
type CheckoutStateDTO struct {
	Status        string                  `json:"status"`
	OrderID       string                  `json:"order_id"`
	Buyer         BuyerDTO                `json:"buyer"`
	PaymentMethod string                  `json:"payment_method,omitempty"`
	Payment       string                  `json:"payment,omitempty"`
	Items         []d.CartItem            `json:"items"`
	Pricing       PricingDTO              `json:"pricing"`
	Notifications []checkout.Notification `json:"notifications,omitempty"`
}

type RedirectDTO struct {
	Redirect      string                  `json:"redirect"`
	Notifications []checkout.Notification `json:"notifications,omitempty"`
}

type ConfirmationDTO struct {
	OrderID       string                  `json:"order_id"`
	TransactionID string                  `json:"transaction_id"`
	Buyer         BuyerDTO                `json:"buyer"`
	PaymentMethod string                  `json:"payment_method"`
	Payment       string                  `json:"payment"`
	Items         []d.CartItem            `json:"items"`
	Pricing       PricingDTO              `json:"pricing"`
	Currency      string                  `json:"currency"`
	PlacedAt      time.Time               `json:"placed_at"`
	Redirect      string                  `json:"redirect,omitempty"`
	Notifications []checkout.Notification `json:"notifications,omitempty"`
}

// CheckoutErrorResponse reports a rejected or failed submission.
type CheckoutErrorResponse struct {
	ErrorResponse
	Status        string                  `json:"status"`
	Redirect      string                  `json:"redirect,omitempty"`
	Notifications []checkout.Notification `json:"notifications,omitempty"`
}

func toBuyerDTO(b checkout.Buyer) BuyerDTO {
	return BuyerDTO{Name: b.Name, Email: b.Email, Phone: b.Phone}
}

type OrderItemDTO struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type OrderResponseDTO struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transaction_id"`
	Status        string         `json:"status"`
	PaymentMethod string         `json:"payment_method"`
	Payment       string         `json:"payment"`
	Items         []OrderItemDTO `json:"items"`
	Subtotal      string         `json:"subtotal"`
	Tax           string         `json:"tax"`
	Total         string         `json:"total"`
	TotalDisplay  string         `json:"total_display"`
	Currency      string         `json:"currency"`
	CreatedAt     string         `json:"created_at"`
}

func convertOrder(o *orders.Order) OrderResponseDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.Price,
		})
	}

	return OrderResponseDTO{
		ID:            o.ID.String(),
		TransactionID: o.TransactionID,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		Payment:       o.Payment,
		Items:         items,
		Subtotal:      o.Subtotal.String(),
		Tax:           o.Tax.String(),
		Total:         o.Total.String(),
		TotalDisplay:  pricing.Format(o.Total),
		Currency:      o.Currency,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}
