package orders

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/checkout"
)

type OrderStatus string

const OrderStatusConfirmed OrderStatus = "CONFIRMED"

const EventOrderConfirmed = "order.confirmed"

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"unit_price"`
}

type Order struct {
	ID            uuid.UUID       `json:"id"`
	SessionID     string          `json:"session_id"`
	TransactionID string          `json:"transaction_id"`
	BuyerName     string          `json:"buyer_name"`
	BuyerEmail    string          `json:"buyer_email"`
	BuyerPhone    string          `json:"buyer_phone"`
	PaymentMethod string          `json:"payment_method"`
	Payment       string          `json:"payment"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	Currency      string          `json:"currency"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// FromConfirmation builds the ledger entry for a confirmed checkout.
func FromConfirmation(sessionID string, c checkout.Confirmation) (*Order, error) {
	id, err := uuid.Parse(c.OrderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order id %q: %w", c.OrderID, err)
	}

	items := make([]OrderItem, len(c.Items))
	for i, item := range c.Items {
		items[i] = OrderItem{
			ProductID:   item.ID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
		}
	}

	return &Order{
		ID:            id,
		SessionID:     sessionID,
		TransactionID: c.TransactionID,
		BuyerName:     c.Buyer.Name,
		BuyerEmail:    c.Buyer.Email,
		BuyerPhone:    c.Buyer.Phone,
		PaymentMethod: string(c.Method),
		Payment:       c.Payment,
		Items:         items,
		Subtotal:      c.Pricing.Subtotal,
		Tax:           c.Pricing.Tax,
		Total:         c.Pricing.Total,
		Currency:      c.Currency,
		Status:        OrderStatusConfirmed,
		CreatedAt:     c.PlacedAt,
		UpdatedAt:     c.PlacedAt,
	}, nil
}

// OutboxEvent is an order event waiting to be published.
type OutboxEvent struct {
	ID          int64
	AggregateID string
	EventType   string
	Payload     json.RawMessage
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// OrderConfirmedEvent is the payload of an order.confirmed event.
type OrderConfirmedEvent struct {
	OrderID       string      `json:"order_id"`
	SessionID     string      `json:"session_id"`
	TransactionID string      `json:"transaction_id"`
	BuyerEmail    string      `json:"buyer_email"`
	PaymentMethod string      `json:"payment_method"`
	Items         []OrderItem `json:"items"`
	Subtotal      string      `json:"subtotal"`
	Tax           string      `json:"tax"`
	Total         string      `json:"total"`
	Currency      string      `json:"currency"`
	ConfirmedAt   time.Time   `json:"confirmed_at"`
}

func confirmedPayload(o *Order) (json.RawMessage, error) {
	payload, err := json.Marshal(OrderConfirmedEvent{
		OrderID:       o.ID.String(),
		SessionID:     o.SessionID,
		TransactionID: o.TransactionID,
		BuyerEmail:    o.BuyerEmail,
		PaymentMethod: o.PaymentMethod,
		Items:         o.Items,
		Subtotal:      o.Subtotal.String(),
		Tax:           o.Tax.String(),
		Total:         o.Total.String(),
		Currency:      o.Currency,
		ConfirmedAt:   o.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order event: %w", err)
	}
	return payload, nil
}
