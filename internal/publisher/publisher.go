// Package publisher relays order events from the outbox to a broker.
package publisher

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/orders"
)

// Publisher delivers one outbox event. Delivery is at-least-once: the
// event is marked processed only after Publish returns nil.
type Publisher interface {
	Publish(ctx context.Context, event *orders.OutboxEvent) error
	Close() error
}
