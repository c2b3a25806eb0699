package orders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type MemoryRepository struct {
	mu       sync.Mutex
	orders   map[uuid.UUID]*Order
	outbox   []*OutboxEvent
	nextID   int64
	noOutbox bool
}

type MemoryOption func(*MemoryRepository)

// WithoutOutbox stores orders without queueing events. Use it when no
// poller drains the outbox.
func WithoutOutbox() MemoryOption {
	return func(r *MemoryRepository) {
		r.noOutbox = true
	}
}

func NewMemoryRepository(opts ...MemoryOption) *MemoryRepository {
	r := &MemoryRepository{orders: make(map[uuid.UUID]*Order)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryRepository) CreateOrder(_ context.Context, order *Order) error {
	payload, err := confirmedPayload(order)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[order.ID]; ok {
		return ErrDuplicateOrder
	}
	r.orders[order.ID] = cloneOrder(order)
	if r.noOutbox {
		return nil
	}
	r.nextID++
	r.outbox = append(r.outbox, &OutboxEvent{
		ID:          r.nextID,
		AggregateID: order.ID.String(),
		EventType:   EventOrderConfirmed,
		Payload:     payload,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (r *MemoryRepository) GetOrderByID(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *MemoryRepository) ListOrdersBySession(_ context.Context, sessionID string) ([]*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Order
	for _, o := range r.orders {
		if o.SessionID == sessionID {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) GetUnprocessedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*OutboxEvent
	for _, e := range r.outbox {
		if len(out) == limit {
			break
		}
		if e.ProcessedAt == nil {
			ev := *e
			out = append(out, &ev)
		}
	}
	return out, nil
}

func (r *MemoryRepository) MarkEventAsProcessed(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.outbox {
		if e.ID == id {
			// processed events are dropped so the outbox stays bounded
			r.outbox = append(r.outbox[:i], r.outbox[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *MemoryRepository) Close() error {
	return nil
}

func cloneOrder(o *Order) *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}
