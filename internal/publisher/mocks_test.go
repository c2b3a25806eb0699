package publisher

import (
	"context"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/orders"
)

// MockSource implements EventSource for testing
type MockSource struct {
	Events  []*orders.OutboxEvent
	GetErr  error
	MarkErr error
	mu      sync.Mutex
	Marked  []int64
}

func (m *MockSource) GetUnprocessedEvents(_ context.Context, limit int) ([]*orders.OutboxEvent, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*orders.OutboxEvent
	for _, e := range m.Events {
		if len(out) == limit {
			break
		}
		if !m.marked(e.ID) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MockSource) MarkEventAsProcessed(_ context.Context, id int64) error {
	if m.MarkErr != nil {
		return m.MarkErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Marked = append(m.Marked, id)
	return nil
}

func (m *MockSource) marked(id int64) bool {
	for _, got := range m.Marked {
		if got == id {
			return true
		}
	}
	return false
}

// MockPublisher implements Publisher for testing
type MockPublisher struct {
	// FailFor lists aggregate ids whose publish fails.
	FailFor map[string]error
	mu      sync.Mutex
	Sent    []*orders.OutboxEvent
}

func (m *MockPublisher) Publish(_ context.Context, event *orders.OutboxEvent) error {
	if err, ok := m.FailFor[event.AggregateID]; ok {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
