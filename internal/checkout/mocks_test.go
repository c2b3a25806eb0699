package checkout

import (
	"context"
	"errors"
	"sync"
)

// MockGateway implements PaymentGateway for testing
type MockGateway struct {
	Result *PaymentResult
	Err    error

	// Release, when set, blocks Charge until it is closed or ctx ends.
	Release chan struct{}
	// Started is signalled once Charge has been entered.
	Started chan struct{}

	mu       sync.Mutex
	Requests []PaymentRequest
}

func (m *MockGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if m.Started != nil {
		m.Started <- struct{}{}
	}
	if m.Release != nil {
		select {
		case <-m.Release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return m.Result, m.Err
}

func (m *MockGateway) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// MockSink implements OrderSink for testing
type MockSink struct {
	Err error

	mu      sync.Mutex
	Records []Confirmation
}

func (m *MockSink) Record(_ context.Context, c Confirmation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Records = append(m.Records, c)
	return m.Err
}

var errGatewayDown = errors.New("gateway down")
