package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Decider picks the outcome of a simulated charge.
type Decider interface {
	Decide(req PaymentRequest) (approved bool, reason string)
}

type AlwaysApprove struct{}

func (AlwaysApprove) Decide(PaymentRequest) (bool, string) {
	return true, ""
}

type DeclineAll struct {
	Reason string
}

func (d DeclineAll) Decide(PaymentRequest) (bool, string) {
	if d.Reason == "" {
		return false, "card declined"
	}
	return false, d.Reason
}

// RandomApproval approves roughly Percent out of every hundred charges.
type RandomApproval struct {
	Percent int

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewRandomApproval(percent int, seed int64) *RandomApproval {
	return &RandomApproval{Percent: percent, rnd: rand.New(rand.NewSource(seed))}
}

func (r *RandomApproval) Decide(PaymentRequest) (bool, string) {
	r.mu.Lock()
	n := r.rnd.Intn(100)
	r.mu.Unlock()
	return calcApproval(n, r.Percent)
}

func calcApproval(n, percent int) (bool, string) {
	if n < percent {
		return true, ""
	}
	reasons := []string{"insufficient funds", "card expired", "suspected fraud", "issuer unavailable"}
	return false, reasons[n%len(reasons)]
}

// SimulatedGateway stands in for a real processor: it waits a fixed delay
// and then answers with its Decider's outcome.
type SimulatedGateway struct {
	delay   time.Duration
	decider Decider
}

func NewSimulatedGateway(delay time.Duration, decider Decider) *SimulatedGateway {
	if decider == nil {
		decider = AlwaysApprove{}
	}
	return &SimulatedGateway{delay: delay, decider: decider}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	approved, reason := g.decider.Decide(req)
	return &PaymentResult{
		Approved:      approved,
		TransactionID: fmt.Sprintf("TXN-%s", uuid.NewString()),
		Reason:        reason,
	}, nil
}
