// Package session owns the per-shopper stores and checkout flow.
package session

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	d "github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/wishlist"
)

type Session struct {
	ID       string
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Inbox    *checkout.Inbox

	newFlow func() *checkout.Flow

	mu       sync.Mutex
	flow     *checkout.Flow
	lastSeen time.Time
	inUse    int
}

// Checkout returns the session's live checkout flow. A new flow, with a
// new order id, replaces one that already completed.
func (s *Session) Checkout() *checkout.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flow == nil || s.flow.Status() == d.CheckoutStatusSuccess {
		s.flow = s.newFlow()
	}
	return s.flow
}

func (s *Session) hold(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.inUse++
	s.mu.Unlock()
}

func (s *Session) release(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.inUse--
	s.mu.Unlock()
}

// idleSince reports whether the session was last used before cutoff and
// is neither held by a request nor waiting on a payment.
func (s *Session) idleSince(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inUse > 0 {
		return false
	}
	if s.flow != nil && s.flow.Status() == d.CheckoutStatusSubmitting {
		return false
	}
	return s.lastSeen.Before(cutoff)
}

func sessionLogger(log logrus.FieldLogger, id string) logrus.FieldLogger {
	return log.WithField("session_id", id)
}
