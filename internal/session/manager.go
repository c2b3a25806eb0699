package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/checkout"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/fjod/go_cart/storefront/internal/persist"
	"github.com/fjod/go_cart/storefront/internal/wishlist"
)

var ErrInvalidSessionID = errors.New("invalid session id")

type Config struct {
	Storage persist.Storage
	Gateway checkout.PaymentGateway
	// Sink returns where a session's confirmed orders go. Optional.
	Sink           func(sessionID string) checkout.OrderSink
	TaxRate        decimal.Decimal
	PaymentTimeout time.Duration
	Currency       string
	Log            logrus.FieldLogger
}

// Manager builds sessions on first use and keeps them in memory. State
// lives in Storage, so an evicted session is rebuilt as it was.
type Manager struct {
	cfg Config
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
	sfg      singleflight.Group // one load per session id
}

func NewManager(cfg Config) *Manager {
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	return &Manager{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// New starts a session with a fresh id.
func (m *Manager) New(ctx context.Context) (*Session, error) {
	return m.Get(ctx, uuid.NewString())
}

// Get returns the session for id, loading its stores from storage the
// first time it is seen.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	s, release, err := m.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	release()
	return s, nil
}

// Acquire is Get for the length of a request: the session is not evicted
// until release is called. release may be called more than once.
func (m *Manager) Acquire(ctx context.Context, id string) (*Session, func(), error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, ErrInvalidSessionID
	}

	for {
		if s, ok := m.hold(id); ok {
			var once sync.Once
			return s, func() { once.Do(func() { s.release(m.now()) }) }, nil
		}

		_, _, _ = m.sfg.Do(id, func() (interface{}, error) {
			m.mu.RLock()
			_, ok := m.sessions[id]
			m.mu.RUnlock()
			if ok {
				return nil, nil
			}

			// shared by every waiter, so one caller's cancellation must not
			// turn into an empty cart for all of them
			s := m.load(context.WithoutCancel(ctx), id)
			m.mu.Lock()
			if _, ok := m.sessions[id]; !ok {
				m.sessions[id] = s
			}
			m.mu.Unlock()
			return nil, nil
		})
		// an eviction between the load and hold sends us round again
	}
}

// hold marks the session in use while the map lock is held, so EvictIdle
// either runs before (and the session is reloaded) or sees it busy.
func (m *Manager) hold(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if ok {
		s.hold(m.now())
	}
	return s, ok
}

func (m *Manager) load(ctx context.Context, id string) *Session {
	log := sessionLogger(m.cfg.Log, id)
	storage := persist.Prefixed(m.cfg.Storage, id)
	inbox := checkout.NewInbox()

	s := &Session{
		ID:       id,
		Cart:     cart.New(ctx, cart.NewCollection(storage, log)),
		Wishlist: wishlist.New(ctx, wishlist.NewCollection(storage, log)),
		Inbox:    inbox,
	}

	var sink checkout.OrderSink
	if m.cfg.Sink != nil {
		sink = m.cfg.Sink(id)
	}
	s.newFlow = func() *checkout.Flow {
		return checkout.NewFlow(s.Cart, checkout.Config{
			Gateway:   m.cfg.Gateway,
			Notifier:  inbox,
			Navigator: inbox,
			Sink:      sink,
			TaxRate:   m.cfg.TaxRate,
			Timeout:   m.cfg.PaymentTimeout,
			Currency:  m.cfg.Currency,
			Log:       log,
		})
	}

	log.Debug("session loaded")
	return s
}

// EvictIdle drops sessions unused for longer than idle and returns how
// many were dropped. Sessions held by a request are kept.
func (m *Manager) EvictIdle(idle time.Duration) int {
	cutoff := m.now().Add(-idle)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if s.idleSince(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (m *Manager) RunEviction(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.EvictIdle(idle); n > 0 {
				m.cfg.Log.WithField("evicted", n).Debug("evicted idle sessions")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
