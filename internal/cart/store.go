// Package cart owns the shopper's cart: ordered, unique lines with a
// per-line quantity, persisted under StorageKey.
package cart

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/observer"
	"github.com/fjod/go_cart/storefront/internal/persist"
	"github.com/fjod/go_cart/storefront/internal/pricing"
)

const StorageKey = "cart"

type Store struct {
	mu         sync.Mutex
	items      []domain.CartItem
	collection *persist.Collection[[]domain.CartItem]
	listeners  *observer.Registry[[]domain.CartItem]
}

// NewCollection binds the cart key in storage with the cart shape check.
func NewCollection(storage persist.Storage, log logrus.FieldLogger) *persist.Collection[[]domain.CartItem] {
	return persist.NewCollection[[]domain.CartItem](storage, StorageKey, persist.EachValid(domain.CartItem.Valid), log)
}

// New loads the cart once; a missing or corrupt entry yields an empty cart.
func New(ctx context.Context, collection *persist.Collection[[]domain.CartItem]) *Store {
	items := collection.Load(ctx, []domain.CartItem{})
	return &Store{
		items:      dedupe(items),
		collection: collection,
		listeners:  observer.NewRegistry[[]domain.CartItem](),
	}
}

// AddItem appends a line or, when the id is already in the cart, adds to its
// quantity. Name, price and image of an existing line are kept. A quantity
// below 1 counts as 1.
func (s *Store) AddItem(ctx context.Context, item domain.Item, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	if i := s.indexOf(item.ID); i >= 0 {
		s.items[i].Quantity += quantity
	} else {
		s.items = append(s.items, domain.NewCartItem(item, quantity))
	}
	snapshot := s.commit(ctx)
	s.mu.Unlock()

	s.listeners.Notify(snapshot)
}

// RemoveItem deletes the line with id; an unknown id is a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	snapshot := s.commit(ctx)
	s.mu.Unlock()

	s.listeners.Notify(snapshot)
}

// UpdateQuantity sets the quantity of an existing line. Zero or a negative
// quantity removes the line; an unknown id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, id)
		return
	}

	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.items[i].Quantity = quantity
	snapshot := s.commit(ctx)
	s.mu.Unlock()

	s.listeners.Notify(snapshot)
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	s.items = []domain.CartItem{}
	snapshot := s.commit(ctx)
	s.mu.Unlock()

	s.listeners.Notify(snapshot)
}

// GetTotal is the cart subtotal, before tax.
func (s *Store) GetTotal() decimal.Decimal {
	return pricing.Subtotal(s.Items())
}

func (s *Store) GetItemCount() int {
	return pricing.ItemCount(s.Items())
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Item(id string) (domain.CartItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return domain.CartItem{}, false
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Subscribe registers fn to receive the cart after every change.
func (s *Store) Subscribe(fn func([]domain.CartItem)) (unsubscribe func()) {
	return s.listeners.Subscribe(fn)
}

// commit persists the current lines and returns a copy for listeners.
// Callers hold s.mu.
func (s *Store) commit(ctx context.Context) []domain.CartItem {
	snapshot := s.snapshot()
	s.collection.Save(ctx, snapshot)
	return snapshot
}

func (s *Store) snapshot() []domain.CartItem {
	out := make([]domain.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

// dedupe merges repeated ids from an older or hand-edited entry, keeping
// the first line's metadata.
func dedupe(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, 0, len(items))
	seen := make(map[string]int, len(items))
	for _, item := range items {
		if i, ok := seen[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		seen[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
