// Package wishlist owns the shopper's saved products: a set keyed by
// product id, listed in the order items were saved.
package wishlist

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/observer"
	"github.com/fjod/go_cart/storefront/internal/persist"
)

const StorageKey = "wishlist"

type Store struct {
	mu         sync.Mutex
	items      []domain.WishlistItem
	collection *persist.Collection[[]domain.WishlistItem]
	listeners  *observer.Registry[[]domain.WishlistItem]
}

func NewCollection(storage persist.Storage, log logrus.FieldLogger) *persist.Collection[[]domain.WishlistItem] {
	return persist.NewCollection[[]domain.WishlistItem](storage, StorageKey, persist.EachValid(domain.WishlistItem.Valid), log)
}

func New(ctx context.Context, collection *persist.Collection[[]domain.WishlistItem]) *Store {
	loaded := collection.Load(ctx, []domain.WishlistItem{})

	items := make([]domain.WishlistItem, 0, len(loaded))
	seen := make(map[string]struct{}, len(loaded))
	for _, item := range loaded {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		items = append(items, item)
	}

	return &Store{
		items:      items,
		collection: collection,
		listeners:  observer.NewRegistry[[]domain.WishlistItem](),
	}
}

// AddItem saves item unless its id is already present.
func (s *Store) AddItem(ctx context.Context, item domain.Item) {
	s.mu.Lock()
	if s.indexOf(item.ID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items, domain.NewWishlistItem(item))
	snapshot := s.commit(ctx)
	s.mu.Unlock()

	s.listeners.Notify(snapshot)
}

// RemoveItem drops id; an unknown id is a no-op.
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

// Toggle removes item when saved and saves it otherwise. It reports whether
// the item is in the wishlist afterwards.
func (s *Store) Toggle(ctx context.Context, item domain.Item) bool {
	s.mu.Lock()
	saved := true
	if i := s.indexOf(item.ID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
		saved = false
	} else {
		s.items = append(s.items, domain.NewWishlistItem(item))
	}
	snapshot := s.commit(ctx)
	s.mu.Unlock()

	s.listeners.Notify(snapshot)
	return saved
}

func (s *Store) IsInWishlist(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOf(id) >= 0
}

func (s *Store) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Subscribe(fn func([]domain.WishlistItem)) (unsubscribe func()) {
	return s.listeners.Subscribe(fn)
}

func (s *Store) commit(ctx context.Context) []domain.WishlistItem {
	snapshot := s.snapshot()
	s.collection.Save(ctx, snapshot)
	return snapshot
}

func (s *Store) snapshot() []domain.WishlistItem {
	out := make([]domain.WishlistItem, len(s.items))
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
