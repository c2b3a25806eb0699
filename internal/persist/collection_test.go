package persist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type failingStorage struct {
	mu      sync.Mutex
	getErr  error
	setErr  error
	deleted []string
}

func (f *failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, f.getErr
}

func (f *failingStorage) Set(context.Context, string, []byte) error {
	return f.setErr
}

func (f *failingStorage) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func newCartCollection(s Storage, log logrus.FieldLogger) *Collection[[]domain.CartItem] {
	return NewCollection[[]domain.CartItem](s, "cart", EachValid(domain.CartItem.Valid), log)
}

func TestLoad_MissingKeyReturnsDefault(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	c := newCartCollection(NewMemoryStorage(), log)

	got := c.Load(context.Background(), []domain.CartItem{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLoad_NotJSONResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.Set(ctx, "cart", []byte("not json")))
	log, _ := logtest.NewNullLogger()
	c := newCartCollection(s, log)

	assert.NotPanics(t, func() {
		got := c.Load(ctx, []domain.CartItem{})
		assert.Empty(t, got)
	})

	_, err := s.Get(ctx, "cart")
	assert.ErrorIs(t, err, ErrNotFound, "corrupt entry should be removed")
}

func TestLoad_WrongShapeResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	tests := map[string]string{
		"object instead of array": `{"id":"p1"}`,
		"number":                  `42`,
		"zero quantity":           `[{"id":"p1","name":"Mug","price":10,"image":"","quantity":0}]`,
		"missing id":              `[{"name":"Mug","price":10,"quantity":1}]`,
	}
	for name, payload := range tests {
		t.Run(name, func(t *testing.T) {
			s := NewMemoryStorage()
			require.NoError(t, s.Set(ctx, "cart", []byte(payload)))
			log, _ := logtest.NewNullLogger()
			c := newCartCollection(s, log)

			assert.Empty(t, c.Load(ctx, []domain.CartItem{}))
			_, err := s.Get(ctx, "cart")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestLoad_NullIsDefault(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	require.NoError(t, s.Set(ctx, "cart", []byte("null")))
	log, _ := logtest.NewNullLogger()

	got := newCartCollection(s, log).Load(ctx, []domain.CartItem{})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveThenLoad(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()
	log, _ := logtest.NewNullLogger()
	c := newCartCollection(s, log)

	items := []domain.CartItem{
		{ID: "p1", Name: "Mug", Price: 19.99, Image: "/img/mug.png", Quantity: 2},
		{ID: "p2", Name: "Cap", Price: 5, Image: "/img/cap.png", Quantity: 1},
	}
	c.Save(ctx, items)

	raw, err := s.Get(ctx, "cart")
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":"p1","name":"Mug","price":19.99,"image":"/img/mug.png","quantity":2},
		{"id":"p2","name":"Cap","price":5,"image":"/img/cap.png","quantity":1}
	]`, string(raw))

	reloaded := newCartCollection(s, log).Load(ctx, nil)
	assert.Equal(t, items, reloaded)
}

func TestSave_WriteFailureIsLogged(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	s := NewMemoryStorageWithQuota(8)
	c := newCartCollection(s, log)

	assert.NotPanics(t, func() {
		c.Save(context.Background(), []domain.CartItem{{ID: "p1", Name: "Mug", Price: 10, Quantity: 1}})
	})

	require.NotEmpty(t, hook.AllEntries())
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), ErrQuotaExceeded)
	assert.Equal(t, "cart", entry.Data["key"])
}

func TestLoad_ReadFailureKeepsEntry(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	s := &failingStorage{getErr: errors.New("connection refused")}
	c := newCartCollection(s, log)

	got := c.Load(context.Background(), []domain.CartItem{})
	assert.Empty(t, got)
	assert.Empty(t, s.deleted, "unreadable storage is not the same as a corrupt entry")
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestEachValid(t *testing.T) {
	check := EachValid(domain.WishlistItem.Valid)
	assert.True(t, check(nil))
	assert.True(t, check([]domain.WishlistItem{{ID: "a"}}))
	assert.False(t, check([]domain.WishlistItem{{ID: "a"}, {}}))
}
