package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/fjod/go_cart/storefront/internal/logger"
)

// Collection is a JSON value of type T persisted under one fixed key.
// Neither Load nor Save ever fails from the caller's point of view.
type Collection[T any] struct {
	storage  Storage
	key      string
	validate func(T) bool
	log      logrus.FieldLogger
}

// NewCollection binds key in storage. validate is the shape check applied
// after decoding; nil accepts any value that decodes.
func NewCollection[T any](storage Storage, key string, validate func(T) bool, log logrus.FieldLogger) *Collection[T] {
	return &Collection[T]{
		storage:  storage,
		key:      key,
		validate: validate,
		log:      log.WithField("key", key),
	}
}

func (c *Collection[T]) Key() string {
	return c.key
}

// Load returns the stored value, or def when the key is absent, unreadable
// or fails the shape check. A corrupt entry is removed.
func (c *Collection[T]) Load(ctx context.Context, def T) T {
	log := logger.FromContext(ctx, c.log)

	data, err := c.storage.Get(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return def
	}
	if err != nil {
		log.WithError(err).Warn("storage read failed, using default")
		return def
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return def
	}

	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		log.WithError(err).Debug("corrupt entry, resetting")
		c.reset(ctx, log)
		return def
	}
	if c.validate != nil && !c.validate(v) {
		log.Debug("entry failed shape check, resetting")
		c.reset(ctx, log)
		return def
	}
	return v
}

// Save writes v. A failed write is logged and otherwise ignored; the
// caller's in-memory value stays the source of truth.
func (c *Collection[T]) Save(ctx context.Context, v T) {
	log := logger.FromContext(ctx, c.log)

	data, err := json.Marshal(v)
	if err != nil {
		log.WithError(err).Warn("failed to encode entry")
		return
	}
	if err := c.storage.Set(ctx, c.key, data); err != nil {
		log.WithError(err).Warn("failed to persist entry")
	}
}

func (c *Collection[T]) reset(ctx context.Context, log logrus.FieldLogger) {
	if err := c.storage.Delete(ctx, c.key); err != nil {
		log.WithError(err).Warn("failed to reset corrupt entry")
	}
}

// EachValid builds a slice shape check from an element check.
func EachValid[E any](valid func(E) bool) func([]E) bool {
	return func(items []E) bool {
		for _, item := range items {
			if !valid(item) {
				return false
			}
		}
		return true
	}
}
