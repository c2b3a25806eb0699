package persist

import (
	"context"
	"errors"
)

// Storage is the durable key/value layer behind every persisted collection.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

var (
	ErrNotFound      = errors.New("key not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

type prefixed struct {
	inner     Storage
	namespace string
}

// Prefixed scopes every key of inner under namespace ("<namespace>:<key>").
func Prefixed(inner Storage, namespace string) Storage {
	if namespace == "" {
		return inner
	}
	return prefixed{inner: inner, namespace: namespace}
}

func (p prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.inner.Get(ctx, p.key(key))
}

func (p prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.key(key), value)
}

func (p prefixed) Delete(ctx context.Context, key string) error {
	return p.inner.Delete(ctx, p.key(key))
}

func (p prefixed) key(key string) string {
	return p.namespace + ":" + key
}
