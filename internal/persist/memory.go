package persist

import (
	"context"
	"sync"
)

// MemoryStorage keeps values in process memory. A non-zero quota caps the
// total number of stored bytes, the way browser storage does.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string][]byte
	used   int
	quota  int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string][]byte)}
}

// NewMemoryStorageWithQuota returns a storage that rejects writes pushing
// the stored total above quota bytes.
func NewMemoryStorageWithQuota(quota int) *MemoryStorage {
	s := NewMemoryStorage()
	s.quota = quota
	return s
}

func (s *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStorage) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	used := s.used - len(s.values[key]) + len(value)
	if s.quota > 0 && used > s.quota {
		return ErrQuotaExceeded
	}

	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	s.used = used
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.used -= len(s.values[key])
	delete(s.values, key)
	return nil
}

// Keys returns the stored keys, in no particular order.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	return keys
}
