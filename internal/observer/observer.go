// Package observer holds the listener registry shared by the cart and
// wishlist stores.
package observer

import "sync"

type Listener[T any] func(T)

// Registry notifies listeners synchronously, in subscription order.
type Registry[T any] struct {
	mu        sync.Mutex
	nextID    uint64
	order     []uint64
	listeners map[uint64]Listener[T]
}

func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{listeners: make(map[uint64]Listener[T])}
}

// Subscribe registers fn and returns the func that removes it. Calling the
// returned func more than once is harmless.
func (r *Registry[T]) Subscribe(fn Listener[T]) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.order = append(r.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

// Notify calls every listener registered at the time of the call. The
// registry lock is not held while listeners run, so a listener may
// subscribe, unsubscribe or read the store that notified it.
func (r *Registry[T]) Notify(v T) {
	r.mu.Lock()
	fns := make([]Listener[T], 0, len(r.order))
	for _, id := range r.order {
		fns = append(fns, r.listeners[id])
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

func (r *Registry[T]) remove(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.listeners, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}
