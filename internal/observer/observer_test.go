package observer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotify_InSubscriptionOrder(t *testing.T) {
	r := NewRegistry[int]()
	var calls []string
	r.Subscribe(func(v int) { calls = append(calls, "a") })
	r.Subscribe(func(v int) { calls = append(calls, "b") })

	r.Notify(1)
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestUnsubscribe(t *testing.T) {
	r := NewRegistry[string]()
	var got []string
	unsubscribe := r.Subscribe(func(v string) { got = append(got, v) })

	r.Notify("first")
	unsubscribe()
	unsubscribe()
	r.Notify("second")

	assert.Equal(t, []string{"first"}, got)
	assert.Equal(t, 0, r.Len())
}

func TestListenerMayUnsubscribeDuringNotify(t *testing.T) {
	r := NewRegistry[int]()
	count := 0
	var unsubscribe func()
	unsubscribe = r.Subscribe(func(int) {
		count++
		unsubscribe()
	})

	assert.NotPanics(t, func() { r.Notify(1) })
	r.Notify(2)
	assert.Equal(t, 1, count)
}
