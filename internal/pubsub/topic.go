// Package pubsub is a small in-process broadcast primitive. Subscribers only
// see values published after they subscribed.
package pubsub

import (
	"sync"
	"sync/atomic"
)

type subscriber[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// Topic fans a value out to every current subscriber, synchronously and in
// subscription order. The zero value is ready to use.
type Topic[T any] struct {
	mu   sync.RWMutex
	subs []*subscriber[T]
}

// Subscribe registers fn and returns its unsubscribe function. Once
// unsubscribe returns, fn is not started again. Calling it twice is fine.
func (t *Topic[T]) Subscribe(fn func(T)) func() {
	s := &subscriber[T]{fn: fn}
	s.active.Store(true)

	t.mu.Lock()
	t.subs = append(t.subs, s)
	t.mu.Unlock()

	return func() {
		if !s.active.CompareAndSwap(true, false) {
			return
		}
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, cur := range t.subs {
			if cur == s {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				break
			}
		}
	}
}

// Publish delivers v to the subscribers registered at call time. Callbacks
// may subscribe or unsubscribe without deadlocking.
func (t *Topic[T]) Publish(v T) {
	t.mu.RLock()
	subs := make([]*subscriber[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	for _, s := range subs {
		if s.active.Load() {
			s.fn(v)
		}
	}
}

// Len returns the number of live subscribers.
func (t *Topic[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}
