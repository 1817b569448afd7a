// Package signal provides the subscribe/emit hub behind the observer hooks
// exposed by the selection tracker, the wizard and the submission controller.
package signal

import (
	"sort"
	"sync"
)

// Hub fans events out to subscribers in subscription order. The zero value is
// ready to use.
type Hub[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func(T)
}

// Subscribe registers fn and returns a function that removes it. Calling the
// returned function more than once is safe.
func (h *Hub[T]) Subscribe(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}

	h.mu.Lock()
	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Emit delivers event to every subscriber. Subscribers run outside the hub
// lock so they may subscribe, unsubscribe or emit again.
func (h *Hub[T]) Emit(event T) {
	for _, fn := range h.snapshot() {
		fn(event)
	}
}

// Len reports the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub[T]) snapshot() []func(T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.subs) == 0 {
		return nil
	}
	ids := make([]int, 0, len(h.subs))
	for id := range h.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(T), 0, len(ids))
	for _, id := range ids {
		out = append(out, h.subs[id])
	}
	return out
}
