package store

import (
	"slices"
	"sync"
)

// Hub fans full-collection snapshots out to watch subscribers. Both the
// memory and the sqlite backends drive one Hub per collection: after a
// mutation the backend re-lists the collection and broadcasts it.
type Hub[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]func([]T, error)
}

func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[int]func([]T, error))}
}

// Subscribe registers fn. The caller is responsible for delivering the
// initial snapshot; the hub only forwards subsequent broadcasts.
func (h *Hub[T]) Subscribe(fn func([]T, error)) Subscription {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	return &hubSub{cancel: func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}}
}

// Broadcast delivers items (or err) to every live subscriber. Each
// subscriber receives its own copy of the slice so consumers cannot
// alias each other's snapshots. Callbacks run synchronously on the
// broadcasting goroutine; one reconciliation pass at a time.
func (h *Hub[T]) Broadcast(items []T, err error) {
	h.mu.Lock()
	fns := make([]func([]T, error), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		if err != nil {
			fn(nil, err)
			continue
		}
		fn(slices.Clone(items), nil)
	}
}

type hubSub struct {
	once   sync.Once
	cancel func()
}

func (s *hubSub) Cancel() {
	s.once.Do(s.cancel)
}
