// Package signal implements a small callback hub. Rules emit signals at
// interesting points of their lifecycle (applied, executed, branched,
// conflicted) and clients connect listeners to them; a listener can sleep to
// throttle a flow, collect stats, or drive a UI.
package signal

import "sync"

// Hub fans out a payload to every connected listener. Listeners are invoked
// synchronously in connection order. Connected listeners are kept alive until
// disconnected, so disconnect before dropping an owner.
type Hub[T any] struct {
	mu        sync.Mutex
	listeners []entry[T]
	nextID    int
}

type entry[T any] struct {
	id int
	fn func(T)
}

// NewHub returns an empty hub ready for listeners.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{}
}

// Connect registers fn and returns a handle for Disconnect.
func (h *Hub[T]) Connect(fn func(T)) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nextID++
	h.listeners = append(h.listeners, entry[T]{id: h.nextID, fn: fn})
	return h.nextID
}

// Disconnect removes the listener registered under id. Unknown ids are
// ignored.
func (h *Hub[T]) Disconnect(id int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, e := range h.listeners {
		if e.id == id {
			h.listeners = append(h.listeners[:i], h.listeners[i+1:]...)
			return
		}
	}
}

// Emit invokes every connected listener with v.
func (h *Hub[T]) Emit(v T) {
	h.mu.Lock()
	fns := make([]func(T), len(h.listeners))
	for i, e := range h.listeners {
		fns[i] = e.fn
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Count reports the number of connected listeners.
func (h *Hub[T]) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
