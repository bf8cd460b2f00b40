// Package pool holds a concurrency-safe accumulate-and-drain queue.
// Producers send items from any goroutine; a consumer periodically drains
// the whole batch.
package pool

import (
	"sync"
)

type Sender[T any] interface {
	Send(...T)
}

type Receiver[T any] interface {
	Drain() []T
}

var (
	_ Sender[int]   = &Pool[int]{}
	_ Receiver[int] = &Pool[int]{}
)

type Pool[T any] struct {
	queue []T
	lock  sync.RWMutex
}

// New returns a new Pool. initialBufferSize is the initial amount of cap
// space to provide to the queue slice.
func New[T any](initialBufferSize int) *Pool[T] {
	return &Pool[T]{
		queue: make([]T, 0, initialBufferSize),
	}
}

func (p *Pool[T]) Send(items ...T) {
	p.lock.Lock()
	p.queue = append(p.queue, items...)
	p.lock.Unlock()
}

// Drain returns everything sent since the last drain and resets the queue.
func (p *Pool[T]) Drain() []T {
	p.lock.Lock()
	queue := p.queue
	p.queue = make([]T, 0, cap(queue))
	p.lock.Unlock()
	return queue
}

func (p *Pool[T]) Len() int {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return len(p.queue)
}
