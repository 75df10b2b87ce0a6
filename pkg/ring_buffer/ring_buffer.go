package ring_buffer

import "sync"

// RingBuffer keeps the last size values pushed into it. It is safe for
// concurrent use.
type RingBuffer[T comparable] struct {
	mu     sync.RWMutex
	values []T
	next   int
	full   bool
}

func NewRingBuffer[T comparable](size int) *RingBuffer[T] {
	if size <= 0 {
		size = 1
	}
	return &RingBuffer[T]{values: make([]T, size)}
}

// Push stores v, overwriting the oldest value once the buffer is full.
func (r *RingBuffer[T]) Push(v T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[r.next] = v
	r.next++
	if r.next == len(r.values) {
		r.next = 0
		r.full = true
	}
}

func (r *RingBuffer[T]) Contains(v T) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.next
	if r.full {
		n = len(r.values)
	}
	for i := 0; i < n; i++ {
		if r.values[i] == v {
			return true
		}
	}
	return false
}

func (r *RingBuffer[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.full {
		return len(r.values)
	}
	return r.next
}
