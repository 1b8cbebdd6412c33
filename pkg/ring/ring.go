// Package ring provides a bounded, thread-safe FIFO buffer. Once full, each
// Add evicts the oldest entry. It backs the realtime event log and the
// request log.
package ring

import "sync"

// Buffer is a fixed-capacity circular buffer of T.
type Buffer[T any] struct {
	mu    sync.RWMutex
	items []T
	start int // index of the oldest entry
	size  int
}

// New creates a buffer holding at most capacity entries. A capacity below
// one is raised to one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Add appends v, evicting the oldest entry if at capacity.
func (b *Buffer[T]) Add(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size < len(b.items) {
		b.items[(b.start+b.size)%len(b.items)] = v
		b.size++
		return
	}
	b.items[b.start] = v
	b.start = (b.start + 1) % len(b.items)
}

// Entries returns a copy of all entries, oldest first.
func (b *Buffer[T]) Entries() []T {
	return b.Filter(nil)
}

// Filter returns the entries matching keep, oldest first. A nil keep matches
// everything. The result is never nil.
func (b *Buffer[T]) Filter(keep func(T) bool) []T {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]T, 0, b.size)
	for i := 0; i < b.size; i++ {
		v := b.items[(b.start+i)%len(b.items)]
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Len returns the number of retained entries.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Load replaces the contents with entries, keeping only the newest Cap().
func (b *Buffer[T]) Load(entries []T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(entries) > len(b.items) {
		entries = entries[len(entries)-len(b.items):]
	}
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	copy(b.items, entries)
	b.start = 0
	b.size = len(entries)
}

// Clear removes all entries.
func (b *Buffer[T]) Clear() {
	b.Load(nil)
}
