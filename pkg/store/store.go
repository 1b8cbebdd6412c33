// Package store provides a generic, thread-safe, insertion-ordered in-memory
// collection used by every backoffice service. It supports CRUD operations,
// atomic read-modify-write updates, cursor-based pagination and ordered
// snapshots for the admin state endpoints.
package store

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Store is a generic, thread-safe, in-memory store for objects of type T.
// A single RWMutex guards the items and their order, so every mutation is
// atomic with respect to every other.
type Store[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	order   []string // insertion order for deterministic listing
	prefix  string
	counter atomic.Uint64
	random  bool
}

// Option configures a Store.
type Option func(*options)

type options struct {
	random bool
}

// WithRandomIDs makes NextID return "{prefix}_{uuid}" instead of the default
// sequential "{prefix}_{counter}". Use it for ids handed to external callers
// that must stay unique across resets.
func WithRandomIDs() Option {
	return func(o *options) { o.random = true }
}

// New creates a new Store with the given ID prefix (e.g., "acct", "txn", "ntf").
func New[T any](prefix string, opts ...Option) *Store[T] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		items:  make(map[string]T),
		order:  make([]string, 0),
		prefix: prefix,
		random: o.random,
	}
}

// NextID generates a new ID with the store's prefix.
// Sequential IDs are of the form "{prefix}_{counter}" e.g., "txn_000001".
func (s *Store[T]) NextID() string {
	if s.random {
		return s.prefix + "_" + uuid.NewString()
	}
	n := s.counter.Add(1)
	return fmt.Sprintf("%s_%06d", s.prefix, n)
}

// Set stores an item with the given ID. If the ID already exists, it is overwritten
// but its position in the insertion order is preserved.
func (s *Store[T]) Set(id string, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		s.order = append(s.order, id)
	}
	s.items[id] = item
}

// Create allocates a fresh ID, builds the item with it and stores it, all
// under the write lock. IDs already present in the store are skipped.
func (s *Store[T]) Create(build func(id string) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.NextID()
	for {
		if _, taken := s.items[id]; !taken {
			break
		}
		id = s.NextID()
	}
	item := build(id)
	s.items[id] = item
	s.order = append(s.order, id)
	return item
}

// Get retrieves an item by ID. Returns the item and true if found, zero value and false otherwise.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Update replaces the item stored under id with fn(current). fn runs under
// the write lock, so concurrent updates of the same id are never lost.
// Returns false without calling fn if the id is unknown.
func (s *Store[T]) Update(id string, fn func(current T) T) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.items[id]
	if !ok {
		var zero T
		return zero, false
	}
	next := fn(current)
	s.items[id] = next
	return next, true
}

// Delete removes an item by ID. Returns true if the item existed.
func (s *Store[T]) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[id]; !exists {
		return false
	}
	delete(s.items, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// List returns all items in insertion order.
func (s *Store[T]) List() []T {
	return s.Filter(nil)
}

// ListNewestFirst returns all items, most recently inserted first.
func (s *Store[T]) ListNewestFirst() []T {
	return s.FilterNewestFirst(nil)
}

// ListIDs returns all IDs in insertion order.
func (s *Store[T]) ListIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Page represents a paginated result set.
type Page[T any] struct {
	Data    []T    `json:"items"`
	HasMore bool   `json:"hasMore"`
	Cursor  string `json:"cursor,omitempty"`
	Total   int    `json:"total"`
}

// Paginate returns a page of items using cursor-based pagination.
// The cursor is the last ID seen. An empty cursor starts from the beginning.
// Limit controls the page size (0 means return all).
func (s *Store[T]) Paginate(cursor string, limit int) Page[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	startIdx := 0
	if cursor != "" {
		for i, id := range s.order {
			if id == cursor {
				startIdx = i + 1
				break
			}
		}
	}

	if limit <= 0 {
		limit = len(s.order)
	}

	endIdx := startIdx + limit
	hasMore := false
	if endIdx > len(s.order) {
		endIdx = len(s.order)
	} else if endIdx < len(s.order) {
		hasMore = true
	}

	data := make([]T, 0, endIdx-startIdx)
	var lastCursor string
	for i := startIdx; i < endIdx; i++ {
		data = append(data, s.items[s.order[i]])
		lastCursor = s.order[i]
	}

	return Page[T]{
		Data:    data,
		HasMore: hasMore,
		Cursor:  lastCursor,
		Total:   len(s.order),
	}
}

// Count returns the number of items in the store.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Any reports whether at least one item matches the predicate.
func (s *Store[T]) Any(predicate func(item T) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.order {
		if predicate(s.items[id]) {
			return true
		}
	}
	return false
}

// Filter returns items that match the given predicate, in insertion order.
// A nil predicate matches everything. The result is never nil.
func (s *Store[T]) Filter(predicate func(item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0, len(s.order))
	for _, id := range s.order {
		if predicate == nil || predicate(s.items[id]) {
			result = append(result, s.items[id])
		}
	}
	return result
}

// FilterNewestFirst is Filter in reverse insertion order.
func (s *Store[T]) FilterNewestFirst(predicate func(item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]T, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		item := s.items[s.order[i]]
		if predicate == nil || predicate(item) {
			result = append(result, item)
		}
	}
	return result
}

// Reset clears all items and resets the ID counter.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
	s.order = make([]string, 0)
	s.counter.Store(0)
}

// Entry pairs an item with its ID for ordered snapshots.
type Entry[T any] struct {
	ID   string
	Item T
}

// Entries returns every item with its ID, in insertion order.
func (s *Store[T]) Entries() []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry[T], 0, len(s.order))
	for _, id := range s.order {
		out = append(out, Entry[T]{ID: id, Item: s.items[id]})
	}
	return out
}

// Load replaces all items with entries, keeping their order. Duplicate IDs
// keep the position of their first occurrence and the value of the last.
// The sequential counter is advanced past both the number of loaded entries
// and the highest loaded "{prefix}_{n}" ID.
func (s *Store[T]) Load(entries []Entry[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T, len(entries))
	s.order = make([]string, 0, len(entries))
	for _, e := range entries {
		if _, exists := s.items[e.ID]; !exists {
			s.order = append(s.order, e.ID)
		}
		s.items[e.ID] = e.Item
	}
	next := uint64(len(entries))
	for _, id := range s.order {
		if n, ok := s.sequence(id); ok && n > next {
			next = n
		}
	}
	s.counter.Store(next)
}

// sequence parses the counter out of a "{prefix}_{n}" ID.
func (s *Store[T]) sequence(id string) (uint64, bool) {
	digits, ok := strings.CutPrefix(id, s.prefix+"_")
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
