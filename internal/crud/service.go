package crud

import (
	"maps"
	"time"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// Service is the store for a single resource name.
type Service struct {
	name    string
	entries *store.Store[Entity]
	clock   *store.Clock
}

func newService(name string, clock *store.Clock) *Service {
	return &Service{
		name:    name,
		entries: store.New[Entity](name, store.WithRandomIDs()),
		clock:   clock,
	}
}

// Name returns the resource name this service stores.
func (s *Service) Name() string { return s.name }

// List returns every entity in insertion order.
func (s *Service) List() []Entity {
	items := s.entries.List()
	for i := range items {
		items[i] = items[i].clone()
	}
	return items
}

// Paginate returns a page of entities after cursor (an entity id).
func (s *Service) Paginate(cursor string, limit int) store.Page[Entity] {
	page := s.entries.Paginate(cursor, limit)
	for i := range page.Data {
		page.Data[i] = page.Data[i].clone()
	}
	return page
}

// Get returns the entity with id, or false.
func (s *Service) Get(id string) (Entity, bool) {
	e, ok := s.entries.Get(id)
	if !ok {
		return Entity{}, false
	}
	return e.clone(), true
}

// Create stores fields under a new id. Reserved keys in fields are ignored.
func (s *Service) Create(fields map[string]any) Entity {
	now := s.clock.Now()
	e := s.entries.Create(func(id string) Entity {
		return Entity{ID: id, CreatedAt: now, UpdatedAt: now, Fields: userFields(fields)}
	})
	return e.clone()
}

// Update shallow-merges patch into the entity with id. The id and createdAt
// never change; updatedAt moves to now but never backwards.
func (s *Service) Update(id string, patch map[string]any) (Entity, bool) {
	now := s.clock.Now()
	e, ok := s.entries.Update(id, func(cur Entity) Entity {
		next := cur.clone()
		maps.Copy(next.Fields, userFields(patch))
		next.UpdatedAt = later(now, cur.UpdatedAt)
		return next
	})
	if !ok {
		return Entity{}, false
	}
	return e.clone(), true
}

// Remove deletes the entity with id. Removing an unknown id returns false.
func (s *Service) Remove(id string) bool {
	return s.entries.Delete(id)
}

// Count returns the number of stored entities.
func (s *Service) Count() int {
	return s.entries.Count()
}

func (s *Service) load(items []Entity) {
	entries := make([]store.Entry[Entity], 0, len(items))
	for _, e := range items {
		entries = append(entries, store.Entry[Entity]{ID: e.ID, Item: e.clone()})
	}
	s.entries.Load(entries)
}

func later(a, b time.Time) time.Time {
	if a.Before(b) {
		return b
	}
	return a
}
