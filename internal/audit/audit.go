// Package audit keeps the append-only audit trail.
package audit

import (
	"time"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// ActionClientError is the action recorded for browser error reports.
const ActionClientError = "client.error"

// Event is an audit trail entry.
type Event struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	ActorID   string         `json:"actorId,omitempty"`
	Entity    string         `json:"entity,omitempty"`
	EntityID  string         `json:"entityId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// LogInput is a validated audit entry.
type LogInput struct {
	Action   string
	ActorID  string
	Entity   string
	EntityID string
	Metadata map[string]any
}

// Filter selects events. Empty fields match everything.
type Filter struct {
	Action  string
	ActorID string
}

func (f Filter) match(e Event) bool {
	return (f.Action == "" || e.Action == f.Action) &&
		(f.ActorID == "" || e.ActorID == f.ActorID)
}

// Service owns the audit trail.
type Service struct {
	events *store.Store[Event]
	clock  *store.Clock
}

// New creates an audit service.
func New(clock *store.Clock) *Service {
	return &Service{events: store.New[Event]("audit", store.WithRandomIDs()), clock: clock}
}

// Log appends an event.
func (s *Service) Log(in LogInput) Event {
	return s.events.Create(func(id string) Event {
		return Event{
			ID:        id,
			Action:    in.Action,
			ActorID:   in.ActorID,
			Entity:    in.Entity,
			EntityID:  in.EntityID,
			Metadata:  in.Metadata,
			CreatedAt: s.clock.Now(),
		}
	})
}

// List returns the events matching f, newest first.
func (s *Service) List(f Filter) []Event {
	return s.events.FilterNewestFirst(f.match)
}

// Snapshot returns the trail in log order.
func (s *Service) Snapshot() []Event {
	return s.events.List()
}

// Load replaces the trail.
func (s *Service) Load(events []Event) {
	entries := make([]store.Entry[Event], 0, len(events))
	for _, e := range events {
		entries = append(entries, store.Entry[Event]{ID: e.ID, Item: e})
	}
	s.events.Load(entries)
}

// Reset empties the trail.
func (s *Service) Reset() {
	s.events.Reset()
}
