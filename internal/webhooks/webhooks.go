// Package webhooks records inbound webhook deliveries from third-party
// providers.
package webhooks

import (
	"time"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// Event is a received webhook delivery.
type Event struct {
	ID        string         `json:"id"`
	Provider  string         `json:"provider"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	Verified  bool           `json:"verified"`
	CreatedAt time.Time      `json:"createdAt"`
}

// IngestInput is a validated delivery. Verified reports whether the caller
// checked the delivery's signature.
type IngestInput struct {
	Provider string
	Type     string
	Payload  map[string]any
	Verified bool
}

// Service owns received webhook events.
type Service struct {
	events *store.Store[Event]
	clock  *store.Clock
}

// New creates a webhook service.
func New(clock *store.Clock) *Service {
	return &Service{events: store.New[Event]("whk", store.WithRandomIDs()), clock: clock}
}

// Ingest records a delivery.
func (s *Service) Ingest(in IngestInput) Event {
	return s.events.Create(func(id string) Event {
		return Event{
			ID:        id,
			Provider:  in.Provider,
			Type:      in.Type,
			Payload:   in.Payload,
			Verified:  in.Verified,
			CreatedAt: s.clock.Now(),
		}
	})
}

// List returns the events from provider, newest first. An empty provider
// returns every event.
func (s *Service) List(provider string) []Event {
	if provider == "" {
		return s.events.ListNewestFirst()
	}
	return s.events.FilterNewestFirst(func(e Event) bool { return e.Provider == provider })
}

// Snapshot returns every event in arrival order.
func (s *Service) Snapshot() []Event {
	return s.events.List()
}

// Load replaces all events.
func (s *Service) Load(events []Event) {
	entries := make([]store.Entry[Event], 0, len(events))
	for _, e := range events {
		entries = append(entries, store.Entry[Event]{ID: e.ID, Item: e})
	}
	s.events.Load(entries)
}

// Reset removes every event.
func (s *Service) Reset() {
	s.events.Reset()
}
