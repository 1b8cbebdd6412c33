// Package notifications keeps in-app notifications per user and announces
// changes on the "notifications" realtime channel.
package notifications

import (
	"time"

	"github.com/wondertwin-ai/backoffice/internal/realtime"
	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// Channel is the realtime channel notification events are published on.
const Channel = "notifications"

// Event types published on Channel.
const (
	EventCreated = "notification.created"
	EventRead    = "notification.read"
)

// DefaultType is used when a notification does not name one.
const DefaultType = "info"

// Notification is a message for a user.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// SendInput is a validated send request.
type SendInput struct {
	UserID string
	Title  string
	Body   string
	Type   string
	Read   bool
}

// Publisher receives notification events. The realtime bus satisfies it.
type Publisher interface {
	Publish(channel, eventType string, payload any) realtime.Event
}

// Service owns notifications.
type Service struct {
	items     *store.Store[Notification]
	clock     *store.Clock
	publisher Publisher
}

// New creates a notification service. A nil publisher disables events.
func New(clock *store.Clock, publisher Publisher) *Service {
	return &Service{
		items:     store.New[Notification]("ntf", store.WithRandomIDs()),
		clock:     clock,
		publisher: publisher,
	}
}

// Send stores a notification and publishes EventCreated.
func (s *Service) Send(in SendInput) Notification {
	typ := in.Type
	if typ == "" {
		typ = DefaultType
	}
	n := s.items.Create(func(id string) Notification {
		return Notification{
			ID:        id,
			UserID:    in.UserID,
			Title:     in.Title,
			Body:      in.Body,
			Type:      typ,
			Read:      in.Read,
			CreatedAt: s.clock.Now(),
		}
	})
	s.publish(EventCreated, n)
	return n
}

// List returns the notifications of userID, newest first. An empty userID
// returns every notification.
func (s *Service) List(userID string) []Notification {
	if userID == "" {
		return s.items.ListNewestFirst()
	}
	return s.items.FilterNewestFirst(func(n Notification) bool { return n.UserID == userID })
}

// MarkRead marks the notification read. Marking an already read
// notification returns it unchanged and publishes nothing.
func (s *Service) MarkRead(id string) (Notification, bool) {
	var changed bool
	n, ok := s.items.Update(id, func(cur Notification) Notification {
		changed = !cur.Read
		cur.Read = true
		return cur
	})
	if ok && changed {
		s.publish(EventRead, n)
	}
	return n, ok
}

func (s *Service) publish(eventType string, n Notification) {
	if s.publisher != nil {
		s.publisher.Publish(Channel, eventType, n)
	}
}

// Snapshot returns every notification in send order.
func (s *Service) Snapshot() []Notification {
	return s.items.List()
}

// Load replaces all notifications without publishing.
func (s *Service) Load(items []Notification) {
	entries := make([]store.Entry[Notification], 0, len(items))
	for _, n := range items {
		entries = append(entries, store.Entry[Notification]{ID: n.ID, Item: n})
	}
	s.items.Load(entries)
}

// Reset removes every notification.
func (s *Service) Reset() {
	s.items.Reset()
}
