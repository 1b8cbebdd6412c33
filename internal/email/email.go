// Package email keeps the outbox of messages sent through the backoffice.
// Nothing leaves the process: every message is recorded with the configured
// provider name and a "queued" status.
package email

import (
	"time"

	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// StatusQueued is the status of every accepted message.
const StatusQueued = "queued"

// DefaultProvider names the in-memory provider.
const DefaultProvider = "memory"

// Message is an outbox entry.
type Message struct {
	ID        string    `json:"id"`
	From      string    `json:"from"`
	To        []string  `json:"to"`
	CC        []string  `json:"cc,omitempty"`
	BCC       []string  `json:"bcc,omitempty"`
	Subject   string    `json:"subject"`
	Text      string    `json:"text,omitempty"`
	HTML      string    `json:"html,omitempty"`
	Status    string    `json:"status"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"createdAt"`
}

// SendInput is a validated send request.
type SendInput struct {
	From    string
	To      []string
	CC      []string
	BCC     []string
	Subject string
	Text    string
	HTML    string
}

// Result is returned to the sender.
type Result struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Provider string `json:"provider"`
}

// Config configures the service.
type Config struct {
	Provider    string
	DefaultFrom string
}

// Service records sent messages.
type Service struct {
	outbox *store.Store[Message]
	clock  *store.Clock
	cfg    Config
}

// New creates an email service.
func New(cfg Config, clock *store.Clock) *Service {
	if cfg.Provider == "" {
		cfg.Provider = DefaultProvider
	}
	return &Service{
		outbox: store.New[Message]("email"),
		clock:  clock,
		cfg:    cfg,
	}
}

// Send records the message in the outbox. An empty From uses the configured
// default sender.
func (s *Service) Send(in SendInput) Result {
	from := in.From
	if from == "" {
		from = s.cfg.DefaultFrom
	}
	msg := s.outbox.Create(func(id string) Message {
		return Message{
			ID:        id,
			From:      from,
			To:        in.To,
			CC:        in.CC,
			BCC:       in.BCC,
			Subject:   in.Subject,
			Text:      in.Text,
			HTML:      in.HTML,
			Status:    StatusQueued,
			Provider:  s.cfg.Provider,
			CreatedAt: s.clock.Now(),
		}
	})
	return Result{ID: msg.ID, Status: msg.Status, Provider: msg.Provider}
}

// Outbox returns every message, newest first.
func (s *Service) Outbox() []Message {
	return s.outbox.ListNewestFirst()
}

// Snapshot returns the outbox in send order.
func (s *Service) Snapshot() []Message {
	return s.outbox.List()
}

// Load replaces the outbox with messages in send order.
func (s *Service) Load(messages []Message) {
	s.outbox.Load(entries(messages))
}

// Reset empties the outbox.
func (s *Service) Reset() {
	s.outbox.Reset()
}

func entries(messages []Message) []store.Entry[Message] {
	out := make([]store.Entry[Message], 0, len(messages))
	for _, m := range messages {
		out = append(out, store.Entry[Message]{ID: m.ID, Item: m})
	}
	return out
}
