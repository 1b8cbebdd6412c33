// Package realtime implements the in-process publish/subscribe bus: a
// bounded log of recent events plus per-channel listeners.
//
// Publish appends to the log and hands the event to each listener's mailbox;
// a dedicated goroutine per listener drains the mailbox in order. A slow or
// panicking listener therefore never delays the publisher or other
// listeners. Delivery is best-effort: events still queued when a listener
// unsubscribes are dropped.
package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wondertwin-ai/backoffice/pkg/ring"
	"github.com/wondertwin-ai/backoffice/pkg/store"
)

// DefaultBufferSize is the number of recent events retained across all
// channels.
const DefaultBufferSize = 100

// Event is a published realtime event.
type Event struct {
	ID        string    `json:"id"`
	Channel   string    `json:"channel"`
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// Handler receives events for the channel it subscribed to.
type Handler func(Event)

// Recorder receives bus activity counts. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordPublish()
	AddSubscribers(delta int)
	RecordListenerFailure()
}

type nopRecorder struct{}

func (nopRecorder) RecordPublish()         {}
func (nopRecorder) AddSubscribers(int)     {}
func (nopRecorder) RecordListenerFailure() {}

// Bus is the realtime event bus.
type Bus struct {
	mu     sync.Mutex
	log    *ring.Buffer[Event]
	subs   map[string]map[uint64]*subscriber
	nextID uint64
	closed bool

	clock  *store.Clock
	logger *zap.Logger
	rec    Recorder
}

// NewBus creates a bus retaining the most recent size events. A size below
// one uses DefaultBufferSize. clock, logger and rec may be nil.
func NewBus(size int, clock *store.Clock, logger *zap.Logger, rec Recorder) *Bus {
	if size < 1 {
		size = DefaultBufferSize
	}
	if clock == nil {
		clock = store.NewClock()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if rec == nil {
		rec = nopRecorder{}
	}
	return &Bus{
		log:    ring.New[Event](size),
		subs:   make(map[string]map[uint64]*subscriber),
		clock:  clock,
		logger: logger,
		rec:    rec,
	}
}

// Publish stamps and records an event, then queues it for every listener
// currently subscribed to channel.
func (b *Bus) Publish(channel, eventType string, payload any) Event {
	evt := Event{
		ID:        uuid.NewString(),
		Channel:   channel,
		Type:      eventType,
		Payload:   payload,
		CreatedAt: b.clock.Now(),
	}

	// Appending and queueing under one lock keeps every mailbox in log order.
	b.mu.Lock()
	b.log.Add(evt)
	for _, s := range b.subs[channel] {
		s.enqueue(evt)
	}
	b.mu.Unlock()

	b.rec.RecordPublish()
	return evt
}

// Subscribe registers h for channel. The returned function removes exactly
// this registration; calling it more than once is a no-op.
func (b *Bus) Subscribe(channel string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}
	b.nextID++
	s := newSubscriber(b.nextID, channel, h)
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[uint64]*subscriber)
	}
	b.subs[channel][s.id] = s
	b.mu.Unlock()

	b.rec.AddSubscribers(1)
	go s.run(b.deliver)

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(s) })
	}
}

// ListRecent returns the retained events, oldest first. A non-empty channel
// restricts the result to that channel.
func (b *Bus) ListRecent(channel string) []Event {
	if channel == "" {
		return b.log.Entries()
	}
	return b.log.Filter(func(e Event) bool { return e.Channel == channel })
}

// Subscribers returns the number of listeners on channel.
func (b *Bus) Subscribers(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[channel])
}

// Load replaces the retained events. Listeners are not notified.
func (b *Bus) Load(events []Event) {
	b.log.Load(events)
}

// Reset drops the retained events. Listeners stay subscribed.
func (b *Bus) Reset() {
	b.log.Clear()
}

// Close unsubscribes every listener and stops their goroutines. Later
// subscriptions are ignored; Publish keeps recording events.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	var all []*subscriber
	for _, set := range b.subs {
		for _, s := range set {
			all = append(all, s)
		}
	}
	b.subs = make(map[string]map[uint64]*subscriber)
	b.mu.Unlock()

	for _, s := range all {
		s.stop()
	}
	b.rec.AddSubscribers(-len(all))
}

func (b *Bus) remove(s *subscriber) {
	b.mu.Lock()
	set := b.subs[s.channel]
	_, present := set[s.id]
	if present {
		delete(set, s.id)
		if len(set) == 0 {
			delete(b.subs, s.channel)
		}
	}
	b.mu.Unlock()

	s.stop()
	if present {
		b.rec.AddSubscribers(-1)
	}
}

// deliver invokes one listener, containing any panic to that invocation.
func (b *Bus) deliver(s *subscriber, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			b.rec.RecordListenerFailure()
			b.logger.Warn("realtime listener panicked",
				zap.String("channel", evt.Channel),
				zap.String("event_id", evt.ID),
				zap.Uint64("subscriber", s.id),
				zap.Any("panic", r),
			)
		}
	}()
	s.handler(evt)
}
