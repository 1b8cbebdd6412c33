package realtime

import "sync"

// subscriber is one listener registration with its own unbounded mailbox.
type subscriber struct {
	id      uint64
	channel string
	handler Handler

	mu    sync.Mutex
	queue []Event

	wake     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func newSubscriber(id uint64, channel string, h Handler) *subscriber {
	return &subscriber{
		id:      id,
		channel: channel,
		handler: h,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// enqueue never blocks.
func (s *subscriber) enqueue(evt Event) {
	s.mu.Lock()
	s.queue = append(s.queue, evt)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) run(deliver func(*subscriber, Event)) {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			batch := s.queue
			s.queue = nil
			s.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, evt := range batch {
				select {
				case <-s.done:
					return
				default:
				}
				deliver(s, evt)
			}
		}
	}
}

func (s *subscriber) stop() {
	s.stopOnce.Do(func() { close(s.done) })
}
