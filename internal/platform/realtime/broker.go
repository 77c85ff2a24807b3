package realtime

import (
	"context"
	"sync"
)

// Event is a single realtime notification published to a topic.
type Event struct {
	Topic   string `json:"topic"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

// Subscription receives events for one topic until closed.
type Subscription struct {
	broker *Broker
	topic  string
	events chan Event
	once   sync.Once
}

// Events is the receive side of the subscription. The channel closes
// when the subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

func (s *Subscription) Topic() string {
	return s.topic
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.broker.remove(s)
		close(s.events)
	})
}

// Broker is an in-process topic fanout. Delivery is best effort: a
// subscriber that stops draining its channel misses events instead of
// blocking publishers.
type Broker struct {
	mu         sync.RWMutex
	topics     map[string]map[*Subscription]struct{}
	bufferSize int
	closed     bool
}

func NewBroker(bufferSize int) *Broker {
	if bufferSize < 1 {
		bufferSize = 16
	}
	return &Broker{
		topics:     make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

func (b *Broker) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		broker: b,
		topic:  topic,
		events: make(chan Event, b.bufferSize),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(sub.events)
		sub.once.Do(func() {})
		return sub
	}

	subs, ok := b.topics[topic]
	if !ok {
		subs = make(map[*Subscription]struct{})
		b.topics[topic] = subs
	}
	subs[sub] = struct{}{}

	return sub
}

// Publish delivers the event to every current subscriber of its topic.
// It never blocks on slow subscribers.
func (b *Broker) Publish(ctx context.Context, event Event) {
	if err := ctx.Err(); err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	for sub := range b.topics[event.Topic] {
		select {
		case sub.events <- event:
		default:
		}
	}
}

// SubscriberCount reports the current number of subscribers for topic.
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.topics[topic])
}

// Close shuts the broker down and closes every open subscription.
func (b *Broker) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	var open []*Subscription
	for _, subs := range b.topics {
		for sub := range subs {
			open = append(open, sub)
		}
	}
	b.topics = make(map[string]map[*Subscription]struct{})
	b.mu.Unlock()

	for _, sub := range open {
		sub.once.Do(func() { close(sub.events) })
	}
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.topics[sub.topic]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.topics, sub.topic)
	}
}
