// Package events carries in-process change notifications between otherwise
// independent views of the same collection. Delivery is fire-and-forget: a
// publish with no subscribers is fine, and a slow subscriber only ever misses
// intermediate signals, never the latest one.
package events

import "sync"

// TopicMediaUpdated fires after every media collection mutation. Listeners
// carry no payload; they re-fetch.
const TopicMediaUpdated = "media.updated"

type Bus struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan struct{}
}

func New() *Bus {
	return &Bus{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers a listener for topic. The returned channel receives a
// signal per publish (coalesced while the listener is busy). The cancel func
// removes the subscription; the channel is not closed.
func (b *Bus) Subscribe(topic string) (<-chan struct{}, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]chan struct{})
	}
	id := b.next
	b.next++

	ch := make(chan struct{}, 1)
	b.subs[topic][id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
	return ch, cancel
}

// Publish signals every current subscriber of topic without blocking.
func (b *Bus) Publish(topic string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs[topic] {
		select {
		case ch <- struct{}{}:
		default: // a signal is already pending for this subscriber
		}
	}
}
