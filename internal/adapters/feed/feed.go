// Package feed abstracts upstream data-change subscriptions. The core only
// depends on receiving a callback with the changed record, not on whatever
// mechanism (log tailing, polling, native change streams) backs the feed.
package feed

import (
	"context"
	"sync"
	"time"
)

// Change describes one upstream record change on a topic.
type Change struct {
	Topic      string
	RecordID   string
	Kind       string // "created", "updated", "deleted"
	OccurredAt time.Time
}

// Handler consumes one change. Handlers must not block: long work belongs
// on a queue, not in the dispatch path.
type Handler func(ctx context.Context, ch Change)

// Feed is a topic-keyed registry of change subscribers.
type Feed interface {
	Subscribe(topic string, h Handler)
	Publish(ctx context.Context, ch Change)
}

// InMemoryFeed dispatches changes to subscribers synchronously on the
// publisher's goroutine.
type InMemoryFeed struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// NewInMemoryFeed creates an empty feed.
func NewInMemoryFeed() *InMemoryFeed {
	return &InMemoryFeed{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a topic.
func (f *InMemoryFeed) Subscribe(topic string, h Handler) {
	if h == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = append(f.handlers[topic], h)
}

// Publish delivers the change to every subscriber of its topic.
func (f *InMemoryFeed) Publish(ctx context.Context, ch Change) {
	f.mu.RLock()
	handlers := make([]Handler, len(f.handlers[ch.Topic]))
	copy(handlers, f.handlers[ch.Topic])
	f.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, ch)
	}
}
