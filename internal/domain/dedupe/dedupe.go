// Package dedupe tracks already-submitted notification ids so a resubmitted
// notification is acknowledged without being fanned out again.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen notification ids for at-most-once submission.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen, false if newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set. Used when a notification was
	// marked seen but never actually submitted (e.g. queue backpressure).
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked ids.
	Size() int64
}

// inMemoryDeduper implements Deduper with a map plus a FIFO ring of ids.
// When the ring is full the oldest id is dropped, so memory stays bounded
// while recent resubmissions are still caught. maxSize <= 0 disables
// eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	next    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{maxSize: defaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}
	if d.maxSize > 0 {
		if old := d.ring[d.next]; old != "" {
			if _, ok := d.seen[old]; ok {
				delete(d.seen, old)
				d.size.Add(-1)
			}
		}
		d.ring[d.next] = id
		d.next = (d.next + 1) % d.maxSize
	}
	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		delete(d.seen, id)
		d.size.Add(-1)
	}
	// The stale ring slot is left in place; eviction skips ids that are no
	// longer in the map.
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
