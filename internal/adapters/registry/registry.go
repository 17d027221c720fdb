package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/grantwise/matchd/pkg/metrics"
)

// Registry is the concurrency-safe table of live sessions keyed by id.
// Every operation on a single id is linearizable with respect to the
// others, including sweeper eviction: heartbeat and eviction contend on
// the same mutex, so eviction always sees a consistent heartbeat value.
// No operation blocks beyond map access under the lock.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*record
	nowFn    func() time.Time
}

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(r *Registry) {
		if now != nil {
			r.nowFn = now
		}
	}
}

// New creates an empty registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*record),
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Put admits a session. The heartbeat starts at admission time.
// Returns ErrDuplicateSession when the id is already live.
func (r *Registry) Put(_ context.Context, s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[s.ID]; ok {
		return ErrDuplicateSession
	}
	topics := make(map[string]struct{}, len(s.Topics))
	for _, t := range s.Topics {
		topics[t] = struct{}{}
	}
	channels := make([]Channel, len(s.Channels))
	copy(channels, s.Channels)
	r.sessions[s.ID] = &record{
		id:            s.ID,
		userID:        s.UserID,
		orgID:         s.OrganizationID,
		topics:        topics,
		lastHeartbeat: r.nowFn(),
		channels:      channels,
	}
	metrics.RecordSessionAdmitted()
	metrics.UpdateActiveSessions(len(r.sessions))
	return nil
}

// Get returns a snapshot of the session or ErrSessionNotFound.
func (r *Registry) Get(_ context.Context, id string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return rec.snapshot(), nil
}

// Remove evicts a session and closes its channels. Removing an unknown id
// is a no-op; the bool reports whether a session was actually removed.
func (r *Registry) Remove(_ context.Context, id string) bool {
	r.mu.Lock()
	rec, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
		metrics.UpdateActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	// Channel teardown happens outside the lock; a Close that drags its
	// feet must not stall heartbeats.
	for _, ch := range rec.channels {
		_ = ch.Close()
	}
	return true
}

// Heartbeat refreshes the session's liveness timestamp.
func (r *Registry) Heartbeat(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	rec.lastHeartbeat = r.nowFn()
	metrics.RecordHeartbeat()
	return nil
}

// Subscribe adds topics to the session and returns the full joined set.
func (r *Registry) Subscribe(_ context.Context, id string, topics ...string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	for _, t := range topics {
		if t != "" {
			rec.topics[t] = struct{}{}
		}
	}
	joined := make([]string, 0, len(rec.topics))
	for t := range rec.topics {
		joined = append(joined, t)
	}
	sort.Strings(joined)
	return joined, nil
}

// Unsubscribe removes one topic from the session.
func (r *Registry) Unsubscribe(_ context.Context, id, topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	delete(rec.topics, topic)
	return nil
}

// ListByUser returns snapshots of all sessions belonging to a user.
func (r *Registry) ListByUser(_ context.Context, userID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Session
	for _, rec := range r.sessions {
		if rec.userID == userID {
			out = append(out, rec.snapshot())
		}
	}
	return out
}

// ListByOrganization returns snapshots of all sessions of an organization.
func (r *Registry) ListByOrganization(_ context.Context, orgID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Session
	for _, rec := range r.sessions {
		if rec.orgID == orgID {
			out = append(out, rec.snapshot())
		}
	}
	return out
}

// Count returns the number of live sessions.
func (r *Registry) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// stale returns ids whose heartbeat is older than the cutoff.
func (r *Registry) stale(cutoff time.Time) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []string
	for id, rec := range r.sessions {
		if rec.lastHeartbeat.Before(cutoff) {
			ids = append(ids, id)
		}
	}
	return ids
}

// evictIfStale removes the session only if its heartbeat is still older
// than cutoff when re-checked under the lock, so a heartbeat racing the
// sweep wins. Returns the evicted session's channels for teardown.
func (r *Registry) evictIfStale(id string, cutoff time.Time) ([]Channel, bool) {
	r.mu.Lock()
	rec, ok := r.sessions[id]
	if !ok || !rec.lastHeartbeat.Before(cutoff) {
		r.mu.Unlock()
		return nil, false
	}
	delete(r.sessions, id)
	metrics.UpdateActiveSessions(len(r.sessions))
	r.mu.Unlock()
	return rec.channels, true
}
