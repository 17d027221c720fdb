// Package catalog declares the ports to the external profile/opportunity
// catalog and provides an in-memory implementation used by tests and local
// wiring. The catalog owns filtering by status and date; FetchCandidates
// returns current, active candidates only.
package catalog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/grantwise/matchd/internal/domain/model"
)

// ProfileSource fetches profiles by id.
type ProfileSource interface {
	FetchProfile(ctx context.Context, profileID string) (model.Profile, error)
	ListProfileIDs(ctx context.Context) []string
}

// CandidateSource fetches the current set of active candidates.
type CandidateSource interface {
	FetchCandidates(ctx context.Context) ([]model.Candidate, error)
}

// InMemoryCatalog implements both sources over seeded fixtures.
type InMemoryCatalog struct {
	mu         sync.RWMutex
	profiles   map[string]model.Profile
	profileIDs []string // insertion order, keeps candidate-change fanout deterministic
	candidates []model.Candidate
	nowFn      func() time.Time
}

// Option applies a configuration option to the InMemoryCatalog.
type Option func(*InMemoryCatalog)

// WithProfiles seeds the catalog with profiles.
func WithProfiles(profiles ...model.Profile) Option {
	return func(c *InMemoryCatalog) {
		for _, p := range profiles {
			if _, ok := c.profiles[p.ID]; !ok {
				c.profileIDs = append(c.profileIDs, p.ID)
			}
			c.profiles[p.ID] = p
		}
	}
}

// WithCandidates seeds the catalog with candidates.
func WithCandidates(candidates ...model.Candidate) Option {
	return func(c *InMemoryCatalog) {
		c.candidates = append(c.candidates, candidates...)
	}
}

// WithCatalogNowFunc overrides the clock used for deadline filtering.
func WithCatalogNowFunc(now func() time.Time) Option {
	return func(c *InMemoryCatalog) {
		if now != nil {
			c.nowFn = now
		}
	}
}

// NewInMemoryCatalog creates a catalog with configuration options.
func NewInMemoryCatalog(opts ...Option) *InMemoryCatalog {
	c := &InMemoryCatalog{
		profiles: make(map[string]model.Profile),
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchProfile returns the profile or ErrProfileNotFound.
func (c *InMemoryCatalog) FetchProfile(_ context.Context, profileID string) (model.Profile, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[profileID]
	if !ok {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, profileID)
	}
	return p, nil
}

// ListProfileIDs returns all known profile ids in insertion order.
func (c *InMemoryCatalog) ListProfileIDs(_ context.Context) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.profileIDs))
	copy(out, c.profileIDs)
	return out
}

// FetchCandidates returns the seeded candidates that are currently open:
// status "active" (or unset) and deadline not yet passed.
func (c *InMemoryCatalog) FetchCandidates(_ context.Context) ([]model.Candidate, error) {
	now := c.nowFn()
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.Candidate, 0, len(c.candidates))
	for _, cand := range c.candidates {
		if cand.Status != "" && cand.Status != "active" {
			continue
		}
		if !cand.Deadline.IsZero() && cand.Deadline.Before(now) {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

// ReplaceCandidates swaps the candidate set, simulating an upstream catalog
// update. Used together with the change feed.
func (c *InMemoryCatalog) ReplaceCandidates(candidates []model.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates = make([]model.Candidate, len(candidates))
	copy(c.candidates, candidates)
}
