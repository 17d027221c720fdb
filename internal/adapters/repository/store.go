// Package repository defines the match-result store interface and its
// in-memory implementation. A run's results are persisted once, as an
// immutable snapshot; there is no partial persistence.
package repository

import (
	"context"
	"sync"
	"time"

	"github.com/grantwise/matchd/internal/domain/model"
)

// Run is one persisted pipeline run for a profile.
type Run struct {
	ProfileID string
	Results   []model.MatchResult
	SavedAt   time.Time
}

// Store provides write-once-per-run access to match results.
type Store interface {
	// SaveRun persists the full, ordered result list for one pipeline run.
	SaveRun(ctx context.Context, profileID string, results []model.MatchResult) error

	// LatestRun returns the most recent run for a profile.
	// Returns ErrNoRun when the profile has never completed a run.
	LatestRun(ctx context.Context, profileID string) (Run, error)

	// Count returns the number of profiles with at least one persisted run.
	Count(ctx context.Context) int
}

// InMemoryStore implements Store with a mutex-guarded map. Snapshots are
// copied on write and on read so callers can never mutate stored state.
type InMemoryStore struct {
	mu      sync.RWMutex
	runs    map[string][]Run // profileID -> runs, newest last
	history int
	nowFn   func() time.Time
}

// NewInMemoryStore creates a store with configuration options.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		runs:    make(map[string][]Run),
		history: defaultRunHistory,
		nowFn:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveRun stores a copy of results as the newest run for profileID,
// trimming history beyond the configured depth.
func (s *InMemoryStore) SaveRun(_ context.Context, profileID string, results []model.MatchResult) error {
	cp := make([]model.MatchResult, len(results))
	copy(cp, results)

	s.mu.Lock()
	defer s.mu.Unlock()
	runs := append(s.runs[profileID], Run{
		ProfileID: profileID,
		Results:   cp,
		SavedAt:   s.nowFn(),
	})
	if len(runs) > s.history {
		runs = runs[len(runs)-s.history:]
	}
	s.runs[profileID] = runs
	return nil
}

// LatestRun returns a copy of the newest run for profileID.
func (s *InMemoryStore) LatestRun(_ context.Context, profileID string) (Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := s.runs[profileID]
	if len(runs) == 0 {
		return Run{}, ErrNoRun
	}
	latest := runs[len(runs)-1]
	cp := make([]model.MatchResult, len(latest.Results))
	copy(cp, latest.Results)
	latest.Results = cp
	return latest, nil
}

// Count returns the number of profiles with persisted runs.
func (s *InMemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.runs)
}
