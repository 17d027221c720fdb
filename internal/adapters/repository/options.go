package repository

import "time"

const defaultRunHistory = 5

// Option applies a configuration option to the InMemoryStore.
type Option func(*InMemoryStore)

// WithRunHistory sets how many runs are retained per profile.
func WithRunHistory(n int) Option {
	return func(s *InMemoryStore) {
		if n > 0 {
			s.history = n
		}
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *InMemoryStore) {
		if now != nil {
			s.nowFn = now
		}
	}
}
