package registry

import (
	"context"
	"sync"
	"time"

	"github.com/grantwise/matchd/pkg/logger"
	"github.com/grantwise/matchd/pkg/metrics"
)

// Default sweeper configuration constants.
const (
	defaultSweepInterval = 30 * time.Second
	defaultTTLMultiplier = 3
)

// Sweeper periodically evicts sessions whose heartbeat has expired and
// releases their resources. Eviction is idempotent: a session already
// removed by disconnect is skipped.
type Sweeper struct {
	registry *Registry
	interval time.Duration
	ttl      time.Duration
	nowFn    func() time.Time
	logger   logger.Logger

	started  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	done     chan struct{}
}

// SweeperOption applies a configuration option to the Sweeper.
type SweeperOption func(*Sweeper)

// WithInterval sets the sweep interval. The default TTL tracks it at 3x
// unless overridden.
func WithInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithTTL sets the maximum allowed heartbeat age.
func WithTTL(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithSweeperNowFunc overrides the clock, for tests.
func WithSweeperNowFunc(now func() time.Time) SweeperOption {
	return func(s *Sweeper) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithSweeperLogger sets a custom logger.
func WithSweeperLogger(l logger.Logger) SweeperOption {
	return func(s *Sweeper) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSweeper creates a sweeper over the given registry.
func NewSweeper(registry *Registry, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		registry: registry,
		interval: defaultSweepInterval,
		nowFn:    time.Now,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl == 0 {
		s.ttl = s.interval * defaultTTLMultiplier
	}
	return s
}

// Start launches the sweep loop. It runs until ctx is canceled or Stop is
// called.
func (s *Sweeper) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true
	if s.logger == nil {
		s.logger = logger.Get().Named("sweeper")
	}
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopCh:
				return
			case <-ticker.C:
				s.SweepOnce(ctx)
			}
		}
	}()
}

// Stop terminates the sweep loop and waits for it to exit. Idempotent,
// and a no-op if the sweeper was never started.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	if s.started {
		<-s.done
	}
}

// SweepOnce evicts every session whose heartbeat is older than the TTL.
// Returns the number of sessions evicted.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	cutoff := s.nowFn().Add(-s.ttl)
	evicted := 0
	for _, id := range s.registry.stale(cutoff) {
		channels, ok := s.registry.evictIfStale(id, cutoff)
		if !ok {
			continue // heartbeat won the race, or already disconnected
		}
		for _, ch := range channels {
			_ = ch.Close()
		}
		evicted++
		metrics.RecordSessionEvicted()
		s.logger.Info(ctx, "evicted stale session", logger.String("sessionID", id))
	}
	return evicted
}
