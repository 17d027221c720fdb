// Package app wires the matching core: pipeline, session registry,
// notification fanout and their supporting adapters.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/grantwise/matchd/internal/adapters/auth"
	"github.com/grantwise/matchd/internal/adapters/catalog"
	"github.com/grantwise/matchd/internal/adapters/fanout"
	"github.com/grantwise/matchd/internal/adapters/feed"
	jobqueue "github.com/grantwise/matchd/internal/adapters/mq/queue"
	workerpool "github.com/grantwise/matchd/internal/adapters/mq/worker"
	"github.com/grantwise/matchd/internal/adapters/registry"
	"github.com/grantwise/matchd/internal/adapters/repository"
	"github.com/grantwise/matchd/internal/domain/dedupe"
	"github.com/grantwise/matchd/internal/domain/feature"
	"github.com/grantwise/matchd/internal/domain/model"
	"github.com/grantwise/matchd/internal/domain/scoring"
	"github.com/grantwise/matchd/pkg/logger"
	"github.com/grantwise/matchd/pkg/metrics"
)

// CandidatesTopic is the change-feed topic that re-triggers matching.
const CandidatesTopic = "candidates"

// Service implements the API dependencies for the match-and-notify system.
type Service struct {
	mu sync.RWMutex

	// Core components
	builder  feature.Builder
	scorer   scoring.Scorer
	profiles catalog.ProfileSource
	sources  catalog.CandidateSource
	store    repository.Store
	deduper  dedupe.Deduper
	jobs     jobqueue.Queue
	pool     *workerpool.Pool
	registry *registry.Registry
	sweeper  *registry.Sweeper
	fanout   *fanout.Fanout
	changes  feed.Feed
	authn    auth.Authenticator

	// Configuration
	threshold       float64
	workerCount     int
	queueSize       int
	dedupeSize      int
	sweepInterval   time.Duration
	sessionTTL      time.Duration
	deliveryTimeout time.Duration
	streamBuffer    int
	nowFn           func() time.Time

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the profile and candidate sources.
func WithCatalog(profiles catalog.ProfileSource, candidates catalog.CandidateSource) Option {
	return func(s *Service) {
		s.profiles = profiles
		s.sources = candidates
	}
}

// WithStore sets the match-result store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithAuthenticator sets the handshake verifier.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(s *Service) {
		if a != nil {
			s.authn = a
		}
	}
}

// WithChangeFeed sets the upstream change feed.
func WithChangeFeed(f feed.Feed) Option {
	return func(s *Service) {
		if f != nil {
			s.changes = f
		}
	}
}

// WithScoreThreshold sets the qualifying overall score threshold.
func WithScoreThreshold(t float64) Option {
	return func(s *Service) {
		if t >= 0 && t < 1 {
			s.threshold = t
		}
	}
}

// WithWorkerCount sets the number of match-job workers.
func WithWorkerCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workerCount = n
		}
	}
}

// WithQueueSize bounds the match-job queue.
func WithQueueSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// WithDedupeSize bounds the notification idempotency cache.
func WithDedupeSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.dedupeSize = n
		}
	}
}

// WithSweep sets the liveness sweep interval and TTL. A zero TTL defaults
// to 3x the interval.
func WithSweep(interval, ttl time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithDeliveryTimeout bounds each per-channel delivery attempt.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.deliveryTimeout = d
		}
	}
}

// WithStreamBuffer sets the per-session stream channel buffer.
func WithStreamBuffer(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.streamBuffer = n
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNowFunc overrides the clock, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		threshold:       0.30,
		workerCount:     4,
		queueSize:       10_000,
		dedupeSize:      50_000,
		sweepInterval:   30 * time.Second,
		deliveryTimeout: 3 * time.Second,
		streamBuffer:    64,
		nowFn:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.profiles == nil || s.sources == nil {
		return fmt.Errorf("app: catalog sources are required")
	}

	s.logger.Info(ctx, "starting match service...")

	if s.builder == nil {
		s.builder = feature.NewBuilder()
	}
	if s.scorer == nil {
		s.scorer = scoring.New()
	}
	if s.store == nil {
		s.store = repository.NewInMemoryStore()
	}
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.jobs = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.registry = registry.New(registry.WithNowFunc(s.nowFn))
	s.fanout = fanout.New(s.registry,
		fanout.WithDeliveryTimeout(s.deliveryTimeout),
		fanout.WithNowFunc(s.nowFn),
		fanout.WithLogger(s.logger.Named("fanout")),
	)
	s.sweeper = registry.NewSweeper(s.registry,
		registry.WithInterval(s.sweepInterval),
		registry.WithTTL(s.sessionTTL),
		registry.WithSweeperNowFunc(s.nowFn),
		registry.WithSweeperLogger(s.logger.Named("sweeper")),
	)
	s.sweeper.Start(ctx)

	s.pool = workerpool.NewPool(s.workerCount, s.jobs, s)
	s.pool.Start(ctx)

	if s.changes != nil {
		s.changes.Subscribe(CandidatesTopic, s.onCandidateChange)
	}

	s.started = true
	s.logger.Info(ctx, "match service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Float64("threshold", s.threshold),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping match service...")

	if s.jobs != nil {
		_ = s.jobs.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	s.started = false
	s.logger.Info(ctx, "match service stopped")
}

// onCandidateChange re-enqueues matching for every known profile when the
// candidate catalog changes. Handlers must not block, so this only enqueues.
func (s *Service) onCandidateChange(ctx context.Context, ch feed.Change) {
	for _, profileID := range s.profiles.ListProfileIDs(ctx) {
		s.EnqueueMatch(ctx, profileID, "candidate-change")
	}
}

// EnqueueMatch submits a match job for asynchronous processing.
func (s *Service) EnqueueMatch(ctx context.Context, profileID, reason string) bool {
	ok := s.jobs.Enqueue(ctx, model.MatchJob{
		JobID:      uuid.NewString(),
		ProfileID:  profileID,
		Reason:     reason,
		EnqueuedAt: s.nowFn(),
	})
	if !ok {
		s.logger.Warn(ctx, "match job rejected",
			logger.String("profileID", profileID),
			logger.String("reason", reason),
		)
	}
	return ok
}

// RunMatch satisfies the worker Runner interface: run the pipeline and
// discard the result list.
func (s *Service) RunMatch(ctx context.Context, profileID string) error {
	_, err := s.Run(ctx, profileID)
	return err
}

// SubmitNotification validates, deduplicates and fans out a notification.
// The returned bool reports a duplicate submission, which is acknowledged
// without re-delivery.
func (s *Service) SubmitNotification(ctx context.Context, n model.Notification) (model.DeliveryStatus, bool, error) {
	if err := validateNotification(n); err != nil {
		return model.StatusPending, false, err
	}
	if s.deduper.SeenAndRecord(ctx, n.ID) {
		metrics.RecordNotificationDuplicate()
		return model.StatusPending, true, nil
	}
	metrics.RecordNotificationSubmitted()
	n.Status = model.StatusPending
	status := s.fanout.Deliver(ctx, n)
	return status, false, nil
}

func validateNotification(n model.Notification) error {
	switch {
	case n.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidNotification)
	case n.TargetUserID == "" && n.TargetOrganizationID == "":
		return fmt.Errorf("%w: missing target", ErrInvalidNotification)
	case !n.Priority.Valid():
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidNotification, n.Priority)
	}
	return nil
}

// AdmitSession verifies the handshake and registers a new session with a
// stream channel, plus a webhook channel when a callback URL is supplied.
// A failed handshake never creates a session.
func (s *Service) AdmitSession(ctx context.Context, token, tenantID string, topics []string, webhookURL string) (registry.Session, error) {
	identity, err := s.authn.Verify(ctx, token, tenantID)
	if err != nil {
		return registry.Session{}, err
	}

	channels := []registry.Channel{
		fanout.NewStreamChannel(fanout.WithBuffer(s.streamBuffer)),
	}
	if webhookURL != "" {
		channels = append(channels, fanout.NewWebhookChannel(webhookURL))
	}
	sess := registry.Session{
		ID:             uuid.NewString(),
		UserID:         identity.UserID,
		OrganizationID: identity.OrganizationID,
		Topics:         topics,
		Channels:       channels,
	}
	if err := s.registry.Put(ctx, sess); err != nil {
		for _, ch := range channels {
			_ = ch.Close()
		}
		return registry.Session{}, err
	}
	return s.registry.Get(ctx, sess.ID)
}

// Heartbeat refreshes a session's liveness.
func (s *Service) Heartbeat(ctx context.Context, sessionID string) error {
	return s.registry.Heartbeat(ctx, sessionID)
}

// Disconnect removes a session and releases its channels. Idempotent.
func (s *Service) Disconnect(ctx context.Context, sessionID string) {
	s.registry.Remove(ctx, sessionID)
}

// GetSession returns a session snapshot.
func (s *Service) GetSession(ctx context.Context, sessionID string) (registry.Session, error) {
	return s.registry.Get(ctx, sessionID)
}

// SubscribeTopics adds topics to a session, returning the joined set.
func (s *Service) SubscribeTopics(ctx context.Context, sessionID string, topics []string) ([]string, error) {
	return s.registry.Subscribe(ctx, sessionID, topics...)
}

// UnsubscribeTopic removes a topic from a session.
func (s *Service) UnsubscribeTopic(ctx context.Context, sessionID, topic string) error {
	return s.registry.Unsubscribe(ctx, sessionID, topic)
}

// LatestRun returns the most recent persisted run for a profile.
func (s *Service) LatestRun(ctx context.Context, profileID string) (repository.Run, error) {
	return s.store.LatestRun(ctx, profileID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats(ctx context.Context) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"threshold":   s.threshold,
	}
	if s.started {
		stats["queueLength"] = s.jobs.Len(ctx)
		stats["activeSessions"] = s.registry.Count(ctx)
		stats["profilesWithRuns"] = s.store.Count(ctx)
		stats["dedupeSize"] = s.deduper.Size()
	}
	return stats
}
