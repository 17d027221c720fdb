package fanout

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/grantwise/matchd/internal/adapters/registry"
	"github.com/grantwise/matchd/internal/domain/model"
	"github.com/grantwise/matchd/pkg/logger"
	"github.com/grantwise/matchd/pkg/metrics"
)

const defaultDeliveryTimeout = 3 * time.Second

// SessionResolver is the read-only view of the session registry the fanout
// needs. The fanout never writes session state.
type SessionResolver interface {
	ListByUser(ctx context.Context, userID string) []registry.Session
	ListByOrganization(ctx context.Context, orgID string) []registry.Session
}

// Fanout resolves target sessions and delivers one notification over their
// channels.
type Fanout struct {
	resolver SessionResolver
	timeout  time.Duration
	nowFn    func() time.Time
	logger   logger.Logger
}

// Option applies a configuration option to the Fanout.
type Option func(*Fanout)

// WithDeliveryTimeout bounds each per-channel delivery attempt.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(f *Fanout) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithNowFunc overrides the delivery timestamp clock, for tests.
func WithNowFunc(now func() time.Time) Option {
	return func(f *Fanout) {
		if now != nil {
			f.nowFn = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(f *Fanout) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a fanout over the given session resolver.
func New(resolver SessionResolver, opts ...Option) *Fanout {
	f := &Fanout{
		resolver: resolver,
		timeout:  defaultDeliveryTimeout,
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = logger.Get().Named("fanout")
	}
	return f
}

// Deliver fans the notification out to every resolved session. Elevated
// priorities attempt every channel a session exposes; normal and low only
// the primary ones. All attempts run concurrently and independently: one
// failure never blocks or fails another. The aggregate status is sent when
// at least one attempt succeeded, failed otherwise, including when the
// target has no live sessions. Per-channel failures surface only in logs
// and metrics.
func (f *Fanout) Deliver(ctx context.Context, n model.Notification) model.DeliveryStatus {
	var sessions []registry.Session
	if n.TargetUserID != "" {
		sessions = f.resolver.ListByUser(ctx, n.TargetUserID)
	} else {
		sessions = f.resolver.ListByOrganization(ctx, n.TargetOrganizationID)
	}

	var wg sync.WaitGroup
	var delivered atomic.Int64
	for _, sess := range sessions {
		for _, ch := range f.eligibleChannels(sess, n) {
			wg.Add(1)
			go func(sessionID string, ch registry.Channel) {
				defer wg.Done()
				if f.attempt(ctx, sessionID, ch, n) {
					delivered.Add(1)
				}
			}(sess.ID, ch)
		}
	}
	wg.Wait()

	if delivered.Load() > 0 {
		metrics.RecordNotificationSent()
		return model.StatusSent
	}
	metrics.RecordNotificationFailed()
	return model.StatusFailed
}

// eligibleChannels applies the priority rule, plus the notification's own
// channel restriction when it names specific channels.
func (f *Fanout) eligibleChannels(sess registry.Session, n model.Notification) []registry.Channel {
	var out []registry.Channel
	for _, ch := range sess.Channels {
		if !n.Priority.Elevated() && !ch.Primary() {
			continue
		}
		if len(n.Channels) > 0 && !containsName(n.Channels, ch.Name()) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

// attempt performs one timeout-bounded delivery. Returns true on success.
func (f *Fanout) attempt(ctx context.Context, sessionID string, ch registry.Channel, n model.Notification) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	env := model.Envelope{
		Notification: n,
		SessionID:    sessionID,
		DeliveredAt:  f.nowFn(),
	}
	err := ch.Send(attemptCtx, env)
	metrics.RecordDeliveryLatency(float64(time.Since(start).Milliseconds()))
	metrics.RecordDeliveryAttempt()
	if err != nil {
		metrics.RecordDeliveryFailure()
		f.logger.Warn(ctx, "channel delivery failed",
			logger.String("notificationID", n.ID),
			logger.String("sessionID", sessionID),
			logger.String("channel", ch.Name()),
			logger.Error(err),
		)
		return false
	}
	return true
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
