// Package fanout delivers notifications to the live sessions of a target
// user or organization, concurrently per session and per channel, with each
// attempt bounded by a timeout. Delivery is best-effort and at-most-once:
// no retries, no redelivery queue.
package fanout

import (
	"context"
	"sync"
	"time"

	"github.com/grantwise/matchd/internal/domain/model"
)

// Default stream channel configuration constants.
const (
	defaultStreamBuffer      = 64
	defaultStreamSendTimeout = 2 * time.Second
)

// StreamChannel feeds a long-lived event stream (SSE) consumer through a
// bounded buffer. Send fails fast when the buffer stays full past the send
// timeout, so one slow consumer cannot stall a broadcast.
type StreamChannel struct {
	mu      sync.RWMutex
	buf     chan model.Envelope
	timeout time.Duration
	closed  bool
}

// StreamOption applies a configuration option to a StreamChannel.
type StreamOption func(*StreamChannel)

// WithBuffer sets the stream buffer size.
func WithBuffer(n int) StreamOption {
	return func(c *StreamChannel) {
		if n > 0 {
			c.buf = make(chan model.Envelope, n)
		}
	}
}

// WithSendTimeout bounds how long Send waits on a full buffer.
func WithSendTimeout(d time.Duration) StreamOption {
	return func(c *StreamChannel) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewStreamChannel creates a stream channel with configuration options.
func NewStreamChannel(opts ...StreamOption) *StreamChannel {
	c := &StreamChannel{
		buf:     make(chan model.Envelope, defaultStreamBuffer),
		timeout: defaultStreamSendTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements registry.Channel.
func (c *StreamChannel) Name() string { return "stream" }

// Primary implements registry.Channel. The stream is the session's primary
// delivery mechanism.
func (c *StreamChannel) Primary() bool { return true }

// Send enqueues the envelope for the stream consumer. Fails with
// ErrChannelClosed after Close and ErrChannelFull when the buffer stays
// full past the send timeout or ctx expires first.
func (c *StreamChannel) Send(ctx context.Context, env model.Envelope) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrChannelClosed
	}
	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case c.buf <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrChannelFull
	}
}

// Receive exposes the consumer side of the buffer. The channel is closed
// by Close.
func (c *StreamChannel) Receive() <-chan model.Envelope {
	return c.buf
}

// Close releases the buffer. Idempotent; Send fails afterwards.
func (c *StreamChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.buf)
	return nil
}
