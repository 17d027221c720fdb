package fanout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/grantwise/matchd/internal/domain/model"
)

const defaultWebhookTimeout = 5 * time.Second

// WebhookChannel pushes envelopes to an external HTTPS endpoint, one POST
// per delivery. Best-effort: a non-2xx response or transport error fails
// the attempt with no retry.
type WebhookChannel struct {
	endpoint string
	client   *http.Client
}

// WebhookOption applies a configuration option to a WebhookChannel.
type WebhookOption func(*WebhookChannel)

// WithHTTPClient replaces the HTTP client, e.g. for tests.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(c *WebhookChannel) {
		if client != nil {
			c.client = client
		}
	}
}

// WithWebhookTimeout bounds each delivery attempt.
func WithWebhookTimeout(d time.Duration) WebhookOption {
	return func(c *WebhookChannel) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// NewWebhookChannel creates a webhook channel for one endpoint.
func NewWebhookChannel(endpoint string, opts ...WebhookOption) *WebhookChannel {
	c := &WebhookChannel{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements registry.Channel.
func (c *WebhookChannel) Name() string { return "webhook" }

// Primary implements registry.Channel. Webhooks are only attempted for
// elevated priorities.
func (c *WebhookChannel) Primary() bool { return false }

// Send POSTs the envelope as JSON.
func (c *WebhookChannel) Send(ctx context.Context, env model.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrWebhookRejected, resp.StatusCode)
	}
	return nil
}

// Close implements registry.Channel. Nothing to release.
func (c *WebhookChannel) Close() error { return nil }
