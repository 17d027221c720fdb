package fanout

import "errors"

// Sentinel kinds for delivery errors.
var (
	ErrChannelClosed   = errors.New("channel closed")
	ErrChannelFull     = errors.New("channel buffer full")
	ErrWebhookRejected = errors.New("webhook rejected delivery")
)
