package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrInvalidNotification = errors.New("invalid notification")
)
