package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNoRun = errors.New("no persisted run for profile")
)
