package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrDuplicateSession = errors.New("session id already registered")
)
