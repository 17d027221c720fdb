package auth

import "errors"

// Sentinel kinds for handshake errors.
var (
	ErrRejected = errors.New("handshake rejected")
)
