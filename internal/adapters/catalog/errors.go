package catalog

import "errors"

// Sentinel kinds for catalog errors.
var (
	ErrProfileNotFound = errors.New("profile not found")
)
