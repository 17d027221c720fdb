package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrMalformedCandidate = errors.New("malformed candidate")
)
