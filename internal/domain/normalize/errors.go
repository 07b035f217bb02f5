package normalize

import "errors"

// Sentinel kinds for normalizer errors.
var (
	ErrBadRecord = errors.New("malformed record")
)
