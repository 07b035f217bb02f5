package source

import "errors"

// Sentinel kinds for source fetch errors.
var (
	ErrFetch    = errors.New("source fetch failed")
	ErrNotFound = errors.New("document not found")
)

// isNotFound reports whether err wraps ErrNotFound.
func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
