package repository

import "errors"

// Sentinel kinds for view store errors.
var (
	ErrNoSlide = errors.New("no slide displayed yet")
)
