package sched

import "errors"

// Sentinel kinds for scheduler errors.
var (
	ErrEmptyPopulation = errors.New("empty slide population")
)
