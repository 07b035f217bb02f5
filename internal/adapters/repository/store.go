// Package repository defines the display view store interface and errors.
//
// The store is the read side of the display sink: the playback machine
// writes every displayed slide and population replacement into it, and the
// HTTP API reads snapshots out of it. It never feeds state back into the
// machine.
package repository

import (
	"context"

	"github.com/mrdon/kioskd/internal/domain/model"
)

// View is a consistent snapshot of what the kiosk is showing.
type View struct {
	Index  int
	Slide  model.Slide
	Paused bool
	Epoch  int // increments on every population replacement
}

// Store provides read/write access to the display state.
type Store interface {
	// SetDisplayed records the currently displayed slide.
	SetDisplayed(ctx context.Context, index int, slide model.Slide)

	// SetPaused records the pause indicator.
	SetPaused(ctx context.Context, paused bool)

	// SetPopulation replaces the stored population and bumps the epoch.
	SetPopulation(ctx context.Context, population []model.Slide)

	// Current returns the current display snapshot.
	// Returns ErrNoSlide before the first display.
	Current(ctx context.Context) (View, error)

	// Population returns the stored population.
	Population(ctx context.Context) []model.Slide

	// Count returns the number of slides in the stored population.
	Count(ctx context.Context) int
}
