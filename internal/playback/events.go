// Package playback owns the playback session and applies all state
// transitions. It is the single consumer of the playback event queue, which
// makes every transition atomic with respect to the session, the ledger and
// the current population.
package playback

import "github.com/mrdon/kioskd/internal/domain/model"

// Event is the closed union of inputs the state machine consumes. Timer
// ticks, commands, navigation token changes and refresh results all arrive
// through the same queue, so they can never interleave mid-transition.
type Event interface {
	isEvent()
	name() string
}

// Init starts playback. A non-empty Token locks onto the deep-linked slide.
type Init struct {
	Token string
}

// TimerTick advances rotation; only honored while auto-rotating.
type TimerTick struct{}

// TogglePause flips between auto-rotation and manual pause.
type TogglePause struct{}

// ManualNext advances to a scheduler-selected slide and pauses rotation.
type ManualNext struct{}

// ManualPrevious re-displays the most recently visited slide.
type ManualPrevious struct{}

// TokenSet activates an external navigation token.
type TokenSet struct {
	Token string
}

// TokenCleared deactivates the navigation token and resumes rotation.
type TokenCleared struct{}

// RefreshCompleted replaces the population with a freshly built one.
type RefreshCompleted struct {
	Population []model.Slide
}

func (Init) isEvent()             {}
func (TimerTick) isEvent()        {}
func (TogglePause) isEvent()      {}
func (ManualNext) isEvent()       {}
func (ManualPrevious) isEvent()   {}
func (TokenSet) isEvent()         {}
func (TokenCleared) isEvent()     {}
func (RefreshCompleted) isEvent() {}

func (Init) name() string             { return "init" }
func (TimerTick) name() string        { return "timer_tick" }
func (TogglePause) name() string      { return "toggle_pause" }
func (ManualNext) name() string       { return "manual_next" }
func (ManualPrevious) name() string   { return "manual_previous" }
func (TokenSet) name() string         { return "token_set" }
func (TokenCleared) name() string     { return "token_cleared" }
func (RefreshCompleted) name() string { return "refresh_completed" }
