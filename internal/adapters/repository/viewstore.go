package repository

import (
	"context"
	"sync"

	"github.com/mrdon/kioskd/internal/domain/model"
)

// ViewStore implements Store with a mutex-guarded snapshot. Writes come from
// the single playback consumer; reads come from HTTP handler goroutines.
type ViewStore struct {
	mu         sync.RWMutex
	view       View
	population []model.Slide
	displayed  bool
}

// NewViewStore creates an empty view store.
func NewViewStore(ctx context.Context) *ViewStore {
	return &ViewStore{}
}

// SetDisplayed records the currently displayed slide.
func (s *ViewStore) SetDisplayed(ctx context.Context, index int, slide model.Slide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Index = index
	s.view.Slide = slide
	s.displayed = true
}

// SetPaused records the pause indicator.
func (s *ViewStore) SetPaused(ctx context.Context, paused bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Paused = paused
}

// SetPopulation replaces the stored population and bumps the epoch.
func (s *ViewStore) SetPopulation(ctx context.Context, population []model.Slide) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.population = population
	s.view.Epoch++
}

// Current returns the current display snapshot.
func (s *ViewStore) Current(ctx context.Context) (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.displayed {
		return View{}, ErrNoSlide
	}
	return s.view, nil
}

// Population returns the stored population.
func (s *ViewStore) Population(ctx context.Context) []model.Slide {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.population
}

// Count returns the number of slides in the stored population.
func (s *ViewStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.population)
}
