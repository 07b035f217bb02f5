// Package sched implements the weighted recency scheduler.
//
// Selection is a soft anti-starvation scheme, not a round-robin: each slide's
// base weight decays by 1/(timesShown+1), so repeatedly shown slides become
// geometrically less likely but never unreachable. Fairness is restored by
// ledger resets, not by refusing repeats.
package sched

import (
	"math/rand"
	"time"

	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/pkg/metrics"
)

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithSeed makes selection deterministic for the given seed.
func WithSeed(seed int64) Option {
	return func(s *Selector) {
		s.randFloat = rand.New(rand.NewSource(seed)).Float64 //nolint:gosec // deterministic seed for reproducible selection
	}
}

// WithRandFloat injects the uniform [0,1) draw used for selection.
// Tests use this to force the floating-point boundary fallback.
func WithRandFloat(f func() float64) Option {
	return func(s *Selector) {
		if f != nil {
			s.randFloat = f
		}
	}
}

// Selector picks the next slide proportionally to recency-decayed weights.
type Selector struct {
	randFloat func() float64
}

// NewSelector creates a selector with a time-seeded random source.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{
		randFloat: rand.New(rand.NewSource(time.Now().UnixNano())).Float64, //nolint:gosec // scheduling does not need crypto randomness
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Score is the recency-decayed selection weight of a slide that has been
// shown the given number of times this epoch.
func Score(weight float64, timesShown int) float64 {
	return weight * (1.0 / float64(timesShown+1))
}

// Pick selects the next slide index proportionally to Score across the
// population and records the selection in the ledger. The caller guarantees
// a non-empty population of positive-weight slides; an empty population
// returns ErrEmptyPopulation.
func (s *Selector) Pick(population []model.Slide, ledger *Ledger) (int, error) {
	if len(population) == 0 {
		return 0, ErrEmptyPopulation
	}

	scores := make([]float64, len(population))
	var total float64
	for i := range population {
		scores[i] = Score(population[i].Weight, ledger.Shown(population[i].Key))
		total += scores[i]
	}
	if total <= 0 {
		// Normalizer filtering guarantees weight > 0 for every slide, so a
		// zero total means the invariant was violated upstream.
		return 0, ErrEmptyPopulation
	}

	draw := s.randFloat() * total

	selected := len(population) - 1 // fallback when rounding leaves the draw uncovered
	var cum float64
	for i, score := range scores {
		cum += score
		if draw < cum {
			selected = i
			break
		}
	}

	ledger.Record(population[selected].Key)
	metrics.RecordSelection()
	return selected, nil
}
