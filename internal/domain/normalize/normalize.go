// Package normalize turns heterogeneous raw records into the uniform slide
// population consumed by the scheduler.
package normalize

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/mrdon/kioskd/internal/domain/deeplink"
	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/pkg/logger"
	"github.com/mrdon/kioskd/pkg/metrics"
)

// Default build configuration constants.
const (
	weightBusiness = 2.0
	weightFact     = 1.0
	weightImage    = 1.0
	weightDigest   = 2.0

	// Proximity buckets for major events.
	weightEventNear = 2.0 // 0..nearHorizonDays days out
	weightEventMid  = 1.0 // up to midHorizonDays days out
	weightEventFar  = 1.0 // beyond midHorizonDays; the event is major regardless
	nearHorizonDays = 7
	midHorizonDays  = 30

	defaultAnimateProbability = 0.4

	digestTitle = "Today's Events"
)

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithClock injects the wall clock used for proximity bucketing.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// WithSeed makes the animate draw deterministic for the given seed.
func WithSeed(seed int64) Option {
	return func(b *Builder) {
		b.randFloat = rand.New(rand.NewSource(seed)).Float64 //nolint:gosec // deterministic seed for reproducible builds
	}
}

// WithRandFloat injects the uniform [0,1) draw used for the animate flag.
func WithRandFloat(f func() float64) Option {
	return func(b *Builder) {
		if f != nil {
			b.randFloat = f
		}
	}
}

// WithAnimateProbability sets the per-slide animate probability.
func WithAnimateProbability(p float64) Option {
	return func(b *Builder) {
		if p >= 0 && p <= 1 {
			b.animateProb = p
		}
	}
}

// WithLogger sets a custom logger for the builder.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// Builder produces the slide population for one epoch.
type Builder struct {
	now         func() time.Time
	randFloat   func() float64
	animateProb float64
	logger      logger.Logger
}

// NewBuilder creates a builder with time-seeded animate draws.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		now:         time.Now,
		randFloat:   rand.New(rand.NewSource(time.Now().UnixNano())).Float64, //nolint:gosec // animate flag does not need crypto randomness
		animateProb: defaultAnimateProbability,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = logger.Get().Named("normalize")
	}

	return b
}

// Build validates the raw collections and produces the slide population.
// Malformed business/fact/image records abort the build; malformed event
// entries are skipped. Every returned slide has Weight > 0.
func (b *Builder) Build(ctx context.Context, cols model.Collections) ([]model.Slide, error) {
	slides := make([]model.Slide, 0, len(cols.Businesses)+len(cols.Facts)+len(cols.Images)+len(cols.Events)+1)

	for i := range cols.Businesses {
		biz := cols.Businesses[i]
		if biz.Name == "" {
			return nil, fmt.Errorf("business %d: %w: missing name", i, ErrBadRecord)
		}
		slides = append(slides, b.newSlide(model.KindBusiness, biz.Name, weightBusiness, model.Slide{Business: &biz}))
	}

	for i := range cols.Facts {
		fact := cols.Facts[i]
		if fact.Title == "" || fact.Content == "" {
			return nil, fmt.Errorf("fact %d: %w: missing title or content", i, ErrBadRecord)
		}
		slides = append(slides, b.newSlide(model.KindFact, fact.Title, weightFact, model.Slide{Fact: &fact}))
	}

	for i := range cols.Images {
		img := cols.Images[i]
		if img.Title == "" || img.Path == "" {
			return nil, fmt.Errorf("image %d: %w: missing title or path", i, ErrBadRecord)
		}
		slides = append(slides, b.newSlide(model.KindImage, img.Title, weightImage, model.Slide{Image: &img}))
	}

	today := localMidnight(b.now())
	var todays []model.Event
	for i := range cols.Events {
		ev := cols.Events[i]
		if ev.Title == "" || ev.Time.IsZero() {
			b.logger.Warn(ctx, "skipping malformed event entry",
				logger.Int("index", i),
				logger.String("title", ev.Title),
			)
			continue
		}

		days := daysUntil(ev.Time, today)
		if ev.IsMajor {
			if w := majorEventWeight(days); w > 0 {
				slides = append(slides, b.newSlide(model.KindMajorEvent, ev.Title, w, model.Slide{Event: &ev}))
			}
			continue
		}
		if days == 0 {
			todays = append(todays, ev)
		}
	}

	if len(todays) > 0 {
		sort.Slice(todays, func(i, j int) bool { return todays[i].Time.Before(todays[j].Time) })
		digest := &model.DailyDigest{Date: today, Events: todays}
		slides = append(slides, b.newSlide(model.KindDailyDigest, digestTitle, weightDigest, model.Slide{Digest: digest}))
	}

	updatePopulationMetrics(slides)
	return slides, nil
}

// newSlide fills the common slide attributes and draws the animate flag.
func (b *Builder) newSlide(kind model.Kind, title string, weight float64, payload model.Slide) model.Slide {
	s := payload
	s.Kind = kind
	s.Title = title
	s.Key = string(kind) + ":" + deeplink.Slugify(title)
	s.Weight = weight
	s.Animate = b.randFloat() < b.animateProb
	return s
}

// majorEventWeight buckets a major event's weight by days until it occurs.
func majorEventWeight(days int) float64 {
	switch {
	case days < 0:
		return 0
	case days <= nearHorizonDays:
		return weightEventNear
	case days <= midHorizonDays:
		return weightEventMid
	default:
		return weightEventFar
	}
}

// daysUntil is floor((eventLocalMidnight - todayLocalMidnight) / 1 day).
// Rounding absorbs DST shifts between the two midnights.
func daysUntil(event time.Time, todayMidnight time.Time) int {
	eventMidnight := localMidnight(event)
	return int(math.Round(eventMidnight.Sub(todayMidnight).Hours() / 24))
}

func localMidnight(t time.Time) time.Time {
	local := t.Local()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
}

func updatePopulationMetrics(slides []model.Slide) {
	metrics.UpdatePopulationSize(len(slides))
	byKind := make(map[model.Kind]int)
	for i := range slides {
		byKind[slides[i].Kind]++
	}
	for _, kind := range []model.Kind{model.KindBusiness, model.KindFact, model.KindImage, model.KindMajorEvent, model.KindDailyDigest} {
		metrics.UpdatePopulationByKind(string(kind), byKind[kind])
	}
}
