// Package refresh rebuilds the slide population on a fixed period.
//
// A refresh cycle fetches the four source collections, normalizes them, and
// hands the result to the playback machine as a RefreshCompleted event. A
// failed cycle is logged and skipped; the previous population keeps rotating
// until the next attempt.
package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mrdon/kioskd/internal/adapters/source"
	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/internal/playback"
	"github.com/mrdon/kioskd/pkg/logger"
	"github.com/mrdon/kioskd/pkg/metrics"
)

// Default refresh configuration constants.
const (
	defaultRefreshInterval = 6 * time.Hour
)

// Normalizer builds a slide population from raw collections.
type Normalizer interface {
	Build(ctx context.Context, cols model.Collections) ([]model.Slide, error)
}

// Enqueuer delivers refresh results to the playback machine.
type Enqueuer interface {
	Enqueue(ctx context.Context, e playback.Event) bool
}

// Option applies a configuration option to the Coordinator.
type Option func(*Coordinator)

// WithInterval sets the refresh period.
func WithInterval(interval time.Duration) Option {
	return func(c *Coordinator) {
		if interval > 0 {
			c.interval = interval
		}
	}
}

// WithLogger sets a custom logger for the coordinator.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// Coordinator periodically re-fetches sources and emits RefreshCompleted.
type Coordinator struct {
	store    source.Store
	builder  Normalizer
	queue    Enqueuer
	interval time.Duration

	logger logger.Logger
}

// New creates a coordinator over the given store, normalizer and queue.
func New(store source.Store, builder Normalizer, queue Enqueuer, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:    store,
		builder:  builder,
		queue:    queue,
		interval: defaultRefreshInterval,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logger.Get().Named("refresh")
	}

	return c
}

// Load fetches all collections and builds a population. Required-source
// failures (businesses, facts, images) propagate; an events failure degrades
// to an empty collection.
func (c *Coordinator) Load(ctx context.Context) ([]model.Slide, error) {
	cols, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	slides, err := c.builder.Build(ctx, cols)
	if err != nil {
		return nil, fmt.Errorf("build population: %w", err)
	}
	return slides, nil
}

// Run re-fetches on the configured period until ctx is canceled. The rotation
// timer is never blocked: a slow fetch only delays the next RefreshCompleted.
func (c *Coordinator) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.refresh(ctx)
		}
	}
}

// refresh performs one cycle: fetch, build, enqueue.
func (c *Coordinator) refresh(ctx context.Context) {
	cycle := uuid.NewString()
	start := time.Now()

	slides, err := c.Load(ctx)
	elapsed := time.Since(start)
	metrics.RecordRefreshDuration(float64(elapsed.Milliseconds()))

	if err != nil {
		metrics.RecordRefreshFailure()
		metrics.RecordErrorByComponent("refresh", "load_failed")
		c.logger.Error(ctx, "refresh failed; keeping current population",
			logger.String("cycle", cycle),
			logger.Error(err),
		)
		return
	}

	if ok := c.queue.Enqueue(ctx, playback.RefreshCompleted{Population: slides}); !ok {
		metrics.RecordRefreshFailure()
		metrics.RecordErrorByComponent("refresh", "enqueue_failed")
		c.logger.Warn(ctx, "refresh result dropped on queue backpressure",
			logger.String("cycle", cycle),
		)
		return
	}

	metrics.RecordRefresh()
	c.logger.Info(ctx, "population refreshed",
		logger.String("cycle", cycle),
		logger.Int("slides", len(slides)),
		logger.Duration("elapsed", elapsed),
	)
}

// fetch retrieves the four collections concurrently.
func (c *Coordinator) fetch(ctx context.Context) (model.Collections, error) {
	var cols model.Collections

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		businesses, err := c.store.Businesses(gctx)
		if err != nil {
			return fmt.Errorf("businesses: %w", err)
		}
		cols.Businesses = businesses
		return nil
	})
	g.Go(func() error {
		facts, err := c.store.Facts(gctx)
		if err != nil {
			return fmt.Errorf("facts: %w", err)
		}
		cols.Facts = facts
		return nil
	})
	g.Go(func() error {
		images, err := c.store.Images(gctx)
		if err != nil {
			return fmt.Errorf("images: %w", err)
		}
		cols.Images = images
		return nil
	})
	g.Go(func() error {
		events, err := c.store.Events(gctx)
		if err != nil {
			// Events are optional; rotate without them.
			c.logger.Warn(gctx, "events fetch failed; continuing without events", logger.Error(err))
			return nil
		}
		cols.Events = events
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.Collections{}, err
	}
	return cols, nil
}
