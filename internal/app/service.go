// Package service provides the core rotation service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	eventqueue "github.com/mrdon/kioskd/internal/adapters/mq/queue"
	repository "github.com/mrdon/kioskd/internal/adapters/repository"
	"github.com/mrdon/kioskd/internal/adapters/source"
	"github.com/mrdon/kioskd/internal/domain/deeplink"
	"github.com/mrdon/kioskd/internal/domain/model"
	"github.com/mrdon/kioskd/internal/domain/normalize"
	"github.com/mrdon/kioskd/internal/domain/types"
	"github.com/mrdon/kioskd/internal/playback"
	"github.com/mrdon/kioskd/internal/refresh"
	"github.com/mrdon/kioskd/pkg/logger"
)

// Default service configuration constants.
const (
	defaultQueueSize        = 256
	defaultRotationInterval = 10 * time.Second
	defaultRefreshInterval  = 6 * time.Hour
	defaultHistorySize      = 10
	defaultAnimateProb      = 0.4
	defaultFetchTimeout     = 30 * time.Second
	shutdownGrace           = 5 * time.Second
)

// sinkAdapter adapts the repository view store to the playback.Sink interface.
type sinkAdapter struct {
	view repository.Store
}

func (a *sinkAdapter) Display(ctx context.Context, index int, slide model.Slide) {
	a.view.SetDisplayed(ctx, index, slide)
}

func (a *sinkAdapter) Paused(ctx context.Context, paused bool) {
	a.view.SetPaused(ctx, paused)
}

func (a *sinkAdapter) PopulationChanged(ctx context.Context, population []model.Slide) {
	a.view.SetPopulation(ctx, population)
}

// Service implements the API dependencies for the kiosk rotation system.
type Service struct {
	mu sync.RWMutex

	// Core components
	view        repository.Store
	queue       *eventqueue.InMemoryQueue
	machine     *playback.Machine
	coordinator *refresh.Coordinator
	sources     source.Store
	builder     *normalize.Builder
	timer       *playback.RotationTimer

	// Configuration
	queueSize          int
	rotationInterval   time.Duration
	refreshInterval    time.Duration
	historySize        int
	animateProbability float64
	dataBaseURL        string
	businessesPath     string
	factsPath          string
	imagesPath         string
	eventsPath         string
	fetchTimeout       time.Duration
	navigationToken    string

	// State
	started bool
	cancel  context.CancelFunc

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		queueSize:          defaultQueueSize,
		rotationInterval:   defaultRotationInterval,
		refreshInterval:    defaultRefreshInterval,
		historySize:        defaultHistorySize,
		animateProbability: defaultAnimateProb,
		fetchTimeout:       defaultFetchTimeout,
		logger:             nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start performs the initial load and starts the playback loop, the rotation
// timer wiring and the refresh coordinator. A required-source failure during
// the initial load is fatal: there is no population to operate on.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting rotation service...")

	if s.view == nil {
		s.view = repository.NewViewStore(ctx)
	}
	if s.sources == nil {
		s.sources = source.NewHTTPStore(s.dataBaseURL,
			source.WithTimeout(s.fetchTimeout),
			source.WithPaths(s.businessesPath, s.factsPath, s.imagesPath, s.eventsPath),
		)
	}
	s.builder = normalize.NewBuilder(
		normalize.WithAnimateProbability(s.animateProbability),
	)
	s.queue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
		eventqueue.WithBufferSize(s.queueSize),
	)
	s.coordinator = refresh.New(s.sources, s.builder, s.queue,
		refresh.WithInterval(s.refreshInterval),
	)

	population, err := s.coordinator.Load(ctx)
	if err != nil {
		return fmt.Errorf("initial load failed: %w", err)
	}

	s.timer = playback.NewRotationTimer(s.rotationInterval, s.queue)
	s.machine = playback.New(population, s.timer, &sinkAdapter{view: s.view}, s.queue,
		playback.WithHistoryLimit(s.historySize),
	)

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.machine.Run(runCtx)
	go s.coordinator.Run(runCtx)

	if ok := s.queue.Enqueue(ctx, playback.Init{Token: s.navigationToken}); !ok {
		cancel()
		return fmt.Errorf("failed to enqueue init event")
	}

	s.started = true
	s.logger.Info(ctx, "rotation service started",
		logger.Int("slides", len(population)),
		logger.Duration("rotationInterval", s.rotationInterval),
		logger.Duration("refreshInterval", s.refreshInterval),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping rotation service...")

	if s.timer != nil {
		s.timer.Disarm()
	}

	if s.cancel != nil {
		s.cancel()
	}

	if s.queue != nil {
		_ = s.queue.Close()
	}

	if s.machine != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
		if err := s.machine.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(ctx, "playback shutdown incomplete", logger.Error(err))
		}
		cancel()
	}

	s.started = false
	s.logger.Info(ctx, "rotation service stopped")
}

// Enqueue submits a playback event for processing by the single consumer.
// Returns false on backpressure.
func (s *Service) Enqueue(ctx context.Context, e playback.Event) bool {
	return s.queue.Enqueue(ctx, e)
}

// Current returns the display sink view for the renderer.
func (s *Service) Current(ctx context.Context) (types.Current, error) {
	view, err := s.view.Current(ctx)
	if err != nil {
		return types.Current{}, err
	}
	return types.Current{
		Index:  view.Index,
		Paused: view.Paused,
		Slide:  view.Slide,
	}, nil
}

// Slides returns the population listing with deep-link slugs.
func (s *Service) Slides(ctx context.Context) []types.SlideSummary {
	population := s.view.Population(ctx)
	out := make([]types.SlideSummary, len(population))
	for i := range population {
		out[i] = types.SlideSummary{
			Index:  i,
			Kind:   string(population[i].Kind),
			Title:  population[i].Title,
			Slug:   deeplink.Slugify(population[i].Title),
			Weight: population[i].Weight,
		}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":          s.started,
		"queueSize":        s.queueSize,
		"rotationInterval": s.rotationInterval.String(),
		"refreshInterval":  s.refreshInterval.String(),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["populationSize"] = s.view.Count(ctx)
		if view, err := s.view.Current(ctx); err == nil {
			stats["currentIndex"] = view.Index
			stats["paused"] = view.Paused
			stats["epoch"] = view.Epoch
		}
	}

	return stats
}
