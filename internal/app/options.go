package service

import (
	"time"

	repository "github.com/mrdon/kioskd/internal/adapters/repository"
	"github.com/mrdon/kioskd/internal/adapters/source"
	"github.com/mrdon/kioskd/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithQueueSize sets the maximum size of the playback event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithRotationInterval sets the slide rotation timer period.
func WithRotationInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.rotationInterval = interval
		}
	}
}

// WithRefreshInterval sets the source re-fetch period.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.refreshInterval = interval
		}
	}
}

// WithHistorySize bounds the back-navigation history stack.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithAnimateProbability sets the per-slide animate draw probability.
func WithAnimateProbability(p float64) Option {
	return func(s *Service) {
		if p >= 0 && p <= 1 {
			s.animateProbability = p
		}
	}
}

// WithDataBaseURL sets the root URL of the content store.
func WithDataBaseURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.dataBaseURL = url
		}
	}
}

// WithSourcePaths overrides the per-collection document paths.
func WithSourcePaths(businesses, facts, images, events string) Option {
	return func(s *Service) {
		s.businessesPath = businesses
		s.factsPath = facts
		s.imagesPath = images
		s.eventsPath = events
	}
}

// WithFetchTimeout bounds each source document request.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.fetchTimeout = timeout
		}
	}
}

// WithNavigationToken sets a deep-link token present at startup.
func WithNavigationToken(token string) Option {
	return func(s *Service) {
		s.navigationToken = token
	}
}

// WithSourceStore injects a custom source store (used by tests).
func WithSourceStore(store source.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sources = store
		}
	}
}

// WithViewStore injects a custom view store (used by tests).
func WithViewStore(view repository.Store) Option {
	return func(s *Service) {
		if view != nil {
			s.view = view
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
