package playback

import (
	"github.com/mrdon/kioskd/internal/domain/sched"
	"github.com/mrdon/kioskd/pkg/logger"
)

// Option applies a configuration option to the Machine.
type Option func(*Machine)

// WithHistoryLimit bounds the back-navigation history stack.
func WithHistoryLimit(limit int) Option {
	return func(m *Machine) {
		if limit > 0 {
			m.historyLimit = limit
		}
	}
}

// WithSelector sets a custom slide selector (e.g. a seeded one in tests).
func WithSelector(s *sched.Selector) Option {
	return func(m *Machine) {
		if s != nil {
			m.selector = s
		}
	}
}

// WithLogger sets a custom logger for the machine.
func WithLogger(l logger.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}
