// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keep fields unexported where possible and use functional options.
// - Provide New() initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory playback event queue.
	QueueSize int `koanf:"queue_size"`

	// RotationIntervalSeconds sets the slide rotation timer period.
	RotationIntervalSeconds int `koanf:"rotation_interval_seconds"`

	// RefreshIntervalHours sets the source re-fetch period.
	RefreshIntervalHours int `koanf:"refresh_interval_hours"`

	// HistorySize bounds the back-navigation history stack.
	HistorySize int `koanf:"history_size"`

	// AnimateProbability is the per-slide animate draw probability.
	AnimateProbability float64 `koanf:"animate_probability"`

	// DataBaseURL is the root of the content store serving the YAML documents.
	DataBaseURL string `koanf:"data_base_url"`

	// Per-collection document paths relative to DataBaseURL.
	BusinessesPath string `koanf:"businesses_path"`
	FactsPath      string `koanf:"facts_path"`
	ImagesPath     string `koanf:"images_path"`
	EventsPath     string `koanf:"events_path"`

	// FetchTimeoutSeconds bounds each source document request.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// NavigationToken is an optional deep-link token present at startup;
	// when set, playback starts locked onto the matching slide.
	NavigationToken string `koanf:"navigation_token"`
}

// New creates a Config with defaults. The reference configuration rotates
// every 10 seconds and refreshes sources every 6 hours.
func New() *Config {
	c := &Config{
		LogLevel:                "info",
		Addr:                    ":8080",
		QueueSize:               256,
		RotationIntervalSeconds: 10,
		RefreshIntervalHours:    6,
		HistorySize:             10,
		AnimateProbability:      0.4,
		DataBaseURL:             "http://localhost:8043",
		FetchTimeoutSeconds:     30,
	}
	return c
}
