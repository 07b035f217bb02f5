package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if KIOSK_CONFIG is set
//  3. env (prefix KIOSK_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("KIOSK_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: KIOSK_ADDR, KIOSK_QUEUE_SIZE, ...
	// Map env keys like KIOSK_QUEUE_SIZE -> queue_size (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("KIOSK_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "kiosk_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Basic validation
	switch {
	case cfg.Addr == "":
		return nil, fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case cfg.RotationIntervalSeconds <= 0:
		return nil, fmt.Errorf("%w: rotation_interval_seconds must be positive", ErrInvalidConfig)
	case cfg.RefreshIntervalHours <= 0:
		return nil, fmt.Errorf("%w: refresh_interval_hours must be positive", ErrInvalidConfig)
	case cfg.AnimateProbability < 0 || cfg.AnimateProbability > 1:
		return nil, fmt.Errorf("%w: animate_probability must be within [0,1]", ErrInvalidConfig)
	case cfg.DataBaseURL == "":
		return nil, fmt.Errorf("%w: data_base_url must not be empty", ErrInvalidConfig)
	}
	return &cfg, nil
}
