// Package types contains common types used across the application
package types

import "github.com/mrdon/kioskd/internal/domain/model"

// Current is the display sink view served to the renderer.
type Current struct {
	Index  int         `json:"index"`
	Paused bool        `json:"paused"`
	Slide  model.Slide `json:"slide"`
}

// SlideSummary is a population listing row.
type SlideSummary struct {
	Index  int     `json:"index"`
	Kind   string  `json:"kind"`
	Title  string  `json:"title"`
	Slug   string  `json:"slug"`
	Weight float64 `json:"weight"`
}
