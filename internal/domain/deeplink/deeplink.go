// Package deeplink maps external navigation tokens to slide indices.
//
// Tokens are URL-fragment style slugs; the kiosk host sets one when a QR code
// or link targets a specific slide. Resolution is a linear scan because
// populations are tens of items.
package deeplink

import (
	"strings"

	"github.com/mrdon/kioskd/internal/domain/model"
)

// Slugify normalizes a display name into its deep-link slug: lowercase,
// strip characters outside [a-z0-9 _-], collapse runs of space/underscore/
// hyphen into a single hyphen, trim leading/trailing hyphens.
func Slugify(name string) string {
	lowered := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	fields := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' ' || r == '_' || r == '-'
	})
	return strings.Join(fields, "-")
}

// Resolve returns the index of the first slide whose slug equals the
// slugified token. A miss or an empty token resolves to 0.
func Resolve(token string, population []model.Slide) int {
	if token == "" {
		return 0
	}
	want := Slugify(token)
	if want == "" {
		return 0
	}
	for i, s := range population {
		if Slugify(s.Title) == want {
			return i
		}
	}
	return 0
}

// Matches reports whether the token resolves to an actual slide rather than
// falling back to index 0.
func Matches(token string, population []model.Slide) bool {
	if token == "" || len(population) == 0 {
		return false
	}
	want := Slugify(token)
	if want == "" {
		return false
	}
	for _, s := range population {
		if Slugify(s.Title) == want {
			return true
		}
	}
	return false
}
