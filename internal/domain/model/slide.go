// Package model contains domain models passed between layers.
package model

import "time"

// Kind tags the content variant carried by a Slide.
type Kind string

// Slide variants. Adding a content type means adding a Kind and a payload
// field, and teaching the normalizer how to build it.
const (
	KindBusiness    Kind = "business"
	KindFact        Kind = "fact"
	KindImage       Kind = "image"
	KindMajorEvent  Kind = "major_event"
	KindDailyDigest Kind = "daily_digest"
)

// Slide is the uniform rotation unit produced by the normalizer.
// Weight and Animate are fixed at build time; the scheduler reads Weight and
// Key only and treats the payload as opaque.
type Slide struct {
	Kind    Kind    `json:"kind"`
	Key     string  `json:"key"`   // identity key: <kind>:<slug(title)>, stable for identical content
	Title   string  `json:"title"` // display name, source of deep-link slugs
	Weight  float64 `json:"weight"`
	Animate bool    `json:"animate"`

	// Variant payload. Exactly one field is non-nil, matching Kind.
	Business *Business    `json:"business,omitempty"`
	Fact     *Fact        `json:"fact,omitempty"`
	Image    *Image       `json:"image,omitempty"`
	Event    *Event       `json:"event,omitempty"`
	Digest   *DailyDigest `json:"digest,omitempty"`
}

// Business is a raw business record from the businesses collection.
type Business struct {
	Name    string `json:"name"`
	Tagline string `json:"tagline,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	URL     string `json:"url,omitempty"`
	Image   string `json:"image,omitempty"`
}

// Fact is a raw fact record from the facts collection.
type Fact struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source,omitempty"`
}

// Image is a raw image record from the images collection.
type Image struct {
	Title   string `json:"title"`
	Caption string `json:"caption,omitempty"`
	Path    string `json:"path"`
}

// Event is a raw event record from the events collection.
// A zero Time marks an entry whose start instant could not be parsed; the
// normalizer skips such entries instead of failing the build.
type Event struct {
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	Time            time.Time `json:"time"`
	DurationMinutes int       `json:"duration,omitempty"`
	Location        string    `json:"location,omitempty"`
	Address         string    `json:"address,omitempty"`
	URL             string    `json:"url,omitempty"`
	Image           string    `json:"image,omitempty"`
	IsMajor         bool      `json:"is_major"`
	RelatedBusiness string    `json:"related_business,omitempty"`
}

// DailyDigest folds today's non-major events into a single slide payload.
type DailyDigest struct {
	Date   time.Time `json:"date"`
	Events []Event   `json:"events"`
}

// Collections bundles the four raw source collections handed to the
// normalizer. Events is optional and may be empty.
type Collections struct {
	Businesses []Business
	Facts      []Fact
	Images     []Image
	Events     []Event
}
