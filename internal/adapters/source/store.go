// Package source fetches the raw content collections the kiosk rotates.
//
// The collections are YAML documents served from a static store. The core
// never sees YAML: this adapter decodes documents into domain records and
// leaves semantic validation to the normalizer.
package source

import (
	"context"

	"github.com/mrdon/kioskd/internal/domain/model"
)

// Store provides read access to the four source collections.
// Events is optional: a missing events document yields an empty slice,
// never an error.
type Store interface {
	Businesses(ctx context.Context) ([]model.Business, error)
	Facts(ctx context.Context) ([]model.Fact, error)
	Images(ctx context.Context) ([]model.Image, error)
	Events(ctx context.Context) ([]model.Event, error)
}
