// Package survey talks to the external astronomical survey: cone
// searches over HTTP, a write-once on-disk cache of their results, and
// name resolution for pointing at a star by name.
package survey

import (
	"context"

	"github.com/signalsfoundry/starfield-simulator/model"
)

// ConeSearcher issues one blocking cone search against the survey.
// Failures are fatal to the caller; there are no retries here.
type ConeSearcher interface {
	QueryCone(ctx context.Context, cone model.Cone) (*model.SurveyTable, error)
}

// Key identifies one cached cone search result.
type Key struct {
	Catalog string
	Cone    model.Cone
}

// Cache persists cone search results. Read-many, write-once per key;
// nothing here expires or refreshes entries.
type Cache interface {
	// Load returns the cached table for key, with ok=false on a miss.
	Load(ctx context.Context, key Key) (table *model.SurveyTable, ok bool, err error)
	// Store persists the table under key.
	Store(ctx context.Context, key Key, table *model.SurveyTable) error
}

// Resolver turns a star name into ICRS coordinates in degrees.
type Resolver interface {
	Resolve(ctx context.Context, name string) (ra, dec float64, err error)
}
