package core

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
	"github.com/signalsfoundry/starfield-simulator/model"
	"github.com/signalsfoundry/starfield-simulator/survey"
)

// FactoryOptions selects and parameterizes a catalog variant by name.
type FactoryOptions struct {
	// Name picks the variant: "testpattern", "ucac4", or any other
	// value, which is resolved as a star name and loaded from the
	// survey around the resolved position.
	Name string

	// TestPattern parameterizes the grid variant.
	TestPattern TestPatternOptions
	// Cone is the sky region for the survey variant. For a named star
	// the resolved coordinates replace Cone.RA/Dec.
	Cone model.Cone

	Searcher survey.ConeSearcher
	Cache    survey.Cache
	Resolver survey.Resolver

	// Rand feeds the grid variant's randomized options.
	Rand *rand.Rand

	Log     logging.Logger
	Metrics *observability.CatalogCollector
}

// MakeCatalog constructs the catalog variant selected by name. It is a
// one-shot dispatch, not a registry: the set of variants is closed.
func MakeCatalog(ctx context.Context, opts FactoryOptions) (*Catalog, error) {
	switch strings.ToLower(opts.Name) {
	case "testpattern":
		tp := opts.TestPattern
		tp.Rand = opts.Rand
		tp.Log = opts.Log
		tp.Metrics = opts.Metrics
		return NewTestPattern(tp)

	case strings.ToLower(SurveyCatalogName):
		return NewSurveyCatalog(ctx, SurveyOptions{
			Cone:     opts.Cone,
			Searcher: opts.Searcher,
			Cache:    opts.Cache,
			Log:      opts.Log,
			Metrics:  opts.Metrics,
		})

	default:
		if opts.Resolver == nil {
			return nil, fmt.Errorf("catalog %q: a name resolver is required", opts.Name)
		}
		ra, dec, err := opts.Resolver.Resolve(ctx, opts.Name)
		if err != nil {
			return nil, fmt.Errorf("catalog %q: %w", opts.Name, err)
		}
		cone := opts.Cone
		cone.RA, cone.Dec = ra, dec
		return NewSurveyCatalog(ctx, SurveyOptions{
			Cone:     cone,
			Searcher: opts.Searcher,
			Cache:    opts.Cache,
			Log:      opts.Log,
			Metrics:  opts.Metrics,
		})
	}
}
