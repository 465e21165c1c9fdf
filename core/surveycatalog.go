package core

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
	"github.com/signalsfoundry/starfield-simulator/model"
	"github.com/signalsfoundry/starfield-simulator/relations"
	"github.com/signalsfoundry/starfield-simulator/survey"
)

// SurveyCatalogName is the external survey the query variant loads from;
// it also namespaces the cone cache.
const SurveyCatalogName = "UCAC4"

// SurveyOptions configures a survey-query catalog.
type SurveyOptions struct {
	// Cone is the sky region to load.
	Cone model.Cone

	// Searcher performs the cone search on a cache miss.
	Searcher survey.ConeSearcher
	// Cache is consulted first and written through on a miss. Nil
	// disables caching and always queries.
	Cache survey.Cache

	// TemperatureFromColor and MagnitudeCorrection derive the working
	// temperature and magnitude from the primary-minus-alt1 color.
	// They default to the relations package.
	TemperatureFromColor relations.ColorFunc
	MagnitudeCorrection  relations.ColorFunc

	Log     logging.Logger
	Metrics *observability.CatalogCollector
}

// NewSurveyCatalog loads a catalog over a sky cone from the external
// survey, using the cone cache when it already holds the result. Stars
// whose magnitude cannot be reconciled to a finite value in any band are
// dropped; a failed query or cache write aborts construction with no
// partial catalog.
func NewSurveyCatalog(ctx context.Context, opts SurveyOptions) (*Catalog, error) {
	if opts.Searcher == nil {
		return nil, fmt.Errorf("survey catalog: a cone searcher is required")
	}
	if opts.TemperatureFromColor == nil {
		opts.TemperatureFromColor = relations.TemperatureFromColor
	}
	if opts.MagnitudeCorrection == nil {
		opts.MagnitudeCorrection = relations.MagnitudeCorrection
	}

	ctx, span := otel.Tracer("starfield/core").Start(ctx, "catalog.survey.load")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("cone.ra", opts.Cone.RA),
		attribute.Float64("cone.dec", opts.Cone.Dec),
		attribute.Float64("cone.radius", opts.Cone.Radius),
	)

	c := newCatalog(SurveyCatalogName, opts.Log, opts.Metrics)

	table, err := loadConeTable(ctx, c, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		return nil, err
	}
	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("survey catalog %s: %w", opts.Cone, err)
	}

	primary, alt1, _ := reconcileBands(table.Primary, table.Alt1, table.Alt2)

	n := table.Len()
	temperature := make([]float64, n)
	working := make([]float64, n)
	for i := 0; i < n; i++ {
		color := primary[i] - alt1[i]
		temperature[i] = opts.TemperatureFromColor(color)
		working[i] = primary[i] - opts.MagnitudeCorrection(color)
	}

	// retention filter: every array sliced together by the same mask
	dropped := 0
	for i := 0; i < n; i++ {
		if !isFinite(working[i]) {
			dropped++
			continue
		}
		c.RA = append(c.RA, table.RA[i])
		c.Dec = append(c.Dec, table.Dec[i])
		c.PMRA = append(c.PMRA, table.PMRA[i])
		c.PMDec = append(c.PMDec, table.PMDec[i])
		c.Tmag = append(c.Tmag, working[i])
		c.Temperature = append(c.Temperature, temperature[i])
	}
	c.Epoch = 2000.0

	if err := c.finalize(); err != nil {
		return nil, err
	}

	c.log.Info(ctx, "loaded survey catalog",
		logging.String("cone", opts.Cone.String()),
		logging.Int("stars", c.Len()),
		logging.Int("dropped", dropped),
	)
	opts.Metrics.ObserveLoad(c.Name, c.Len(), dropped)
	span.SetAttributes(attribute.Int("stars.kept", c.Len()), attribute.Int("stars.dropped", dropped))
	return c, nil
}

// loadConeTable returns the raw survey table for the cone, from cache
// when present, otherwise by one query persisted before use.
func loadConeTable(ctx context.Context, c *Catalog, opts SurveyOptions) (*model.SurveyTable, error) {
	key := survey.Key{Catalog: SurveyCatalogName, Cone: opts.Cone}

	if opts.Cache != nil {
		table, ok, err := opts.Cache.Load(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("survey catalog %s: cache: %w", opts.Cone, err)
		}
		opts.Metrics.ObserveCache(SurveyCatalogName, ok)
		if ok {
			c.log.Info(ctx, "loaded cone from cache", logging.String("cone", opts.Cone.String()))
			return table, nil
		}
	}

	table, err := opts.Searcher.QueryCone(ctx, opts.Cone)
	opts.Metrics.ObserveQuery(SurveyCatalogName, err)
	if err != nil {
		return nil, fmt.Errorf("survey catalog %s: %w", opts.Cone, err)
	}

	if opts.Cache != nil {
		if err := opts.Cache.Store(ctx, key, table); err != nil {
			return nil, fmt.Errorf("survey catalog %s: persist: %w", opts.Cone, err)
		}
	}
	return table, nil
}

// reconcileBands fills missing magnitudes from correlated bands with a
// symmetric two-pass precedence: the primary band borrows from alt2 then
// alt1; alt1 borrows from alt2 then primary; alt2 borrows from primary
// then alt1. Any single missing band recovers; a star stays unusable
// only when all three are missing. Inputs are not modified.
func reconcileBands(primary, alt1, alt2 []float64) (p, a1, a2 []float64) {
	p = append([]float64(nil), primary...)
	a1 = append([]float64(nil), alt1...)
	a2 = append([]float64(nil), alt2...)

	for i := range p {
		if !isFinite(p[i]) && isFinite(a2[i]) {
			p[i] = a2[i]
		}
		if !isFinite(p[i]) && isFinite(a1[i]) {
			p[i] = a1[i]
		}

		if !isFinite(a1[i]) && isFinite(a2[i]) {
			a1[i] = a2[i]
		}
		if !isFinite(a1[i]) && isFinite(p[i]) {
			a1[i] = p[i]
		}

		if !isFinite(a2[i]) && isFinite(p[i]) {
			a2[i] = p[i]
		}
		if !isFinite(a2[i]) && isFinite(a1[i]) {
			a2[i] = a1[i]
		}
	}
	return p, a1, a2
}
