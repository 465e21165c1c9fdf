// Package core implements star catalogs for synthetic-imaging pipelines:
// ensembles of stars with positions, proper motions, brightnesses,
// temperatures, and optional light curves, able to produce a consistent
// snapshot of themselves at any epoch or barycentric time.
package core

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
	"github.com/signalsfoundry/starfield-simulator/lightcurve"
	"github.com/signalsfoundry/starfield-simulator/timeref"
)

// Catalog is an ensemble of stars held as parallel arrays, all indexed
// by star identity. RA/Dec/Tmag are valid without propagation at Epoch.
type Catalog struct {
	Name string

	RA          []float64 // degrees at Epoch
	Dec         []float64 // degrees at Epoch
	PMRA        []float64 // projected mas/yr (already times cos(dec))
	PMDec       []float64 // mas/yr
	Tmag        []float64 // magnitudes at Epoch
	Temperature []float64 // Kelvin

	Lightcurves []lightcurve.Lightcurve

	// Epoch is the decimal year the static arrays refer to. Immutable
	// after construction.
	Epoch float64

	log     logging.Logger
	metrics *observability.CatalogCollector
}

// Snapshot is one consistent view of the ensemble at a moment in time.
type Snapshot struct {
	BJD   float64
	Epoch float64

	RA          []float64
	Dec         []float64
	Tmag        []float64
	Temperature []float64
}

func newCatalog(name string, log logging.Logger, metrics *observability.CatalogCollector) *Catalog {
	if log == nil {
		log = logging.Noop()
	}
	return &Catalog{Name: name, log: log, metrics: metrics}
}

// finalize enforces the construction invariants shared by every variant:
// equal array lengths, finite proper motions (non-finite entries coerce
// to zero), and a fully populated light-curve array.
func (c *Catalog) finalize() error {
	n := len(c.RA)
	for name, arr := range map[string][]float64{
		"dec":         c.Dec,
		"pmra":        c.PMRA,
		"pmdec":       c.PMDec,
		"tmag":        c.Tmag,
		"temperature": c.Temperature,
	} {
		if len(arr) != n {
			return fmt.Errorf("catalog %s: array %s has %d stars, expected %d", c.Name, name, len(arr), n)
		}
	}
	for i := 0; i < n; i++ {
		if !isFinite(c.PMRA[i]) {
			c.PMRA[i] = 0
		}
		if !isFinite(c.PMDec[i]) {
			c.PMDec[i] = 0
		}
	}
	if len(c.Lightcurves) != n {
		c.Lightcurves = make([]lightcurve.Lightcurve, n)
		constant := lightcurve.Constant()
		for i := range c.Lightcurves {
			c.Lightcurves[i] = constant
		}
	}
	return nil
}

// Len returns the number of stars.
func (c *Catalog) Len() int { return len(c.RA) }

// Arrays returns the static reference-epoch positions, magnitudes, and
// effective temperatures, without propagation.
func (c *Catalog) Arrays() (ra, dec, tmag, temperature []float64) {
	return c.RA, c.Dec, c.Tmag, c.Temperature
}

// AtEpoch propagates the catalog's positions to the given epoch.
func (c *Catalog) AtEpoch(epoch float64) (ra, dec []float64) {
	c.log.Debug(context.Background(), "projecting catalog",
		logging.String("catalog", c.Name),
		logging.Float64("years", epoch-c.Epoch),
		logging.Float64("epoch", c.Epoch),
	)
	return Propagate(c.RA, c.Dec, c.PMRA, c.PMDec, c.Epoch, epoch)
}

// Snapshot returns positions, magnitudes, and temperatures at the given
// instant. Positions are propagated under proper motion; brightness is
// the static magnitude plus each star's light-curve offset integrated
// over [bjd, bjd+exptime] (days); temperature is time-invariant. The
// instant must carry exactly one of BJD or epoch, or the zero-value
// timeref.ErrUnspecified surfaces.
func (c *Catalog) Snapshot(at timeref.Instant, exptime float64) (Snapshot, error) {
	start := time.Now()

	bjd, epoch, err := at.Resolve()
	if err != nil {
		return Snapshot{}, fmt.Errorf("catalog %s snapshot: %w", c.Name, err)
	}

	ra, dec := c.AtEpoch(epoch)

	tmag := make([]float64, len(c.Tmag))
	for i := range tmag {
		offset := 0.0
		if i < len(c.Lightcurves) && c.Lightcurves[i] != nil {
			offset = c.Lightcurves[i].Integrated(bjd, exptime)
		}
		tmag[i] = c.Tmag[i] + offset
	}

	c.metrics.ObserveSnapshot(c.Name, time.Since(start))
	return Snapshot{
		BJD:         bjd,
		Epoch:       epoch,
		RA:          ra,
		Dec:         dec,
		Tmag:        tmag,
		Temperature: c.Temperature,
	}, nil
}

// VariabilityOptions governs light-curve assignment.
type VariabilityOptions struct {
	// MagMax is the faint limit for variability; stars fainter than it
	// keep the constant handle. Nil means max(tmag)+1, i.e. everything
	// is eligible.
	MagMax *float64
	// Fraction of the eligible stars to make variable, in [0, 1]. Nil
	// means all of them.
	Fraction *float64
	// Seed drives the draw; the same seed over the same eligible set
	// selects the same stars and the same curves.
	Seed int64
	// Params bound the random light-curve draw.
	Params lightcurve.Params
}

// AddLightcurves assigns synthetic variability to a random subset of the
// stars bright enough to pass the magnitude cut. Every star is first
// reset to the constant handle; only Lightcurves is mutated.
func (c *Catalog) AddLightcurves(opts VariabilityOptions) {
	n := c.Len()
	c.Lightcurves = make([]lightcurve.Lightcurve, n)
	constant := lightcurve.Constant()
	for i := range c.Lightcurves {
		c.Lightcurves[i] = constant
	}

	magmax := math.Inf(-1)
	if opts.MagMax != nil {
		magmax = *opts.MagMax
	} else {
		for _, m := range c.Tmag {
			if m > magmax {
				magmax = m
			}
		}
		magmax++
	}

	eligible := make([]int, 0, n)
	for i, m := range c.Tmag {
		if m <= magmax {
			eligible = append(eligible, i)
		}
	}

	fraction := 1.0
	if opts.Fraction != nil {
		fraction = *opts.Fraction
	}
	count := int(math.Round(fraction * float64(len(eligible))))
	if count < 0 {
		count = 0
	}
	if count > len(eligible) {
		count = len(eligible)
	}

	c.log.Info(context.Background(), "assigning light curves",
		logging.String("catalog", c.Name),
		logging.Int("eligible", len(eligible)),
		logging.Float64("magmax", magmax),
		logging.Int("variable", count),
	)

	rng := rand.New(rand.NewSource(opts.Seed))
	for _, j := range rng.Perm(len(eligible))[:count] {
		c.Lightcurves[eligible[j]] = lightcurve.Random(rng, opts.Params)
	}
}

// LightcurveCodes returns each star's light-curve code, in star order.
func (c *Catalog) LightcurveCodes() []string {
	codes := make([]string, len(c.Lightcurves))
	for i, lc := range c.Lightcurves {
		if lc == nil {
			codes[i] = lightcurve.Constant().Code()
			continue
		}
		codes[i] = lc.Code()
	}
	return codes
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
