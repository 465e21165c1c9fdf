package core

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/signalsfoundry/starfield-simulator/internal/logging"
	"github.com/signalsfoundry/starfield-simulator/internal/observability"
)

// TestPatternOptions configures the synthetic grid catalog.
type TestPatternOptions struct {
	// Size is the side of the square pattern in arcsec.
	Size float64
	// Spacing between grid cells in arcsec.
	Spacing float64
	// Magnitudes is the [faint, bright] range spanned by the grid; only
	// its min and max matter.
	Magnitudes []float64

	// RA and Dec center the pattern, in degrees.
	RA  float64
	Dec float64

	// Random replaces the linear magnitude ramp with uniform draws and
	// nudges every star off its grid cell.
	Random bool
	// Nudge is the full width of the random positional offset, arcsec.
	Nudge float64
	// PM, when positive, draws both proper-motion components from a
	// zero-mean normal with this standard deviation (mas/yr).
	PM float64

	// Rand supplies all randomness; required when Random or PM is set.
	Rand *rand.Rand

	Log     logging.Logger
	Metrics *observability.CatalogCollector
}

func (o *TestPatternOptions) applyDefaults() {
	if o.Size == 0 {
		o.Size = 3000
	}
	if o.Spacing == 0 {
		o.Spacing = 200
	}
	if len(o.Magnitudes) == 0 {
		o.Magnitudes = []float64{6, 16}
	}
	if o.Nudge == 0 {
		o.Nudge = 21.1
	}
}

// NewTestPattern builds a deterministic grid of stars to fill an image,
// evenly spaced on the sky around the pattern center with magnitudes
// spanning the requested range. Epoch is fixed at 2018.0 and every star
// gets a sun-like 5800 K temperature.
func NewTestPattern(opts TestPatternOptions) (*Catalog, error) {
	opts.applyDefaults()
	if (opts.Random || opts.PM > 0) && opts.Rand == nil {
		return nil, fmt.Errorf("test pattern: randomized options require an explicit generator")
	}

	magMin, magMax := minMax(opts.Magnitudes)
	name := fmt.Sprintf("testpattern_%.0fto%.0f", magMin, magMax)
	c := newCatalog(name, opts.Log, opts.Metrics)

	pixels := int(opts.Size / opts.Spacing)
	if pixels < 1 {
		pixels = 1
	}
	n := pixels * pixels

	// linear magnitude ramp, reversed so tmag decreases over the grid
	c.Tmag = make([]float64, n)
	for i := range c.Tmag {
		if n == 1 {
			c.Tmag[i] = magMin
			continue
		}
		c.Tmag[i] = magMax - float64(i)*(magMax-magMin)/float64(n-1)
	}

	// regular mesh of offsets, centered on the pattern center; RA
	// offsets are widened by 1/cos(dec) to stay an angular separation
	mean := float64(pixels-1) * opts.Spacing / 2
	c.RA = make([]float64, n)
	c.Dec = make([]float64, n)
	for row := 0; row < pixels; row++ {
		for col := 0; col < pixels; col++ {
			i := row*pixels + col
			c.Dec[i] = (float64(row)*opts.Spacing-mean)/3600.0 + opts.Dec
			c.RA[i] = (float64(col)*opts.Spacing-mean)/3600.0/math.Cos(c.Dec[i]*math.Pi/180.0) + opts.RA
		}
	}

	if opts.Random {
		for i := range c.Tmag {
			c.Tmag[i] = magMin + opts.Rand.Float64()*(magMax-magMin)
		}
		for i := range c.RA {
			c.Dec[i] += opts.Nudge * (opts.Rand.Float64() - 0.5) / 3600.0
			c.RA[i] += opts.Nudge * (opts.Rand.Float64() - 0.5) / 3600.0
		}
	}

	c.PMRA = make([]float64, n)
	c.PMDec = make([]float64, n)
	if opts.PM > 0 {
		for i := range c.PMRA {
			c.PMRA[i] = opts.Rand.NormFloat64() * opts.PM
			c.PMDec[i] = opts.Rand.NormFloat64() * opts.PM
		}
	}

	c.Temperature = make([]float64, n)
	for i := range c.Temperature {
		c.Temperature[i] = 5800.0
	}
	c.Epoch = 2018.0

	if err := c.finalize(); err != nil {
		return nil, err
	}
	opts.Metrics.ObserveLoad(c.Name, c.Len(), 0)
	return c, nil
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
