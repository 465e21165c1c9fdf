package core

import (
	"fmt"

	"github.com/signalsfoundry/starfield-simulator/lightcurve"
)

// NewTrimmed builds a new catalog from the stars of source selected by a
// boolean mask over its star axis. The result owns independent copies of
// every per-star array (light curves included) and inherits the source's
// epoch; mutating the source afterwards does not affect it.
func NewTrimmed(source *Catalog, keep []bool) (*Catalog, error) {
	if len(keep) != source.Len() {
		return nil, fmt.Errorf("trim catalog %s: mask has %d entries for %d stars",
			source.Name, len(keep), source.Len())
	}
	indices := make([]int, 0, len(keep))
	for i, k := range keep {
		if k {
			indices = append(indices, i)
		}
	}
	return NewTrimmedByIndex(source, indices)
}

// NewTrimmedByIndex is NewTrimmed with an explicit index list; indices
// outside the source's star axis are an error.
func NewTrimmedByIndex(source *Catalog, indices []int) (*Catalog, error) {
	for _, i := range indices {
		if i < 0 || i >= source.Len() {
			return nil, fmt.Errorf("trim catalog %s: index %d outside catalog of %d stars",
				source.Name, i, source.Len())
		}
	}

	c := newCatalog(source.Name+"_trimmed", source.log, source.metrics)
	c.Epoch = source.Epoch

	n := len(indices)
	c.RA = make([]float64, n)
	c.Dec = make([]float64, n)
	c.PMRA = make([]float64, n)
	c.PMDec = make([]float64, n)
	c.Tmag = make([]float64, n)
	c.Temperature = make([]float64, n)
	for j, i := range indices {
		c.RA[j] = source.RA[i]
		c.Dec[j] = source.Dec[i]
		c.PMRA[j] = source.PMRA[i]
		c.PMDec[j] = source.PMDec[i]
		c.Tmag[j] = source.Tmag[i]
		c.Temperature[j] = source.Temperature[i]
	}
	if len(source.Lightcurves) == source.Len() {
		c.Lightcurves = make([]lightcurve.Lightcurve, n)
		for j, i := range indices {
			c.Lightcurves[j] = source.Lightcurves[i]
		}
	}

	if err := c.finalize(); err != nil {
		return nil, err
	}
	return c, nil
}
