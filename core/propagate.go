package core

import "math"

// masPerDeg is the number of milliarcseconds in one degree.
const masPerDeg = 3600.0 * 1000.0

// Propagate moves star positions from epoch0 to epochTarget under proper
// motion, elementwise over the input arrays. ra0/dec0 are degrees, pmra
// and pmdec milliarcseconds/year, with pmra already projected by
// cos(dec).
//
// The un-projection of pmra divides by the cosine of the declination at
// the temporal midpoint of the interval, not the starting declination.
// That keeps long baselines and high declinations honest without paying
// for a full great-circle integration; it is a deliberate approximation,
// kept as-is so propagated positions stay reproducible against reference
// outputs.
func Propagate(ra0, dec0, pmra, pmdec []float64, epoch0, epochTarget float64) (ra, dec []float64) {
	dt := epochTarget - epoch0

	ra = make([]float64, len(ra0))
	dec = make([]float64, len(dec0))
	for i := range ra0 {
		decRate := pmdec[i] / masPerDeg // deg/yr
		dec[i] = dec0[i] + dt*decRate

		meanDec := dec0[i] + dt*decRate/2
		raRate := pmra[i] / masPerDeg / math.Cos(meanDec*math.Pi/180.0)
		ra[i] = ra0[i] + dt*raRate
	}
	return ra, dec
}
