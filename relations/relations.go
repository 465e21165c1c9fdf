// Package relations holds the empirical color relations the survey
// catalog uses to turn multi-band photometry into an effective
// temperature and a working magnitude. Both are lookup tables over the
// primary-minus-alternate color index, linearly interpolated and clamped
// at the ends.
package relations

// ColorFunc maps a color index (magnitudes) to a derived quantity.
type ColorFunc func(color float64) float64

// stellar library color vs. effective temperature, sampled from hot to
// cool dwarfs over the R-J color range the survey actually delivers
var teffColor = []float64{-0.2, 0.0, 0.2, 0.4, 0.6, 0.8, 1.0, 1.3, 1.6, 2.0, 2.5, 3.0, 3.5, 4.0, 5.0}
var teffValue = []float64{9800, 9000, 7900, 7000, 6300, 5800, 5400, 5000, 4600, 4200, 3800, 3500, 3250, 3050, 2800}

// flare-survey photometric correction from the primary band to the
// instrument band, over the same color range
var corrColor = []float64{-0.2, 0.0, 0.3, 0.6, 1.0, 1.5, 2.0, 2.5, 3.0, 4.0, 5.0}
var corrValue = []float64{-0.02, 0.00, 0.07, 0.16, 0.30, 0.51, 0.76, 1.04, 1.35, 2.00, 2.70}

// TemperatureFromColor returns the effective temperature in Kelvin for a
// primary-minus-alternate color index.
func TemperatureFromColor(color float64) float64 {
	return interp(teffColor, teffValue, color)
}

// MagnitudeCorrection returns the offset to subtract from the primary
// band to get the instrument-band working magnitude.
func MagnitudeCorrection(color float64) float64 {
	return interp(corrColor, corrValue, color)
}

// interp linearly interpolates y(x) over a sorted x grid, clamping
// outside the grid. NaN input propagates to NaN output.
func interp(xs, ys []float64, x float64) float64 {
	if x != x { // NaN
		return x
	}
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			f := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + f*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}
