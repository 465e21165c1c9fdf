// Package lightcurve provides time-varying brightness models that can be
// bound to catalog stars. A light curve integrates to a magnitude offset
// over an exposure window and carries a stable code string identifying
// its parameters, so assignments can be serialized and reproduced.
package lightcurve

import (
	"fmt"
	"math"
	"math/rand"
)

// Lightcurve is a brightness model bound to a single star.
type Lightcurve interface {
	// Integrated returns the mean magnitude offset over the exposure
	// window [bjd, bjd+exptime], with exptime in days.
	Integrated(bjd, exptime float64) float64
	// Code identifies the model and its parameters.
	Code() string
}

// Constant returns the no-variability light curve. It always integrates
// to a zero offset.
func Constant() Lightcurve { return constant{} }

type constant struct{}

func (constant) Integrated(bjd, exptime float64) float64 { return 0 }
func (constant) Code() string                            { return "constant" }

// Params bounds the random light-curve draw. Periods are in days,
// amplitudes in magnitudes.
type Params struct {
	MinPeriod    float64
	MaxPeriod    float64
	MaxAmplitude float64
	// FractionSin is the probability that a draw is sinusoidal rather
	// than eclipse-like. Defaults to 0.5 when zero.
	FractionSin float64
}

// DefaultParams mirrors the ranges used for synthetic variability tests.
func DefaultParams() Params {
	return Params{
		MinPeriod:    0.1,
		MaxPeriod:    30.0,
		MaxAmplitude: 0.1,
		FractionSin:  0.5,
	}
}

// Random draws a synthetic light curve from the given generator. The same
// generator state and params always produce the same curve.
func Random(rng *rand.Rand, p Params) Lightcurve {
	if p.MinPeriod <= 0 {
		p.MinPeriod = DefaultParams().MinPeriod
	}
	if p.MaxPeriod <= 0 {
		p.MaxPeriod = DefaultParams().MaxPeriod
	}
	if p.MaxAmplitude <= 0 {
		p.MaxAmplitude = DefaultParams().MaxAmplitude
	}
	fsin := p.FractionSin
	if fsin == 0 {
		fsin = 0.5
	}

	// log-uniform in period, uniform in phase and amplitude
	logP := math.Log(p.MinPeriod) + rng.Float64()*(math.Log(p.MaxPeriod)-math.Log(p.MinPeriod))
	period := math.Exp(logP)
	epoch := rng.Float64() * period
	amplitude := rng.Float64() * p.MaxAmplitude

	if rng.Float64() < fsin {
		return &Sinusoid{Period: period, Epoch: epoch, Amplitude: amplitude}
	}
	return &Trapezoid{
		Period:    period,
		Epoch:     epoch,
		Depth:     amplitude,
		Duration:  (0.05 + 0.1*rng.Float64()) * period,
		RampShare: rng.Float64(),
	}
}

// Sinusoid is a pure sine variation with a given period (days), reference
// epoch (BJD of zero crossing), and semi-amplitude (magnitudes).
type Sinusoid struct {
	Period    float64
	Epoch     float64
	Amplitude float64
}

// Integrated averages the sinusoid analytically over the exposure window.
func (s *Sinusoid) Integrated(bjd, exptime float64) float64 {
	if exptime <= 0 {
		return s.Amplitude * math.Sin(2*math.Pi*(bjd-s.Epoch)/s.Period)
	}
	w := 2 * math.Pi / s.Period
	a := bjd - s.Epoch
	return s.Amplitude / (w * exptime) * (math.Cos(w*a) - math.Cos(w*(a+exptime)))
}

func (s *Sinusoid) Code() string {
	return fmt.Sprintf("sin|P=%.6f|E=%.6f|A=%.6f", s.Period, s.Epoch, s.Amplitude)
}

// Trapezoid is an eclipse-like dimming: flat at zero offset except for a
// periodic dip of the given depth (magnitudes) and total duration (days).
// RampShare in [0,1] sets how much of the dip is spent on the ingress and
// egress ramps combined.
type Trapezoid struct {
	Period    float64
	Epoch     float64
	Depth     float64
	Duration  float64
	RampShare float64
}

// Integrated numerically averages the dip over the exposure window. The
// dip profile is piecewise linear so a modest fixed subdivision is exact
// enough for magnitudes at the millimag level.
func (tr *Trapezoid) Integrated(bjd, exptime float64) float64 {
	const steps = 32
	if exptime <= 0 {
		return tr.at(bjd)
	}
	sum := 0.0
	for i := 0; i < steps; i++ {
		t := bjd + exptime*(float64(i)+0.5)/steps
		sum += tr.at(t)
	}
	return sum / steps
}

// at evaluates the instantaneous offset at one time.
func (tr *Trapezoid) at(bjd float64) float64 {
	phase := math.Mod(bjd-tr.Epoch, tr.Period)
	if phase < 0 {
		phase += tr.Period
	}
	// center the dip at phase 0/Period boundary
	d := math.Min(phase, tr.Period-phase)
	half := tr.Duration / 2
	if d >= half {
		return 0
	}
	ramp := half * tr.RampShare
	flat := half - ramp
	if d <= flat || ramp == 0 {
		return tr.Depth
	}
	return tr.Depth * (half - d) / ramp
}

func (tr *Trapezoid) Code() string {
	return fmt.Sprintf("trap|P=%.6f|E=%.6f|D=%.6f|T=%.6f|R=%.4f",
		tr.Period, tr.Epoch, tr.Depth, tr.Duration, tr.RampShare)
}
