package lightcurve

import (
	"math"
	"math/rand"
	"testing"
)

func TestConstantIntegratesToZero(t *testing.T) {
	lc := Constant()
	for _, bjd := range []float64{0, 2451544.5, 2458000.125} {
		if got := lc.Integrated(bjd, 0.5/24.0); got != 0 {
			t.Fatalf("constant.Integrated(%v) = %v, want 0", bjd, got)
		}
	}
	if lc.Code() != "constant" {
		t.Fatalf("constant.Code() = %q", lc.Code())
	}
}

func TestSinusoidFullPeriodAveragesToZero(t *testing.T) {
	s := &Sinusoid{Period: 2.5, Epoch: 0.3, Amplitude: 0.05}
	// integrating over exactly one period cancels
	if got := s.Integrated(1000.0, s.Period); math.Abs(got) > 1e-12 {
		t.Fatalf("full-period integral = %v, want ~0", got)
	}
}

func TestSinusoidShortExposureNearInstantaneous(t *testing.T) {
	s := &Sinusoid{Period: 10, Epoch: 0, Amplitude: 0.1}
	bjd := 2.0
	instant := s.Amplitude * math.Sin(2*math.Pi*bjd/s.Period)
	got := s.Integrated(bjd, 1e-6)
	if math.Abs(got-instant) > 1e-6 {
		t.Fatalf("short exposure = %v, want ~%v", got, instant)
	}
}

func TestTrapezoidOutOfEclipseIsZero(t *testing.T) {
	tr := &Trapezoid{Period: 10, Epoch: 0, Depth: 0.2, Duration: 0.4, RampShare: 0.5}
	// mid-way between dips
	if got := tr.Integrated(5.0, 0.01); got != 0 {
		t.Fatalf("out-of-eclipse offset = %v, want 0", got)
	}
	// dead center of the dip sits on the flat bottom
	if got := tr.at(10.0); got != tr.Depth {
		t.Fatalf("mid-eclipse offset = %v, want %v", got, tr.Depth)
	}
}

func TestRandomIsReproducible(t *testing.T) {
	p := DefaultParams()
	a := Random(rand.New(rand.NewSource(42)), p)
	b := Random(rand.New(rand.NewSource(42)), p)
	if a.Code() != b.Code() {
		t.Fatalf("same seed produced different curves: %q vs %q", a.Code(), b.Code())
	}
	c := Random(rand.New(rand.NewSource(43)), p)
	if a.Code() == c.Code() {
		t.Fatalf("different seeds produced identical curves: %q", a.Code())
	}
}

func TestRandomRespectsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	p := Params{MinPeriod: 1, MaxPeriod: 2, MaxAmplitude: 0.01, FractionSin: 1}
	for i := 0; i < 50; i++ {
		lc := Random(rng, p)
		s, ok := lc.(*Sinusoid)
		if !ok {
			t.Fatalf("FractionSin=1 produced non-sinusoid %T", lc)
		}
		if s.Period < p.MinPeriod || s.Period > p.MaxPeriod {
			t.Fatalf("period %v outside [%v, %v]", s.Period, p.MinPeriod, p.MaxPeriod)
		}
		if s.Amplitude < 0 || s.Amplitude > p.MaxAmplitude {
			t.Fatalf("amplitude %v outside [0, %v]", s.Amplitude, p.MaxAmplitude)
		}
	}
}
