package relations

import (
	"math"
	"testing"
)

func TestTemperatureIsMonotonicInColor(t *testing.T) {
	prev := math.Inf(1)
	for c := -0.2; c <= 5.0; c += 0.05 {
		teff := TemperatureFromColor(c)
		if teff > prev {
			t.Fatalf("temperature increased at color %v: %v > %v", c, teff, prev)
		}
		prev = teff
	}
}

func TestTemperatureGridPoints(t *testing.T) {
	// sun-like color should land near a sun-like temperature
	if got := TemperatureFromColor(0.8); got != 5800 {
		t.Fatalf("TemperatureFromColor(0.8) = %v, want 5800", got)
	}
	// clamped beyond both grid ends
	if got := TemperatureFromColor(-3); got != 9800 {
		t.Fatalf("TemperatureFromColor(-3) = %v, want 9800", got)
	}
	if got := TemperatureFromColor(12); got != 2800 {
		t.Fatalf("TemperatureFromColor(12) = %v, want 2800", got)
	}
}

func TestMagnitudeCorrectionZeroAtZeroColor(t *testing.T) {
	if got := MagnitudeCorrection(0); got != 0 {
		t.Fatalf("MagnitudeCorrection(0) = %v, want 0", got)
	}
	// redder stars get a larger correction
	if MagnitudeCorrection(2.0) <= MagnitudeCorrection(1.0) {
		t.Fatal("correction should grow with color")
	}
}

func TestNaNColorPropagates(t *testing.T) {
	if got := TemperatureFromColor(math.NaN()); !math.IsNaN(got) {
		t.Fatalf("TemperatureFromColor(NaN) = %v, want NaN", got)
	}
	if got := MagnitudeCorrection(math.NaN()); !math.IsNaN(got) {
		t.Fatalf("MagnitudeCorrection(NaN) = %v, want NaN", got)
	}
}
