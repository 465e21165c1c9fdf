package core

import (
	"testing"
)

func TestTrimmedByMask(t *testing.T) {
	src := testCatalog(t)
	src.AddLightcurves(VariabilityOptions{Fraction: frac(1.0), Seed: 2})

	keep := []bool{true, false, true, false}
	c, err := NewTrimmed(src, keep)
	if err != nil {
		t.Fatalf("NewTrimmed: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("stars = %d, want 2", c.Len())
	}
	if c.Epoch != src.Epoch {
		t.Fatalf("epoch = %v, want %v", c.Epoch, src.Epoch)
	}

	for j, i := range []int{0, 2} {
		if c.RA[j] != src.RA[i] || c.Dec[j] != src.Dec[i] ||
			c.PMRA[j] != src.PMRA[i] || c.PMDec[j] != src.PMDec[i] ||
			c.Tmag[j] != src.Tmag[i] || c.Temperature[j] != src.Temperature[i] {
			t.Fatalf("trimmed star %d does not match source star %d", j, i)
		}
		if c.Lightcurves[j].Code() != src.Lightcurves[i].Code() {
			t.Fatalf("light curve %d not carried over", j)
		}
	}
}

func TestTrimmedIsACopyNotAView(t *testing.T) {
	src := testCatalog(t)
	c, err := NewTrimmed(src, []bool{true, true, false, false})
	if err != nil {
		t.Fatalf("NewTrimmed: %v", err)
	}

	src.RA[0] = 999
	src.Tmag[1] = -10
	src.AddLightcurves(VariabilityOptions{Fraction: frac(1.0), Seed: 77})

	if c.RA[0] == 999 || c.Tmag[1] == -10 {
		t.Fatal("trimmed catalog sees source mutations")
	}
	if c.LightcurveCodes()[0] != "constant" {
		t.Fatal("trimmed light curves follow source reassignment")
	}
}

func TestTrimmedByIndex(t *testing.T) {
	src := testCatalog(t)
	c, err := NewTrimmedByIndex(src, []int{3, 1})
	if err != nil {
		t.Fatalf("NewTrimmedByIndex: %v", err)
	}
	if c.Len() != 2 || c.RA[0] != src.RA[3] || c.RA[1] != src.RA[1] {
		t.Fatalf("index selection wrong: %+v", c.RA)
	}
}

func TestTrimmedRejectsOutOfBounds(t *testing.T) {
	src := testCatalog(t)
	if _, err := NewTrimmedByIndex(src, []int{4}); err == nil {
		t.Fatal("expected error for index past the end")
	}
	if _, err := NewTrimmedByIndex(src, []int{-1}); err == nil {
		t.Fatal("expected error for negative index")
	}
	if _, err := NewTrimmed(src, []bool{true}); err == nil {
		t.Fatal("expected error for short mask")
	}
}

func TestTrimmedBeforeLightcurveAssignment(t *testing.T) {
	src := testCatalog(t)
	c, err := NewTrimmed(src, []bool{false, true, false, true})
	if err != nil {
		t.Fatalf("NewTrimmed: %v", err)
	}
	// the subset still satisfies the fully-populated invariant
	for i, code := range c.LightcurveCodes() {
		if code != "constant" {
			t.Fatalf("star %d code = %q, want constant", i, code)
		}
	}
}
