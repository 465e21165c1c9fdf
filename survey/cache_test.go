package survey

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/signalsfoundry/starfield-simulator/model"
)

func openTestCache(t *testing.T) *SQLCache {
	t.Helper()
	c, err := OpenSQLCache(filepath.Join(t.TempDir(), "cones.db"))
	if err != nil {
		t.Fatalf("OpenSQLCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func sampleTable() *model.SurveyTable {
	return &model.SurveyTable{
		RA:      []float64{10.1, 10.2},
		Dec:     []float64{-5.0, -5.1},
		PMRA:    []float64{1.5, math.NaN()},
		PMDec:   []float64{-0.5, 2.0},
		Primary: []float64{11.0, math.NaN()},
		Alt1:    []float64{10.5, 9.0},
		Alt2:    []float64{math.NaN(), 9.5},
	}
}

func TestCacheMiss(t *testing.T) {
	c := openTestCache(t)
	_, ok, err := c.Load(context.Background(), Key{Catalog: "UCAC4", Cone: model.Cone{RA: 1, Dec: 2, Radius: 0.2}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok {
		t.Fatal("expected a miss on an empty cache")
	}
}

func TestCacheRoundTripPreservesNaN(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := Key{Catalog: "UCAC4", Cone: model.Cone{RA: 10.0, Dec: -5.0, Radius: 0.3}}

	if err := c.Store(ctx, key, sampleTable()); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, ok, err := c.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Store")
	}
	want := sampleTable()
	if got.Len() != want.Len() {
		t.Fatalf("rows = %d, want %d", got.Len(), want.Len())
	}
	check := func(name string, g, w []float64) {
		t.Helper()
		for i := range w {
			if math.IsNaN(w[i]) != math.IsNaN(g[i]) || (!math.IsNaN(w[i]) && g[i] != w[i]) {
				t.Fatalf("%s[%d] = %v, want %v", name, i, g[i], w[i])
			}
		}
	}
	check("ra", got.RA, want.RA)
	check("dec", got.Dec, want.Dec)
	check("pmra", got.PMRA, want.PMRA)
	check("pmdec", got.PMDec, want.PMDec)
	check("primary", got.Primary, want.Primary)
	check("alt1", got.Alt1, want.Alt1)
	check("alt2", got.Alt2, want.Alt2)
}

func TestCacheIsWriteOnce(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	key := Key{Catalog: "UCAC4", Cone: model.Cone{RA: 0, Dec: 90, Radius: 0.2}}

	if err := c.Store(ctx, key, sampleTable()); err != nil {
		t.Fatalf("first Store: %v", err)
	}
	// a second write for the same key must not replace the first
	other := &model.SurveyTable{
		RA: []float64{99}, Dec: []float64{0}, PMRA: []float64{0}, PMDec: []float64{0},
		Primary: []float64{1}, Alt1: []float64{1}, Alt2: []float64{1},
	}
	if err := c.Store(ctx, key, other); err != nil {
		t.Fatalf("second Store: %v", err)
	}

	got, ok, err := c.Load(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Load after double store: ok=%v err=%v", ok, err)
	}
	if got.Len() != 2 || got.RA[0] != 10.1 {
		t.Fatalf("second store replaced first: %+v", got)
	}
}

func TestCacheKeysAreIndependent(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()
	a := Key{Catalog: "UCAC4", Cone: model.Cone{RA: 1, Dec: 2, Radius: 0.2}}
	b := Key{Catalog: "UCAC4", Cone: model.Cone{RA: 1, Dec: 2, Radius: 0.3}}

	if err := c.Store(ctx, a, sampleTable()); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if _, ok, _ := c.Load(ctx, b); ok {
		t.Fatal("differing radius must be a distinct key")
	}
}
