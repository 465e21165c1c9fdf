package model

import "fmt"

// SurveyTable is the raw tabular result of one cone search against an
// external survey: position, proper motion, and three magnitude bands,
// as parallel columns. Missing measurements are NaN.
//
// PMRA is the projected rate (already multiplied by cos(dec)) in
// milliarcseconds/year; PMDec is in milliarcseconds/year.
type SurveyTable struct {
	RA    []float64
	Dec   []float64
	PMRA  []float64
	PMDec []float64

	// Magnitude bands, in reconciliation-precedence order: the primary
	// band and two correlated alternates used to fill gaps.
	Primary []float64
	Alt1    []float64
	Alt2    []float64
}

// Len returns the number of rows.
func (t *SurveyTable) Len() int { return len(t.RA) }

// Validate checks that all columns have equal length.
func (t *SurveyTable) Validate() error {
	n := len(t.RA)
	for name, col := range map[string][]float64{
		"dec":     t.Dec,
		"pmra":    t.PMRA,
		"pmdec":   t.PMDec,
		"primary": t.Primary,
		"alt1":    t.Alt1,
		"alt2":    t.Alt2,
	} {
		if len(col) != n {
			return fmt.Errorf("survey table column %s has %d rows, expected %d", name, len(col), n)
		}
	}
	return nil
}
