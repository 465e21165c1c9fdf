package core

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/signalsfoundry/starfield-simulator/model"
	"github.com/signalsfoundry/starfield-simulator/timeref"
)

// Scenario describes a data-driven catalog run: which catalog to build,
// what variability to assign, and the exposure sequence to step through.
type Scenario struct {
	Catalog     CatalogSpec
	Variability *VariabilitySpec
	Exposures   timeref.Sequence
}

// CatalogSpec names a factory variant and its parameters.
type CatalogSpec struct {
	Name string
	// Grid parameters, used when Name is "testpattern".
	Size       float64
	Spacing    float64
	Magnitudes []float64
	Random     bool
	PM         float64
	// Cone parameters, used by the survey variant and as the search
	// radius for a named star.
	RA     float64
	Dec    float64
	Radius float64
}

// VariabilitySpec mirrors VariabilityOptions in JSON-friendly form.
type VariabilitySpec struct {
	MagMax   *float64
	Fraction *float64
	Seed     int64
}

// internal JSON shapes; kept unexported so they can evolve freely.
type scenarioJSON struct {
	Catalog struct {
		Name       string    `json:"name"`
		Size       float64   `json:"size"`
		Spacing    float64   `json:"spacing"`
		Magnitudes []float64 `json:"magnitudes"`
		Random     bool      `json:"random"`
		PM         float64   `json:"pm"`
		RA         float64   `json:"ra"`
		Dec        float64   `json:"dec"`
		Radius     float64   `json:"radius"`
	} `json:"catalog"`
	Variability *struct {
		MagMax   *float64 `json:"magmax"`
		Fraction *float64 `json:"fraction"`
		Seed     int64    `json:"seed"`
	} `json:"variability"`
	Exposures struct {
		StartBJD   float64 `json:"start_bjd"`
		StartEpoch float64 `json:"start_epoch"`
		StartTime  string  `json:"start_time"`
		CadenceSec float64 `json:"cadence_sec"`
		Count      int     `json:"count"`
	} `json:"exposures"`
}

// LoadScenario reads a JSON scenario from r. The exposure start may be
// given as start_bjd, start_epoch, or an RFC3339 start_time on the UTC
// wall clock; giving more than one is an error, giving none defaults to
// the catalog's own epoch at build time (StartBJD zero).
func LoadScenario(r io.Reader) (*Scenario, error) {
	var payload scenarioJSON
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("load scenario: decode failed: %w", err)
	}
	if payload.Catalog.Name == "" {
		return nil, fmt.Errorf("load scenario: catalog.name is required")
	}
	given := 0
	for _, set := range []bool{
		payload.Exposures.StartBJD != 0,
		payload.Exposures.StartEpoch != 0,
		payload.Exposures.StartTime != "",
	} {
		if set {
			given++
		}
	}
	if given > 1 {
		return nil, fmt.Errorf("load scenario: give at most one of start_bjd, start_epoch, start_time")
	}

	s := &Scenario{
		Catalog: CatalogSpec{
			Name:       payload.Catalog.Name,
			Size:       payload.Catalog.Size,
			Spacing:    payload.Catalog.Spacing,
			Magnitudes: payload.Catalog.Magnitudes,
			Random:     payload.Catalog.Random,
			PM:         payload.Catalog.PM,
			RA:         payload.Catalog.RA,
			Dec:        payload.Catalog.Dec,
			Radius:     payload.Catalog.Radius,
		},
		Exposures: timeref.Sequence{
			StartBJD:   payload.Exposures.StartBJD,
			CadenceSec: payload.Exposures.CadenceSec,
			Count:      payload.Exposures.Count,
		},
	}
	if payload.Exposures.StartEpoch != 0 {
		s.Exposures.StartBJD = timeref.EpochToBJD(payload.Exposures.StartEpoch)
	}
	if payload.Exposures.StartTime != "" {
		start, err := time.Parse(time.RFC3339, payload.Exposures.StartTime)
		if err != nil {
			return nil, fmt.Errorf("load scenario: invalid start_time: %w", err)
		}
		s.Exposures.StartBJD = timeref.BJDFromTime(start.UTC())
	}
	if payload.Variability != nil {
		s.Variability = &VariabilitySpec{
			MagMax:   payload.Variability.MagMax,
			Fraction: payload.Variability.Fraction,
			Seed:     payload.Variability.Seed,
		}
	}
	return s, nil
}

// FactoryOptions converts the scenario into factory options; collaborators
// still have to be attached by the caller.
func (s *Scenario) FactoryOptions() FactoryOptions {
	return FactoryOptions{
		Name: s.Catalog.Name,
		TestPattern: TestPatternOptions{
			Size:       s.Catalog.Size,
			Spacing:    s.Catalog.Spacing,
			Magnitudes: s.Catalog.Magnitudes,
			RA:         s.Catalog.RA,
			Dec:        s.Catalog.Dec,
			Random:     s.Catalog.Random,
			PM:         s.Catalog.PM,
		},
		Cone: model.Cone{RA: s.Catalog.RA, Dec: s.Catalog.Dec, Radius: s.Catalog.Radius},
	}
}
