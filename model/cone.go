package model

import "fmt"

// Cone is a sky region: all objects within Radius degrees of (RA, Dec).
// Coordinates are ICRS degrees.
type Cone struct {
	RA     float64
	Dec    float64
	Radius float64
}

// String renders the cone the way cache keys and log lines spell it.
func (c Cone) String() string {
	return fmt.Sprintf("ra=%g dec=%g radius=%g", c.RA, c.Dec, c.Radius)
}
