package core

import (
	"fmt"
	"io"

	"github.com/signalsfoundry/starfield-simulator/timeref"
)

// Projector maps sky positions (degrees) to detector pixel coordinates.
// The camera model behind it is external to the catalog core.
type Projector interface {
	Project(ra, dec []float64) (x, y []float64, err error)
}

// WriteProjected takes a snapshot of the catalog at the exposure start,
// projects it through proj, and writes a fixed-width text table with
// columns ra, dec, x, y, tmag, lc. tmag here is the static magnitude;
// lc carries each star's light-curve code so the time-varying part can
// be reconstructed downstream.
func (c *Catalog) WriteProjected(w io.Writer, proj Projector, bjd, exptime float64) error {
	snap, err := c.Snapshot(timeref.AtBJD(bjd), exptime)
	if err != nil {
		return err
	}

	x, y, err := proj.Project(snap.RA, snap.Dec)
	if err != nil {
		return fmt.Errorf("project catalog %s: %w", c.Name, err)
	}
	if len(x) != len(snap.RA) || len(y) != len(snap.RA) {
		return fmt.Errorf("project catalog %s: projector returned %d/%d points for %d stars",
			c.Name, len(x), len(y), len(snap.RA))
	}

	codes := c.LightcurveCodes()

	// column widths sized for the widest light-curve codes
	if _, err := fmt.Fprintf(w, "%12s %12s %12s %12s %8s %-40s\n",
		"ra", "dec", "x", "y", "tmag", "lc"); err != nil {
		return err
	}
	for i := range snap.RA {
		_, err := fmt.Fprintf(w, "%12.6f %12.6f %12.4f %12.4f %8.4f %-40s\n",
			snap.RA[i], snap.Dec[i], x[i], y[i], c.Tmag[i], codes[i])
		if err != nil {
			return err
		}
	}
	return nil
}
