// Package timeref converts between the two time scales a catalog speaks:
// the decimal-year epoch at which positions are referenced, and the
// barycentric Julian date (BJD) used as the exposure time variable.
//
// The mapping is the fixed linear calendar relation epoch 2000.0 ==
// BJD 2451544.5 with 365.25 days per year. It is deliberately not a full
// civil calendar: catalogs and their reference outputs are defined
// against this relation.
package timeref

import (
	"errors"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
)

const (
	// Epoch2000 is the reference epoch of the linear calendar relation.
	Epoch2000 = 2000.0
	// BJD2000 is the barycentric Julian date corresponding to Epoch2000.
	BJD2000 = 2451544.5
	// DaysPerYear is the length of the Julian year in days.
	DaysPerYear = 365.25
)

// EpochToBJD converts a decimal-year epoch to a barycentric Julian date.
func EpochToBJD(epoch float64) float64 {
	return (epoch-Epoch2000)*DaysPerYear + BJD2000
}

// BJDToEpoch converts a barycentric Julian date to a decimal-year epoch.
func BJDToEpoch(bjd float64) float64 {
	return (bjd-BJD2000)/DaysPerYear + Epoch2000
}

// BJDFromTime converts a civil UTC time to a Julian date, treating it as
// barycentric. The light-travel-time difference between the two scales is
// minutes at most and does not matter for exposure scheduling.
func BJDFromTime(t time.Time) float64 {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	return satellite.JDay(year, int(month), day, hour, min, sec)
}

// ErrUnspecified is returned when an Instant carries neither a BJD nor
// an epoch.
var ErrUnspecified = errors.New("timeref: instant has neither bjd nor epoch")

type instantKind int

const (
	kindUnset instantKind = iota
	kindBJD
	kindEpoch
)

// Instant is a moment expressed on exactly one of the two time scales.
// The zero value is unset and resolves to ErrUnspecified.
type Instant struct {
	kind  instantKind
	value float64
}

// AtBJD makes an Instant from a barycentric Julian date.
func AtBJD(bjd float64) Instant { return Instant{kind: kindBJD, value: bjd} }

// AtEpoch makes an Instant from a decimal-year epoch.
func AtEpoch(epoch float64) Instant { return Instant{kind: kindEpoch, value: epoch} }

// Resolve returns the instant on both scales, deriving the missing one
// through the linear calendar relation.
func (in Instant) Resolve() (bjd, epoch float64, err error) {
	switch in.kind {
	case kindBJD:
		return in.value, BJDToEpoch(in.value), nil
	case kindEpoch:
		return EpochToBJD(in.value), in.value, nil
	default:
		return 0, 0, ErrUnspecified
	}
}

// DefaultCadenceSec is the camera cadence assumed when a scenario does
// not specify one (seconds).
const DefaultCadenceSec = 1800.0

// Sequence enumerates the start times of a run of back-to-back exposures.
type Sequence struct {
	StartBJD   float64
	CadenceSec float64
	Count      int
}

// ExptimeDays returns the exposure length in days.
func (s Sequence) ExptimeDays() float64 {
	cadence := s.CadenceSec
	if cadence <= 0 {
		cadence = DefaultCadenceSec
	}
	return cadence / 86400.0
}

// ExposureTimes returns the BJD start of every exposure in the sequence.
func (s Sequence) ExposureTimes() []float64 {
	times := make([]float64, 0, s.Count)
	step := s.ExptimeDays()
	for i := 0; i < s.Count; i++ {
		times = append(times, s.StartBJD+float64(i)*step)
	}
	return times
}
