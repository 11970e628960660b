// Package antex reads and writes ANTEX antenna phase-center calibration
// files.
package antex

import (
	"errors"
	"time"
)

// ErrNoHeader is returned when reading data that does not begin with an
// ANTEX header.
var ErrNoHeader = errors.New("antex: no header")

// Header holds the ANTEX VERSION / SYST through END OF HEADER fields.
type Header struct {
	Version   float32
	SatSystem string // "M" mixed, or a single constellation letter

	Pgm, RunBy string
	Date       time.Time

	Comments []string

	// PcvType is "A" (absolute) or "R" (relative); RefAntType/RefAntSerial
	// are set only for relative calibrations.
	PcvType      string
	RefAntType   string
	RefAntSerial string

	Labels []string
}

// Frequency is one per-frequency phase-center record inside an antenna
// calibration block: the mean phase-center offset (PCO), and its
// zenith-indexed (and optionally azimuth-indexed) phase-center variation
// (PCV) pattern.
type Frequency struct {
	Code string // e.g. "G01", "R01", "E01"

	// North, East and Up give the PCO in millimeters.
	North, East, Up float64

	// NoAzi is the azimuth-independent PCV pattern, one value per zenith
	// step from Zen1 to Zen2 in steps of DZen, in millimeters.
	NoAzi []float64

	// Azi, when non-empty, gives azimuth-dependent PCV: Azi[i] is the
	// azimuth angle in degrees for row i, and AziPCV[i] holds that row's
	// zenith-indexed values, same length/step as NoAzi.
	Azi    []float64
	AziPCV [][]float64
}

// Calibration is one antenna (or satellite antenna) calibration: its
// identity, validity period, and one Frequency block per observed signal.
type Calibration struct {
	AntType string
	Serial  string // receiver antenna serial number (satellite code for a satellite antenna), or "" for a type-mean calibration

	// SatCode/CosparID identify a satellite antenna calibration (Serial is
	// then the satellite code, e.g. "G063", and CosparID the COSPAR ID). The
	// decoder fills SatCode from the same column as Serial for every antenna.
	SatCode  string
	CosparID string

	Method          string
	Agency          string
	NumCalibrations int
	CalibratedOn    time.Time

	ValidFrom  time.Time
	ValidUntil time.Time
	SinexCode  string

	Dazi             float64 // azimuth increment, 0 if NOAZI only
	Zen1, Zen2, DZen float64

	Frequencies []Frequency
}
