// Package ionex reads and writes IONEX TEC (total electron content) grid
// files: the global ionosphere maps published by IGS analysis centers.
package ionex

import (
	"errors"
	"time"
)

// ErrNoHeader is returned when reading data that does not begin with an
// IONEX header.
var ErrNoHeader = errors.New("ionex: no header")

// Header holds the IONEX file header fields (IONEX VERSION / TYPE through
// END OF HEADER).
type Header struct {
	Version  float32
	FileType string // usually "I"
	System   string // empty for a mixed/combined map, else a constellation letter

	Pgm, RunBy string
	Date       time.Time

	Comments    []string
	Description []string // one or more DESCRIPTION lines

	EpochOfFirstMap time.Time
	EpochOfLastMap  time.Time
	IntervalSecs    int
	NumOfMaps       int
	MappingFunction string // "NONE", "COSZ", "QFAC"
	ElevationCutoff float64
	ObservablesUsed string
	NumOfStations   int
	NumOfSatellites int

	BaseRadius   float64 // km
	MapDimension int     // 2 or 3

	// Hgt1, Hgt2 and DHgt describe the height grid: for a 2D map Hgt1==Hgt2
	// and DHgt==0 (a single layer).
	Hgt1, Hgt2, DHgt float64
	Lat1, Lat2, DLat float64
	Lon1, Lon2, DLon float64

	Exponent int // scale exponent applied to grid values, default -1

	// DCBs holds the PRN / BIAS / RMS aux-data records, keyed by satellite
	// identifier (e.g. "G01").
	DCBs map[string]DCB

	Labels []string
}

// DCB is a differential code bias record for one satellite or station.
type DCB struct {
	Bias float64 // ns
	RMS  float64 // ns
}

// axis describes one grid dimension's start, stop and step, matching the
// 3-value layout of the LAT1/LAT2/DLAT, LON1/LON2/DLON and HGT1/HGT2/DHGT
// header records.
type axis struct {
	start, stop, step float64
}

// n returns the number of grid points along the axis, matching IONEX's
// "round((stop-start)/step)+1" convention. A zero step yields exactly one
// point (a single-layer height axis).
func (a axis) n() int {
	if a.step == 0 {
		return 1
	}
	return int((a.stop-a.start)/a.step+0.5) + 1
}

// index returns the grid index of value along the axis, or -1 if value does
// not land on a grid point within range.
func (a axis) index(value float64) int {
	if a.step == 0 {
		return 0
	}
	if a.step > 0 && (value < a.start || a.stop < value) {
		return -1
	}
	if a.step < 0 && (value < a.stop || a.start < value) {
		return -1
	}
	return int((value-a.start)/a.step + 0.5)
}

// TecMap is a single ionospheric TEC (or RMS) grid at one epoch: a 3D array
// of values, flattened in (lat, lon, hgt) order, read via At.
type TecMap struct {
	Epoch time.Time

	lat, lon, hgt axis

	// Values holds the grid values in TECU (the file's integers scaled by
	// 10^Exponent), flattened as
	// i + nLat*(j + nLon*k) for lat index i, lon index j, hgt index k.
	Values []float64
	// RMS holds the companion RMS grid, same shape and indexing as Values,
	// populated only if the file carries a matching RMS MAP.
	RMS []float64
}

// dims returns the number of grid points along each axis.
func (m *TecMap) dims() (nLat, nLon, nHgt int) {
	return m.lat.n(), m.lon.n(), m.hgt.n()
}

func (m *TecMap) flatIndex(i, j, k int) int {
	nLat, nLon, nHgt := m.dims()
	if i < 0 || i >= nLat || j < 0 || j >= nLon || k < 0 || k >= nHgt {
		return -1
	}
	return i + nLat*(j+nLon*k)
}

// At returns the TEC value at the given latitude, longitude and height (deg,
// deg, km), and whether the position maps onto a grid point.
func (m *TecMap) At(lat, lon, hgt float64) (float64, bool) {
	idx := m.flatIndex(m.lat.index(lat), m.lon.index(lon), m.hgt.index(hgt))
	if idx < 0 || idx >= len(m.Values) {
		return 0, false
	}
	return m.Values[idx], true
}
