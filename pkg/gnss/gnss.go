// Package gnss contains common constants and type definitions shared by the
// format engine: satellite systems, timescales and epochs, and satellite
// identifiers.
package gnss

import (
	"encoding/json"
	"fmt"
	"strings"
)

// System is a satellite system.
type System int

// Available satellite systems.
const (
	SysGPS System = iota + 1
	SysGLO
	SysGAL
	SysQZSS
	SysBDS
	SysNavIC // formerly IRNSS
	SysSBAS
	SysMIXED
)

func (sys System) String() string {
	return [...]string{"", "GPS", "GLO", "GAL", "QZSS", "BDS", "NavIC", "SBAS", "MIXED"}[sys]
}

// Abbr returns the system's abbreviation used in RINEX, i.e. the constellation
// letter prefixed to a PRN (G12, R03, E05, ...).
func (sys System) Abbr() string {
	return [...]string{"", "G", "R", "E", "J", "C", "I", "S", "M"}[sys]
}

// MarshalJSON marshals the system as its RINEX abbreviation.
func (sys System) MarshalJSON() ([]byte, error) {
	return json.Marshal(sys.Abbr())
}

// sysPerAbbr maps the single-letter RINEX constellation prefix to a System.
var sysPerAbbr = map[string]System{
	"G": SysGPS,
	"R": SysGLO,
	"E": SysGAL,
	"J": SysQZSS,
	"C": SysBDS,
	"I": SysNavIC,
	"S": SysSBAS,
	"M": SysMIXED,
}

// SystemByAbbr returns the System for the given single-letter RINEX prefix.
func SystemByAbbr(abbr string) (System, bool) {
	sys, ok := sysPerAbbr[abbr]
	return sys, ok
}

// ByAbbr maps the single-letter RINEX constellation prefix to a System, for
// callers that prefer a plain lookup table over SystemByAbbr's ok-check.
// Looking up an unknown abbreviation yields the zero System.
var ByAbbr = sysPerAbbr

// sysPerName maps the long constellation names used in header fields like
// SYS / PHASE SHIFT or sitelog "GPS+GLO+..." strings to a System.
var sysPerName = map[string]System{
	"GPS": SysGPS, "GLO": SysGLO, "GAL": SysGAL, "QZSS": SysQZSS,
	"BDS": SysBDS, "IRNSS": SysNavIC, "NAVIC": SysNavIC, "SBAS": SysSBAS, "MIXED": SysMIXED,
}

// Systems specifies a list of satellite systems.
type Systems []System

// String returns the contained systems joined in sitelog manner GPS+GLO+...
func (syss Systems) String() string {
	str := make([]string, 0, len(syss))
	for _, sys := range syss {
		str = append(str, sys.String())
	}
	return strings.Join(str, "+")
}

// MarshalJSON marshals the systems as a list of RINEX abbreviations.
func (syss Systems) MarshalJSON() ([]byte, error) {
	abbrs := make([]string, len(syss))
	for i, sys := range syss {
		abbrs[i] = sys.Abbr()
	}
	return json.Marshal(abbrs)
}

// ParseSatSystems parses a sitelog-style satellite system string like
// "GPS+GLO+GAL+BDS+SBAS+IRNSS" into a Systems list.
func ParseSatSystems(s string) (Systems, error) {
	parts := strings.Split(strings.TrimSpace(s), "+")
	syss := make(Systems, 0, len(parts))
	for _, p := range parts {
		name := strings.ToUpper(strings.TrimSpace(p))
		sys, ok := sysPerName[name]
		if !ok {
			return nil, fmt.Errorf("gnss: invalid satellite system: %q", p)
		}
		syss = append(syss, sys)
	}
	return syss, nil
}
