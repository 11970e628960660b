package gnss

import (
	"fmt"
	"strconv"
)

// SV identifies a space vehicle as (Constellation, PRN).
type SV struct {
	Sys System
	PRN int8
}

// NewSV returns a new SV for the given system and PRN string, e.g. "12".
func NewSV(sys System, prn string) (SV, error) {
	n, err := strconv.Atoi(prn)
	if err != nil {
		return SV{}, fmt.Errorf("gnss: parse PRN %q: %v", prn, err)
	}
	return SV{Sys: sys, PRN: int8(n)}, nil
}

// ParseSV parses a 3-char RINEX satellite identifier like "G12" or "R03".
func ParseSV(s string) (SV, error) {
	if len(s) < 2 {
		return SV{}, fmt.Errorf("gnss: invalid satellite identifier: %q", s)
	}
	sys, ok := SystemByAbbr(s[:1])
	if !ok {
		return SV{}, fmt.Errorf("gnss: invalid satellite system: %q", s)
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return SV{}, fmt.Errorf("gnss: parse PRN %q: %v", s, err)
	}
	return SV{Sys: sys, PRN: int8(n)}, nil
}

// String renders the SV in its canonical RINEX form, e.g. "G12".
func (sv SV) String() string {
	return fmt.Sprintf("%s%02d", sv.Sys.Abbr(), sv.PRN)
}

// PRN specifies a GNSS satellite as (Sys, Num), the representation used by
// RINEX Clock and SP3 header records ("PRN LIST").
type PRN struct {
	Sys System // The satellite system.
	Num int8   // The satellite number.
}

// NewPRN returns a new PRN for the string prn, e.g. "G12".
func NewPRN(prn string) (PRN, error) {
	sv, err := ParseSV(prn)
	if err != nil {
		return PRN{}, err
	}
	return PRN{Sys: sv.Sys, Num: sv.PRN}, nil
}

// String renders the PRN in its canonical RINEX form, e.g. "G12".
func (prn PRN) String() string {
	return fmt.Sprintf("%s%02d", prn.Sys.Abbr(), prn.Num)
}

// ByPRN implements sort.Interface, ordering PRNs by their string form.
type ByPRN []PRN

func (p ByPRN) Len() int           { return len(p) }
func (p ByPRN) Swap(i, j int)      { p[i], p[j] = p[j], p[i] }
func (p ByPRN) Less(i, j int) bool { return p[i].String() < p[j].String() }

// SBASAugmentation identifies a specific SBAS augmentation system.
type SBASAugmentation int

// Known SBAS augmentation systems.
const (
	SBASUnknown SBASAugmentation = iota
	SBASWAAS                     // USA
	SBASEGNOS                    // Europe
	SBASMSAS                     // Japan
	SBASGAGAN                    // India
	SBASSDCM                     // Russia
	SBASBDSBAS                   // China
	SBASKASS                     // South Korea
	SBASSouthPAN                 // Australia/NZ
	SBASASBAS                    // generic/reserved Africa
)

func (a SBASAugmentation) String() string {
	return [...]string{"UNKNOWN", "WAAS", "EGNOS", "MSAS", "GAGAN", "SDCM", "BDSBAS", "KASS", "SouthPAN", "ASBAS"}[a]
}

// sbasRange maps an inclusive PRN range to its augmentation system. SBAS
// satellites are geostationary and assigned PRNs 120-158 by convention; the
// table below reflects the well-known, mostly-static allocations.
type sbasRange struct {
	lo, hi int
	sys    SBASAugmentation
}

var sbasTable = []sbasRange{
	{120, 128, SBASEGNOS},
	{129, 129, SBASSDCM},
	{130, 132, SBASWAAS},
	{133, 135, SBASWAAS},
	{136, 136, SBASSDCM},
	{137, 137, SBASMSAS},
	{138, 138, SBASWAAS},
	{140, 141, SBASGAGAN},
	{143, 145, SBASBDSBAS},
	{147, 147, SBASGAGAN},
	{148, 148, SBASSouthPAN},
}

// SBASSystemForPRN resolves a PRN in the SBAS range (120-158) to a specific
// augmentation system. It returns SBASUnknown if the PRN is not a known SBAS
// allocation. The mapping is a static table keyed by PRN, per spec §3.
func SBASSystemForPRN(prn int) SBASAugmentation {
	for _, r := range sbasTable {
		if prn >= r.lo && prn <= r.hi {
			return r.sys
		}
	}
	return SBASUnknown
}
