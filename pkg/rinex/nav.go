package rinex

import (
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// NavRecordType identifies a RINEX-4 navigation message record type, found
// after the leading "> " on a record header line.
type NavRecordType string

// Known RINEX-4 navigation record types.
const (
	NavRecordTypeEPH NavRecordType = "EPH" // Ephemeris.
	NavRecordTypeSTO NavRecordType = "STO" // System time and UTC offset.
	NavRecordTypeEOP NavRecordType = "EOP" // Earth orientation parameters.
	NavRecordTypeION NavRecordType = "ION" // Ionosphere model parameters.
)

// Eph is the interface that wraps some methods for all types of ephemeris.
type Eph interface {
	// Validate checks the ephemeris.
	Validate() error
}

// EphGPS describes a GPS ephemeris.
type EphGPS struct {
	PRN         PRN
	MessageType string // RINEX-4 only, e.g. "LNAV".

	// Clock
	TOC            time.Time // Time of Clock, clock reference epoch
	ClockBias      float64   // sc clock bias in seconds
	ClockDrift     float64   // sec/sec
	ClockDriftRate float64   // sec/sec2

	IODE   float64 // Issue of Data, Ephemeris
	Crs    float64 // meters
	DeltaN float64 // radians/sec
	M0     float64 // radians

	Cuc   float64 // radians
	Ecc   float64 // Eccentricity
	Cus   float64 // radians
	SqrtA float64 // sqrt(m)

	Toe    float64 // time of ephemeris (sec of GPS week)
	Cic    float64 // radians
	Omega0 float64 // radians
	Cis    float64 // radians

	I0       float64 // radians
	Crc      float64 // meters
	Omega    float64 // radians
	OmegaDot float64 // radians/sec

	IDOT    float64 // radians/sec
	L2Codes float64
	ToeWeek float64 // GPS week (to go with TOE) Continuous
	L2PFlag float64

	URA    float64 // SV accuracy in meters
	Health float64 // SV health (bits 17-22 w 3 sf 1)
	TGD    float64 // seconds
	IODC   float64 // Issue of Data, clock

	Tom         float64 // transmission time of message, seconds of GPS week
	FitInterval float64 // Fit interval in hours
}

// Validate checks the ephemeris. TODO: add real sanity checks.
func (EphGPS) Validate() error { return nil }

// EphGLO describes a GLONASS ephemeris.
type EphGLO struct {
	PRN         PRN
	MessageType string
	TOC         time.Time
}

// Validate checks the ephemeris.
func (EphGLO) Validate() error { return nil }

// EphGAL describes a Galileo ephemeris.
type EphGAL struct {
	PRN         PRN
	MessageType string
	TOC         time.Time
}

// Validate checks the ephemeris.
func (EphGAL) Validate() error { return nil }

// EphQZSS describes a QZSS ephemeris.
type EphQZSS struct {
	PRN         PRN
	MessageType string
	TOC         time.Time
}

// Validate checks the ephemeris.
func (EphQZSS) Validate() error { return nil }

// EphBDS describes a chinese BDS ephemeris.
type EphBDS struct {
	PRN         PRN
	MessageType string
	TOC         time.Time
}

// Validate checks the ephemeris.
func (EphBDS) Validate() error { return nil }

// EphNavIC describes an indian NavIC (formerly IRNSS) ephemeris.
type EphNavIC struct {
	PRN         PRN
	MessageType string
	TOC         time.Time
}

// Validate checks the ephemeris.
func (EphNavIC) Validate() error { return nil }

// EphSBAS describes a SBAS payload.
type EphSBAS struct {
	PRN         PRN
	MessageType string
	TOC         time.Time
}

// Validate checks the ephemeris.
func (EphSBAS) Validate() error { return nil }

// A NavHeader contains the RINEX Navigation Header information.
// All header parameters are optional and may comprise different types of ionospheric model parameters
// and time conversion parameters.
type NavHeader struct {
	RINEXVersion float32     `validate:"gte=2,lte=4.1"` // RINEX Format version
	RINEXType    string      // RINEX File type. N for Nav
	SatSystem    gnss.System // Satellite System. System is "Mixed" if more than one.

	Pgm   string    // name of program creating this file
	RunBy string    // name of agency creating this file
	Date  time.Time // date and time of file creation

	Comments []string // * comment lines

	MergedFiles int      `validate:"gte=0"` // number of merged files, from a "MERGED FILE" header record
	DOI         string   // digital object identifier
	Licenses    []string // license of use records

	Labels   []string // all Header Labels found
	warnings []string
}

// A headerLabel is a RINEX Header Label.
type headerLabel struct {
	label    string
	official bool
	optional bool
}

// A NavFile contains fields and methods for RINEX navigation files and includes common methods for
// handling RINEX Nav files.
// It is useful e.g. for operations on the RINEX filename.
// If you do not need these file-related features, use the NavDecoder instead.
type NavFile struct {
	*RnxFil
	Header NavHeader
	Stats  *NavStats
}

// NewNavFile returns a new Navigation File object.
func NewNavFile(filepath string) (*NavFile, error) {
	navFil := &NavFile{RnxFil: &RnxFil{Path: filepath}}
	err := navFil.parseFilename()
	return navFil, err
}

// Validate validates the RINEX Nav file. It is valid if no error is returned.
func (f *NavFile) Validate() error {
	log.Printf("validate nav file %s", f.Path)
	r, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open nav file: %v", err)
	}
	defer r.Close()

	// Read the header
	dec, err := NewNavDecoder(r)
	if err != nil {
		return err
	}
	f.Header = dec.Header

	return dec.Header.Validate()
}

// NavStats holds some statistics about a RINEX nav file, derived from its ephemerides.
type NavStats struct {
	NumEphemeris    int           `json:"numEphemeris"`
	SatSystems      []gnss.System `json:"satSystems"`
	Satellites      []PRN         `json:"satellites"`
	EarliestEphTime time.Time     `json:"earliestEphTime"`
	LatestEphTime   time.Time     `json:"latestEphTime"`
}

// GetStats reads the file and computes some statistics on the ephemerides it contains.
func (f *NavFile) GetStats() (stats NavStats, err error) {
	r, err := os.Open(f.Path)
	if err != nil {
		return
	}
	defer r.Close()

	dec, err := NewNavDecoder(r)
	if err != nil && err != ErrNoHeader {
		return
	}
	f.Header = dec.Header

	sysSeen := map[gnss.System]struct{}{}
	satSeen := map[PRN]struct{}{}

	for dec.NextEphemeris() {
		eph := dec.Ephemeris()
		stats.NumEphemeris++

		prn, toc := ephPRN(eph), ephTOC(eph)

		if _, ok := sysSeen[prn.Sys]; !ok {
			sysSeen[prn.Sys] = struct{}{}
			stats.SatSystems = append(stats.SatSystems, prn.Sys)
		}
		if _, ok := satSeen[prn]; !ok {
			satSeen[prn] = struct{}{}
			stats.Satellites = append(stats.Satellites, prn)
		}

		if stats.EarliestEphTime.IsZero() || toc.Before(stats.EarliestEphTime) {
			stats.EarliestEphTime = toc
		}
		if toc.After(stats.LatestEphTime) {
			stats.LatestEphTime = toc
		}
	}
	if err = dec.Err(); err != nil {
		return
	}

	sort.Slice(stats.SatSystems, func(i, j int) bool { return stats.SatSystems[i] < stats.SatSystems[j] })
	f.Stats = &stats
	return stats, nil
}

// ephPRN extracts the satellite PRN from any concrete Eph type.
func ephPRN(eph Eph) PRN {
	switch e := eph.(type) {
	case *EphGPS:
		return e.PRN
	case *EphGLO:
		return e.PRN
	case *EphGAL:
		return e.PRN
	case *EphQZSS:
		return e.PRN
	case *EphBDS:
		return e.PRN
	case *EphNavIC:
		return e.PRN
	case *EphSBAS:
		return e.PRN
	}
	return PRN{}
}

// ephTOC extracts the time of clock from any concrete Eph type.
func ephTOC(eph Eph) time.Time {
	switch e := eph.(type) {
	case *EphGPS:
		return e.TOC
	case *EphGLO:
		return e.TOC
	case *EphGAL:
		return e.TOC
	case *EphQZSS:
		return e.TOC
	case *EphBDS:
		return e.TOC
	case *EphNavIC:
		return e.TOC
	case *EphSBAS:
		return e.TOC
	}
	return time.Time{}
}

var rnx3HeaderLables = []headerLabel{
	// mandatory
	{label: "RINEX VERSION / TYPE", official: true, optional: false},
	{label: "PGM / RUN BY / DATE", official: true, optional: false},
	{label: "END OF HEADER", official: true, optional: false},
	// optional
	{label: "COMMENT", official: true, optional: true},
	{label: "MERGED FILE", official: true, optional: true},
	{label: "DOI", official: true, optional: true},
	{label: "LICENSE OF USE", official: true, optional: true},
	{label: "IONOSPHERIC CORR", official: true, optional: true},
	{label: "TIME SYSTEM CORR", official: true, optional: true},
	{label: "LEAP SECONDS", official: true, optional: true},
}

var navHeaderLables = map[float32][]headerLabel{
	2: {
		// mandatory
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		// optional
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
	},
	2.01: {
		// mandatory
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		// optional
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
		{label: "CORR TO SYSTEM TIME", official: true, optional: true},
	},
	2.10: {
		// mandatory
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		// optional
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
		{label: "CORR TO SYSTEM TIME", official: true, optional: true},
	},
	2.11: {
		// The "CORR TO SYSTEM TIME" header record (in 2.10 for GLONASS Nav) has been replaced by the more general record "D-UTC A0,A1,T,W,S,U" in Version 2.11.
		// mandatory
		{label: "RINEX VERSION / TYPE", official: true, optional: false},
		{label: "PGM / RUN BY / DATE", official: true, optional: false},
		{label: "END OF HEADER", official: true, optional: false},
		// optional
		{label: "COMMENT", official: true, optional: true},
		{label: "ION ALPHA", official: true, optional: true},
		{label: "ION BETA", official: true, optional: true},
		{label: "DELTA-UTC: A0,A1,T,W", official: true, optional: true},
		{label: "LEAP SECONDS", official: true, optional: true},
		{label: "CORR TO SYSTEM TIME", official: true, optional: true},
	},
	3.00: rnx3HeaderLables,
	3.01: rnx3HeaderLables,
	3.02: rnx3HeaderLables,
	3.03: rnx3HeaderLables,
	3.04: rnx3HeaderLables,
	3.05: rnx3HeaderLables,
	4: {
		// mandatory
		{label: "RINEX VERSION / TYPE", optional: false},
		{label: "PGM / RUN BY / DATE", optional: false},
		{label: "END OF HEADER", optional: false},
		// optional
		{label: "COMMENT", optional: true},
		{label: "MERGED FILE", optional: true},
		{label: "DOI", optional: true},
		{label: "LICENSE OF USE", optional: true},
		{label: "IONOSPHERIC CORR", optional: true},
		{label: "TIME SYSTEM CORR", optional: true},
		{label: "LEAP SECONDS", optional: true},
	},
}

// Validate validates the RINEX Nav header. It is valid if no error is returned.
func (hdr NavHeader) Validate() error {
	if err := validate.Struct(hdr); err != nil {
		return fmt.Errorf("nav header: %w", err)
	}

	if hdr.RINEXVersion >= 3 {
		if hdr.RINEXType != "N" {
			return fmt.Errorf("invalid RINEX TYPE: %q", hdr.RINEXType)
		}
	}

	// unofficial RINEX 2.12
	if hdr.RINEXVersion == 2.12 {
		return fmt.Errorf("invalid RINEX VERSION: %.2f", 2.12)
	}

	hLablesMust, ok := navHeaderLables[hdr.RINEXVersion]
	if !ok {
		return fmt.Errorf("invalid RINEX VERSION: %.2f", hdr.RINEXVersion)
	}

	// Check existence of mandatory header lines
	hlpmap := make(map[string]struct{}, len(hdr.Labels))
	for _, l := range hdr.Labels {
		hlpmap[l] = struct{}{}
	}

	for _, f := range hLablesMust {
		if f.optional {
			continue
		}
		if _, ok := hlpmap[f.label]; !ok {
			hdr.warnings = append(hdr.warnings, fmt.Sprintf("mandatory header label does not exist: %s", f.label))
		}
	}

	// Vice versa, check found header lines
	hlpmap = make(map[string]struct{}, len(hLablesMust))
	for _, h := range hLablesMust {
		hlpmap[h.label] = struct{}{}
	}
	for _, l := range hdr.Labels {
		if _, ok := hlpmap[l]; !ok {
			hdr.warnings = append(hdr.warnings, fmt.Sprintf("invalid RINEX %.2f header label: %s", hdr.RINEXVersion, l))
		}
	}

	return nil
}
