package rinex

import (
	"fmt"
	"strings"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// NavMessageKind identifies a RINEX 4 navigation message's broadcast type,
// the token following the SV identifier on a "> EPH ..." record header
// line, e.g. "LNAV" or "CNV2".
type NavMessageKind string

// Known RINEX-4 navigation message kinds.
const (
	NavMsgLNAV NavMessageKind = "LNAV" // GPS/QZSS/NavIC legacy navigation.
	NavMsgCNAV NavMessageKind = "CNAV" // GPS/QZSS civil navigation.
	NavMsgCNV1 NavMessageKind = "CNV1" // BDS-3 B1C civil navigation.
	NavMsgCNV2 NavMessageKind = "CNV2" // GPS/QZSS/BDS-3 B2a civil navigation.
	NavMsgCNV3 NavMessageKind = "CNV3" // BDS-3 B2b civil navigation.
	NavMsgINAV NavMessageKind = "INAV" // Galileo I/NAV.
	NavMsgFNAV NavMessageKind = "FNAV" // Galileo F/NAV.
	NavMsgFDMA NavMessageKind = "FDMA" // GLONASS.
	NavMsgSBAS NavMessageKind = "SBAS" // SBAS payload.
	NavMsgD1   NavMessageKind = "D1"   // BDS-2 MEO/IGSO.
	NavMsgD2   NavMessageKind = "D2"   // BDS-2 GEO.
)

// navMessageLayout describes the wire shape of one (system, message-kind)
// broadcast body: the number of 4-floats-per-line data lines that follow
// the epoch/clock line, and the canonical name of each of those fields in
// declaration order. An empty Fields entry leaves that position unnamed
// (still read, stored positionally as "F<n>").
//
// This is the data-driven descriptor spec.md's RINEX 4 dispatch calls for:
// one row per (kind, revision, constellation) rather than one decode
// function per constellation. Lines/field counts for the legacy LNAV kinds
// are grounded on the existing decodeGPS/decodeGLO/... column layouts
// (pkg/rinex/navdecoder.go); counts for the newer civil-navigation kinds
// follow the RINEX 4.00 message-kind table.
type navMessageLayout struct {
	Lines  int
	Fields []string
}

var navLayouts = map[gnss.System]map[NavMessageKind]navMessageLayout{
	gnss.SysGPS: {
		NavMsgLNAV: {Lines: 7, Fields: []string{
			"IODE", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "L2Codes", "ToeWeek", "L2PFlag",
			"URA", "Health", "TGD", "IODC",
			"Tom", "FitInterval",
		}},
		NavMsgCNAV: {Lines: 6, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DeltaNDot", "URAedNed0", "URAned1",
			"URAned2", "Health", "TGD", "ISCL1CA",
		}},
		NavMsgCNV2: {Lines: 6, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DeltaNDot", "URAedNed0", "URAned1",
			"URAned2", "Health", "TGD", "ISCL2C",
		}},
	},
	gnss.SysQZSS: {
		NavMsgLNAV: {Lines: 7, Fields: []string{
			"IODE", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "L2Codes", "ToeWeek", "L2PFlag",
			"URA", "Health", "TGD", "IODC",
			"Tom", "FitInterval",
		}},
		NavMsgCNAV: {Lines: 6, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DeltaNDot", "URAedNed0", "URAned1",
			"URAned2", "Health", "TGD", "ISCL1CA",
		}},
		NavMsgCNV2: {Lines: 6, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DeltaNDot", "URAedNed0", "URAned1",
			"URAned2", "Health", "TGD", "ISCL2C",
		}},
	},
	gnss.SysGAL: {
		NavMsgINAV: {Lines: 7, Fields: []string{
			"IODNav", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DataSrc", "ToeWeek", "",
			"SISA", "Health", "BGDE5a", "BGDE5b",
			"Tom", "",
		}},
		NavMsgFNAV: {Lines: 6, Fields: []string{
			"IODNav", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DataSrc", "ToeWeek", "",
			"SISA", "Health", "BGDE5a", "",
		}},
	},
	gnss.SysGLO: {
		NavMsgFDMA: {Lines: 4, Fields: []string{
			"X", "Vx", "Ax", "Health",
			"Y", "Vy", "Ay", "FreqNum",
			"Z", "Vz", "Az", "AgeOfInfo",
			"StatusFlags", "TGD", "URA", "HealthFlags",
		}},
	},
	gnss.SysBDS: {
		NavMsgD1: {Lines: 7, Fields: []string{
			"AODE", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "", "ToeWeek", "",
			"URA", "SatH1", "TGD1", "TGD2",
			"Tom", "AODC",
		}},
		NavMsgD2: {Lines: 7, Fields: []string{
			"AODE", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "", "ToeWeek", "",
			"URA", "SatH1", "TGD1", "TGD2",
			"Tom", "AODC",
		}},
		NavMsgCNV1: {Lines: 6, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DeltaNDot", "SatType", "ToeWeek",
			"SISAIocb", "SISAIoce1", "SISAIoce2", "Health",
		}},
		NavMsgCNV2: {Lines: 6, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "DeltaNDot", "SatType", "ToeWeek",
			"SISAIocb", "SISAIoce1", "SISAIoce2", "Health",
		}},
		NavMsgCNV3: {Lines: 4, Fields: []string{
			"ADot", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
		}},
	},
	gnss.SysNavIC: {
		NavMsgLNAV: {Lines: 7, Fields: []string{
			"IODEC", "Crs", "DeltaN", "M0",
			"Cuc", "Ecc", "Cus", "SqrtA",
			"Toe", "Cic", "Omega0", "Cis",
			"I0", "Crc", "Omega", "OmegaDot",
			"IDOT", "", "ToeWeek", "",
			"URA", "Health", "TGD", "",
			"Tom", "",
		}},
	},
	gnss.SysSBAS: {
		NavMsgSBAS: {Lines: 3, Fields: []string{
			"X", "Vx", "Ax", "Health",
			"Y", "Vy", "Ay", "URA",
			"Z", "Vz", "Az", "IODN",
		}},
	},
}

// NavFrame is the RINEX-4 generic navigation frame: one message for one SV
// at one epoch, carrying its clock terms and the orbit/model fields named
// by navLayouts for its (system, kind) pair. Used for every RINEX 4
// message kind beyond plain GPS/QZSS/NavIC LNAV, which continue to decode into
// their dedicated EphXXX structs for backward compatibility.
type NavFrame struct {
	SV     PRN
	Kind   NavMessageKind
	RecTyp NavRecordType // EPH, STO, EOP or ION
	Toc    time.Time

	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	Fields map[string]float64
}

// decodeFrame reads one RINEX-4 EPH message body (the epoch/clock line, the
// dec.line() already positioned on it, followed by layout.Lines data lines)
// into a NavFrame, using navLayouts as the field dictionary.
func (dec *NavDecoder) decodeFrame(sys gnss.System, kind NavMessageKind) (*NavFrame, error) {
	line := dec.line()

	prn, err := dec.parsePRN()
	if err != nil {
		return nil, fmt.Errorf("rinex: parse PRN: %v", err)
	}

	toc, err := dec.parseToC()
	if err != nil {
		return nil, fmt.Errorf("rinex: parse ToC: %v", err)
	}

	frame := &NavFrame{SV: prn, Kind: kind, RecTyp: NavRecordTypeEPH, Toc: toc,
		Fields: make(map[string]float64)}

	frame.ClockBias, err = parseFloat(line[23 : 23+19])
	if err != nil {
		return nil, fmt.Errorf("rinex: parse clock bias: %v", err)
	}
	frame.ClockDrift, err = parseFloat(line[42 : 42+19])
	if err != nil {
		return nil, fmt.Errorf("rinex: parse clock drift: %v", err)
	}
	frame.ClockDriftRate, err = parseFloat(line[61 : 61+19])
	if err != nil {
		return nil, fmt.Errorf("rinex: parse clock drift rate: %v", err)
	}

	layout, ok := navLayouts[sys][kind]
	if !ok {
		// Unknown (sys, kind) pair: still consume a conservative number of
		// lines so the stream stays in sync, but carry no named fields.
		dec.skipLines(7)
		return frame, nil
	}

	idx := 0
	for i := 0; i < layout.Lines; i++ {
		if ok := dec.readLine(); !ok {
			return nil, fmt.Errorf("rinex: truncated %s record for %s", kind, prn)
		}
		f1, f2, f3, f4, err := dec.parseFloatsFromLine(0)
		if err != nil {
			return nil, fmt.Errorf("rinex: parse %s line %d: %v", kind, dec.lineNum, err)
		}
		for _, v := range [4]float64{f1, f2, f3, f4} {
			name := ""
			if idx < len(layout.Fields) {
				name = layout.Fields[idx]
			}
			if name == "" {
				name = fmt.Sprintf("F%d", idx)
			}
			frame.Fields[name] = v
			idx++
		}
	}
	return frame, nil
}

// decodeAuxRecord consumes a RINEX-4 STO, EOP or ION record: these carry no
// SV-keyed ephemeris, so their values are stored positionally under
// frame.Fields rather than through navLayouts.
func (dec *NavDecoder) decodeAuxRecord(rectyp NavRecordType, headerLine string) (*NavFrame, error) {
	lines := 2
	switch rectyp {
	case NavRecordTypeSTO:
		lines = 2
	case NavRecordTypeEOP:
		lines = 3
	case NavRecordTypeION:
		lines = 1
	}

	frame := &NavFrame{RecTyp: rectyp, Kind: NavMessageKind(strings.TrimSpace(headerLine[6:])),
		Fields: make(map[string]float64)}

	if !dec.readLine() {
		return nil, fmt.Errorf("rinex: truncated %s record", rectyp)
	}
	if toc, err := dec.parseToC(); err == nil {
		frame.Toc = toc
	}

	idx := 0
	for i := 0; i < lines; i++ {
		if i > 0 && !dec.readLine() {
			return nil, fmt.Errorf("rinex: truncated %s record", rectyp)
		}
		f1, f2, f3, f4, err := dec.parseFloatsFromLine(0)
		if err != nil {
			return nil, fmt.Errorf("rinex: parse %s line %d: %v", rectyp, dec.lineNum, err)
		}
		for _, v := range [4]float64{f1, f2, f3, f4} {
			frame.Fields[fmt.Sprintf("F%d", idx)] = v
			idx++
		}
	}
	return frame, nil
}
