package rinex

import (
	"fmt"
	"io"
	"time"
)

// Write encodes the navigation header in RINEX format to w.
func (hdr *NavHeader) Write(w io.Writer) error {
	fmt.Fprintf(w, "%9.2f%11s%-20s%-1s%19s%s\n", hdr.RINEXVersion, "", "NAVIGATION DATA", hdr.SatSystem.Abbr(), "", "RINEX VERSION / TYPE")

	date := hdr.Date.UTC().Format("20060102 150405") + " UTC"
	fmt.Fprintf(w, "%-20s%-20s%-20s%s\n", hdr.Pgm, hdr.RunBy, date, "PGM / RUN BY / DATE")

	for _, c := range hdr.Comments {
		fmt.Fprintf(w, "%-60s%s\n", c, "COMMENT")
	}
	if hdr.DOI != "" {
		fmt.Fprintf(w, "%-60s%s\n", hdr.DOI, "DOI")
	}
	for _, lic := range hdr.Licenses {
		fmt.Fprintf(w, "%-60s%s\n", lic, "LICENSE OF USE")
	}
	if hdr.MergedFiles != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", hdr.MergedFiles, "", "MERGED FILE")
	}

	fmt.Fprintf(w, "%60s%s\n", "", "END OF HEADER")
	return nil
}

// formatToC renders t in the fixed 19-column "YYYY MM DD HH MM SS" layout
// parseToC reads at line[4:23] (RINEX-3/4 nav records).
func formatToC(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%4d %02d %02d %02d %02d %02d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// writeFloatLine renders one nav data line of 4 D19.12 fields (the 4X,4D19.12
// RINEX-3/4 layout parseFloatsFromLine reads), using blank fields once the
// caller runs out of values.
func writeFloatLine(w io.Writer, vals ...float64) error {
	var b []byte
	b = append(b, "    "...)
	for _, v := range vals {
		b = append(b, []byte(fmt.Sprintf("%19.12E", v))...)
	}
	_, err := fmt.Fprintln(w, string(b))
	return err
}

// WriteEphGPS writes one GPS broadcast ephemeris (8 lines: PRN/epoch/clock,
// then 6 lines of 4 orbit parameters, then a last line with the transmission
// time and fit interval) in RINEX-3 layout, the inverse of decodeGPS.
func WriteEphGPS(w io.Writer, eph *EphGPS) error {
	if _, err := fmt.Fprintf(w, "%-3s %s%19.12E%19.12E%19.12E\n", eph.PRN.String(),
		formatToC(eph.TOC), eph.ClockBias, eph.ClockDrift, eph.ClockDriftRate); err != nil {
		return err
	}
	lines := [7][4]float64{
		{eph.IODE, eph.Crs, eph.DeltaN, eph.M0},
		{eph.Cuc, eph.Ecc, eph.Cus, eph.SqrtA},
		{eph.Toe, eph.Cic, eph.Omega0, eph.Cis},
		{eph.I0, eph.Crc, eph.Omega, eph.OmegaDot},
		{eph.IDOT, eph.L2Codes, eph.ToeWeek, eph.L2PFlag},
		{eph.URA, eph.Health, eph.TGD, eph.IODC},
		{eph.Tom, eph.FitInterval, 0, 0},
	}
	for i, l := range lines {
		n := 4
		if i == len(lines)-1 { // last line only carries 2 values
			n = 2
		}
		if err := writeFloatLine(w, l[:n]...); err != nil {
			return err
		}
	}
	return nil
}

// WriteNavFrame writes one RINEX-4 generic navigation record (the record
// header line, the PRN/epoch/clock line, then the message kind's data
// lines) from a NavFrame decoded via decodeFrame, using the same navLayouts
// table to recover field order.
func WriteNavFrame(w io.Writer, frame *NavFrame) error {
	if _, err := fmt.Fprintf(w, "> EPH %s  %s\n", frame.SV.Sys.Abbr(), frame.Kind); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%-3s %s%19.12E%19.12E%19.12E\n", frame.SV.String(),
		formatToC(frame.Toc), frame.ClockBias, frame.ClockDrift, frame.ClockDriftRate); err != nil {
		return err
	}

	layout, ok := navLayouts[frame.SV.Sys][frame.Kind]
	if !ok {
		return fmt.Errorf("rinex: no layout for %s/%s, cannot emit data lines", frame.SV.Sys, frame.Kind)
	}

	idx := 0
	for line := 0; line < layout.Lines; line++ {
		vals := make([]float64, 0, 4)
		for i := 0; i < 4 && idx < len(layout.Fields); i++ {
			name := layout.Fields[idx]
			if name == "" {
				name = fmt.Sprintf("F%d", idx)
			}
			idx++
			vals = append(vals, frame.Fields[name])
		}
		if err := writeFloatLine(w, vals...); err != nil {
			return err
		}
	}
	return nil
}
