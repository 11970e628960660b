package rinex

import (
	"fmt"
	"io"
	"strings"
)

// Write encodes the clock header in RINEX format to w. Only the fields
// readHeader300/readHeader304 populate are emitted; callers building a
// header from scratch must set RINEXVersion, RINEXType and Pgm/RunBy/Date
// at minimum.
func (hdr *ClockHeader) Write(w io.Writer) error {
	fmt.Fprintf(w, "%9.2f%11s%-20s%-1s%19s%s\n", hdr.RINEXVersion, "", "CLOCK DATA", hdr.SatSystem.Abbr(), "", "RINEX VERSION / TYPE")

	date := hdr.Date.UTC().Format("20060102 150405") + " UTC"
	fmt.Fprintf(w, "%-20s%-20s%-20s%s\n", hdr.Pgm, hdr.RunBy, date, "PGM / RUN BY / DATE")

	for _, c := range hdr.Comments {
		fmt.Fprintf(w, "%-60s%s\n", c, "COMMENT")
	}
	if hdr.TimeSystemID != "" {
		fmt.Fprintf(w, "%3s%-3s%54s%s\n", "", hdr.TimeSystemID, "", "TIME SYSTEM ID")
	}
	if hdr.AC != "" {
		fmt.Fprintf(w, "%-3s%-57s%s\n", hdr.AC, "", "ANALYSIS CENTER")
	}
	if hdr.NumSolnSats != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", hdr.NumSolnSats, "", "# OF SOLN SATS")
		for i := 0; i < len(hdr.Sats); i += 15 {
			end := i + 15
			if end > len(hdr.Sats) {
				end = len(hdr.Sats)
			}
			var b strings.Builder
			for _, prn := range hdr.Sats[i:end] {
				fmt.Fprintf(&b, "%-4s", prn.String())
			}
			fmt.Fprintf(w, "%-60s%s\n", b.String(), "PRN LIST")
		}
	}

	fmt.Fprintf(w, "%60s%s\n", "", "END OF HEADER")
	return nil
}

// WriteClockRecord writes one RINEX clock data record to w, splitting
// values onto a continuation line once NumValues exceeds 2, matching
// NextRecord's parse layout (see the column-offset comment there).
func WriteClockRecord(w io.Writer, rec *ClockRecord) error {
	sec := float64(rec.Time.Second()) + float64(rec.Time.Nanosecond())/1e9
	if _, err := fmt.Fprintf(w, "%-2s %-4s %4d %2d %2d %2d %2d %9.6f %2d  ",
		string(rec.Type), rec.Name, rec.Time.Year(), int(rec.Time.Month()), rec.Time.Day(),
		rec.Time.Hour(), rec.Time.Minute(), sec, rec.NumValues); err != nil {
		return err
	}

	vals := []float64{rec.Bias, rec.BiasSigma, rec.Rate, rec.RateSigma, rec.Accel, rec.AccelSigma}
	if rec.NumValues < len(vals) {
		vals = vals[:rec.NumValues]
	}
	for i, v := range vals {
		if i == 2 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%20.12e", v); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteClockFile writes a complete RINEX clock file to w: the header, then
// one data record per entry in records, in the order given.
func WriteClockFile(w io.Writer, hdr *ClockHeader, records []*ClockRecord) error {
	if err := hdr.Write(w); err != nil {
		return err
	}
	for _, rec := range records {
		if err := WriteClockRecord(w, rec); err != nil {
			return err
		}
	}
	return nil
}
