package antex

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Encoder writes an ANTEX header followed by a sequence of antenna
// calibrations. Writing supports NOAZI-only (azimuth-independent) patterns;
// calibrations carrying azimuth-dependent PCV rows or FREQ RMS blocks are
// written with those parts omitted, matching the engine's partial ANTEX
// write support.
type Encoder struct {
	w   io.Writer
	hdr Header
}

// NewEncoder creates an Encoder that writes hdr and subsequent calibrations
// to w.
func NewEncoder(w io.Writer, hdr Header) (*Encoder, error) {
	enc := &Encoder{w: w, hdr: hdr}
	if err := enc.writeHeader(); err != nil {
		return nil, err
	}
	return enc, nil
}

func (enc *Encoder) writeHeader() error {
	h := &enc.hdr
	w := enc.w

	fmt.Fprintf(w, "%8.1f%12s%-1s%39s%s\n", h.Version, "", h.SatSystem, "", "ANTEX VERSION / SYST")

	date := h.Date.UTC().Format("20060102 150405") + " UTC"
	fmt.Fprintf(w, "%-20s%-20s%-20s%s\n", h.Pgm, h.RunBy, date, "PGM / RUN BY / DATE")

	for _, c := range h.Comments {
		fmt.Fprintf(w, "%-60s%s\n", c, "COMMENT")
	}

	pcvType := h.PcvType
	if pcvType == "" {
		pcvType = "A"
	}
	fmt.Fprintf(w, "%-1s%19s%-20s%-20s%s\n", pcvType, "", h.RefAntType, h.RefAntSerial, "PCV TYPE / REFANT")

	fmt.Fprintf(w, "%60s%s\n", "", "END OF HEADER")
	return nil
}

// WriteCalibration encodes one antenna calibration block: START/END OF
// ANTENNA framing, TYPE/SERIAL NO, METH/BY/#/DATE, DAZI, ZEN1/ZEN2/DZEN,
// #OF FREQUENCIES, VALID FROM/UNTIL, SINEX CODE, and one START/END OF
// FREQUENCY block per Frequency with its NORTH/EAST/UP and NOAZI pattern.
func (enc *Encoder) WriteCalibration(c *Calibration) error {
	w := enc.w

	fmt.Fprintf(w, "%60s%s\n", "", "START OF ANTENNA")

	serial := c.Serial
	if serial == "" {
		serial = c.SatCode
	}
	fmt.Fprintf(w, "%-20s%-20s%-10s%10s%s\n", c.AntType, serial, c.CosparID, "", "TYPE / SERIAL NO")

	calDate := ""
	if !c.CalibratedOn.IsZero() {
		calDate = strings.ToUpper(c.CalibratedOn.UTC().Format("02-Jan-06"))
	}
	fmt.Fprintf(w, "%-20s%-20s%6d%-14s%s\n", c.Method, c.Agency, c.NumCalibrations, calDate, "METH / BY / # / DATE")

	if c.Dazi != 0 {
		fmt.Fprintf(w, "%8.1f%52s%s\n", c.Dazi, "", "DAZI")
	}
	fmt.Fprintf(w, "%2s%6.1f%6.1f%6.1f%40s%s\n", "", c.Zen1, c.Zen2, c.DZen, "", "ZEN1 / ZEN2 / DZEN")
	fmt.Fprintf(w, "%6d%54s%s\n", len(c.Frequencies), "", "# OF FREQUENCIES")

	if !c.ValidFrom.IsZero() {
		fmt.Fprintf(w, "%s%17s%s\n", formatAntexEpoch(c.ValidFrom), "", "VALID FROM")
	}
	if !c.ValidUntil.IsZero() {
		fmt.Fprintf(w, "%s%17s%s\n", formatAntexEpoch(c.ValidUntil), "", "VALID UNTIL")
	}
	if c.SinexCode != "" {
		fmt.Fprintf(w, "%-60s%s\n", c.SinexCode, "SINEX CODE")
	}

	for _, f := range c.Frequencies {
		if err := enc.writeFrequency(&f); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "%60s%s\n", "", "END OF ANTENNA")
	return nil
}

func (enc *Encoder) writeFrequency(f *Frequency) error {
	w := enc.w

	fmt.Fprintf(w, "   %-3s%54s%s\n", f.Code, "", "START OF FREQUENCY")
	fmt.Fprintf(w, "%10.2f%10.2f%10.2f%30s%s\n", f.North, f.East, f.Up, "", "NORTH / EAST / UP")

	row := "   NOAZI"
	for _, v := range f.NoAzi {
		row += fmt.Sprintf("%8.2f", v)
	}
	if pad := 60 - len(row); pad > 0 {
		row += fmt.Sprintf("%*s", pad, "")
	}
	fmt.Fprintf(w, "%s%s\n", row, "NOAZI")

	// Azimuth-dependent PCV rows are dropped: the engine's ANTEX writer is
	// NOAZI-only.
	fmt.Fprintf(w, "%60s%s\n", "", "END OF FREQUENCY")
	return nil
}

func formatAntexEpoch(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%6d%6d%6d%6d%6d%13.7f", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(),
		float64(t.Second())+float64(t.Nanosecond())/1e9)
}

// Close is a no-op reserved for symmetry with other encoders in the engine.
func (enc *Encoder) Close() error {
	return nil
}
