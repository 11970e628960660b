package antex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decoder reads and decodes header and antenna calibration records from an
// ANTEX input stream.
type Decoder struct {
	// Header is valid after NewDecoder returns successfully.
	Header Header

	sc      *bufio.Scanner
	cal     *Calibration
	freq    *Frequency
	lineNum int
	err     error
}

// NewDecoder creates a new decoder for ANTEX data. The header is read
// implicitly; it is the caller's responsibility to close the underlying
// reader when done.
func NewDecoder(r io.Reader) (*Decoder, error) {
	dec := &Decoder{sc: bufio.NewScanner(r)}
	dec.Header, dec.err = dec.readHeader()
	return dec, dec.err
}

// Err returns the first non-EOF error encountered by the decoder.
func (dec *Decoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *Decoder) setErr(err error) {
	dec.err = errors.Join(dec.err, err)
}

func (dec *Decoder) readLine() bool {
	if ok := dec.sc.Scan(); !ok {
		return ok
	}
	dec.lineNum++
	return true
}

func (dec *Decoder) line() string {
	return dec.sc.Text()
}

func (dec *Decoder) readHeader() (hdr Header, err error) {
	for dec.readLine() {
		line := dec.line()

		if dec.lineNum == 1 {
			if !strings.Contains(line, "ANTEX VERSION") {
				err = ErrNoHeader
				return
			}
		}

		if len(line) < 60 {
			continue
		}

		val := line[:60]
		key := strings.TrimSpace(line[60:])
		hdr.Labels = append(hdr.Labels, key)

		switch key {
		case "ANTEX VERSION / SYST":
			v, e := strconv.ParseFloat(strings.TrimSpace(val[:8]), 32)
			if e != nil {
				return hdr, fmt.Errorf("antex: parse version: %v", e)
			}
			hdr.Version = float32(v)
			hdr.SatSystem = strings.TrimSpace(val[20:21])
		case "PGM / RUN BY / DATE":
			hdr.Pgm = strings.TrimSpace(val[:20])
			hdr.RunBy = strings.TrimSpace(val[20:40])
			if date, e := parseHeaderDate(strings.TrimSpace(val[40:])); e == nil {
				hdr.Date = date
			}
		case "COMMENT":
			hdr.Comments = append(hdr.Comments, strings.TrimSpace(val))
		case "PCV TYPE / REFANT":
			hdr.PcvType = strings.TrimSpace(val[:1])
			hdr.RefAntType = strings.TrimSpace(val[20:40])
			hdr.RefAntSerial = strings.TrimSpace(val[40:60])
		case "END OF HEADER":
			return hdr, nil
		}
	}
	if err = dec.sc.Err(); err != nil {
		return hdr, err
	}
	return hdr, nil
}

// NextCalibration advances to the next antenna calibration block, returning
// false at EOF or on error (check Err after NextCalibration returns false).
func (dec *Decoder) NextCalibration() bool {
	if dec.err != nil {
		return false
	}

	for dec.readLine() {
		line := dec.line()
		// A NOAZI row holds one value per zenith step and may run past
		// column 60, so it is recognised by its leading field.
		if dec.freq != nil && strings.HasPrefix(line, "   NOAZI") {
			dec.freq.NoAzi = parsePCVRow(line[8:])
			continue
		}
		if len(line) < 60 {
			continue
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])

		switch key {
		case "START OF ANTENNA":
			dec.cal = &Calibration{}
		case "TYPE / SERIAL NO":
			dec.cal.AntType = strings.TrimSpace(val[:20])
			dec.cal.Serial = strings.TrimSpace(val[20:40])
			dec.cal.SatCode = strings.TrimSpace(val[20:40])
			dec.cal.CosparID = strings.TrimSpace(val[40:50])
		case "METH / BY / # / DATE":
			dec.cal.Method = strings.TrimSpace(val[:20])
			dec.cal.Agency = strings.TrimSpace(val[20:40])
			if n, e := strconv.Atoi(strings.TrimSpace(val[40:46])); e == nil {
				dec.cal.NumCalibrations = n
			}
			if t, e := parseHeaderDate(strings.TrimSpace(val[46:])); e == nil {
				dec.cal.CalibratedOn = t
			}
		case "DAZI":
			if f, e := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64); e == nil {
				dec.cal.Dazi = f
			}
		case "ZEN1 / ZEN2 / DZEN":
			z1, e1 := strconv.ParseFloat(strings.TrimSpace(val[2:8]), 64)
			z2, e2 := strconv.ParseFloat(strings.TrimSpace(val[8:14]), 64)
			dz, e3 := strconv.ParseFloat(strings.TrimSpace(val[14:20]), 64)
			if e1 != nil || e2 != nil || e3 != nil {
				dec.setErr(fmt.Errorf("antex: parse zenith range %q", val))
				return false
			}
			dec.cal.Zen1, dec.cal.Zen2, dec.cal.DZen = z1, z2, dz
		case "VALID FROM":
			if t, e := parseAntexEpoch(val); e == nil {
				dec.cal.ValidFrom = t
			}
		case "VALID UNTIL":
			if t, e := parseAntexEpoch(val); e == nil {
				dec.cal.ValidUntil = t
			}
		case "SINEX CODE":
			dec.cal.SinexCode = strings.TrimSpace(val)
		case "START OF FREQUENCY":
			dec.freq = &Frequency{Code: strings.TrimSpace(val[3:6])}
		case "NORTH / EAST / UP":
			n, e1 := strconv.ParseFloat(strings.TrimSpace(val[:10]), 64)
			e, e2 := strconv.ParseFloat(strings.TrimSpace(val[10:20]), 64)
			u, e3 := strconv.ParseFloat(strings.TrimSpace(val[20:30]), 64)
			if e1 != nil || e2 != nil || e3 != nil {
				dec.setErr(fmt.Errorf("antex: parse north/east/up %q", val))
				return false
			}
			dec.freq.North, dec.freq.East, dec.freq.Up = n, e, u
		case "END OF FREQUENCY":
			dec.cal.Frequencies = append(dec.cal.Frequencies, *dec.freq)
			dec.freq = nil
		case "START OF FREQ RMS":
			// RMS blocks share the START OF FREQUENCY framing but are not
			// surfaced on Calibration; skip to its end.
			dec.skipToLabel("END OF FREQ RMS")
		case "END OF ANTENNA":
			return true
		default:
			if dec.freq != nil && isAzimuthRow(val) {
				azi, e := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64)
				if e == nil {
					dec.freq.Azi = append(dec.freq.Azi, azi)
					dec.freq.AziPCV = append(dec.freq.AziPCV, parsePCVRow(line[8:]))
				}
			}
		}
	}

	if err := dec.sc.Err(); err != nil {
		dec.setErr(err)
	}
	return false
}

// Calibration returns the calibration most recently completed by
// NextCalibration.
func (dec *Decoder) Calibration() *Calibration {
	return dec.cal
}

func (dec *Decoder) skipToLabel(label string) {
	for dec.readLine() {
		line := dec.line()
		if len(line) >= 60 && strings.TrimSpace(line[60:]) == label {
			return
		}
	}
}

// isAzimuthRow recognizes an azimuth-indexed PCV data row: an 8-column
// numeric azimuth angle field with no header label.
func isAzimuthRow(val string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64)
	return err == nil
}

// parsePCVRow parses a row of fixed-width 8-column PCV values in
// millimeters, as used by both NOAZI and azimuth-indexed data lines.
func parsePCVRow(s string) []float64 {
	var out []float64
	for i := 0; i+8 <= len(s); i += 8 {
		f, err := strconv.ParseFloat(strings.TrimSpace(s[i:i+8]), 64)
		if err != nil {
			break
		}
		out = append(out, f)
	}
	return out
}
