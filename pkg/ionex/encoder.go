package ionex

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrNot2D is returned by NewEncoder when asked to encode a header whose
// MapDimension is neither 2 nor 0; this engine only writes 2D (single-layer)
// IONEX files, matching its read/write support table.
var ErrNot2D = fmt.Errorf("ionex: only 2D (single layer) IONEX files can be written")

// Encoder writes an IONEX header and a sequence of 2D TEC maps to w.
type Encoder struct {
	w      io.Writer
	hdr    Header
	nWritten int
}

// NewEncoder creates an Encoder that writes hdr and subsequent maps to w.
// hdr.MapDimension must be 2, or 0, which is written as 2.
func NewEncoder(w io.Writer, hdr Header) (*Encoder, error) {
	if hdr.MapDimension != 0 && hdr.MapDimension != 2 {
		return nil, ErrNot2D
	}
	hdr.MapDimension = 2
	enc := &Encoder{w: w, hdr: hdr}
	if err := enc.writeHeader(); err != nil {
		return nil, err
	}
	return enc, nil
}

func (enc *Encoder) writeHeader() error {
	h := &enc.hdr
	w := enc.w

	fileType := h.FileType
	if fileType == "" {
		fileType = "I"
	}
	fmt.Fprintf(w, "%8.1f%12s%-1s%19s%-1s%19s%s\n", h.Version, "", fileType, "", h.System, "", "IONEX VERSION / TYPE")
	date := h.Date.UTC().Format("20060102 150405") + " UTC"
	fmt.Fprintf(w, "%-20s%-20s%-20s%s\n", h.Pgm, h.RunBy, date, "PGM / RUN BY / DATE")

	for _, c := range h.Comments {
		fmt.Fprintf(w, "%-60s%s\n", c, "COMMENT")
	}
	for _, d := range h.Description {
		fmt.Fprintf(w, "%-60s%s\n", d, "DESCRIPTION")
	}

	fmt.Fprintf(w, "%s%24s%s\n", formatEpoch(h.EpochOfFirstMap), "", "EPOCH OF FIRST MAP")
	fmt.Fprintf(w, "%s%24s%s\n", formatEpoch(h.EpochOfLastMap), "", "EPOCH OF LAST MAP")

	if h.IntervalSecs != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", h.IntervalSecs, "", "INTERVAL")
	}
	fmt.Fprintf(w, "%6d%54s%s\n", h.NumOfMaps, "", "# OF MAPS IN FILE")

	mf := h.MappingFunction
	if mf == "" {
		mf = "NONE"
	}
	fmt.Fprintf(w, "%-4s%56s%s\n", mf, "", "MAPPING FUNCTION")
	fmt.Fprintf(w, "%8.1f%52s%s\n", h.ElevationCutoff, "", "ELEVATION CUTOFF")

	if h.ObservablesUsed != "" {
		fmt.Fprintf(w, "%-60s%s\n", h.ObservablesUsed, "OBSERVABLES USED")
	}
	if h.NumOfStations != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", h.NumOfStations, "", "# OF STATIONS")
	}
	if h.NumOfSatellites != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", h.NumOfSatellites, "", "# OF SATELLITES")
	}

	fmt.Fprintf(w, "%8.1f%52s%s\n", h.BaseRadius, "", "BASE RADIUS")
	fmt.Fprintf(w, "%6d%54s%s\n", h.MapDimension, "", "MAP DIMENSION")
	fmt.Fprintf(w, "%2s%6.1f%6.1f%6.1f%40s%s\n", "", h.Hgt1, h.Hgt2, h.DHgt, "", "HGT1 / HGT2 / DHGT")
	fmt.Fprintf(w, "%2s%6.1f%6.1f%6.1f%40s%s\n", "", h.Lat1, h.Lat2, h.DLat, "", "LAT1 / LAT2 / DLAT")
	fmt.Fprintf(w, "%2s%6.1f%6.1f%6.1f%40s%s\n", "", h.Lon1, h.Lon2, h.DLon, "", "LON1 / LON2 / DLON")
	fmt.Fprintf(w, "%6d%54s%s\n", h.Exponent, "", "EXPONENT")

	fmt.Fprintf(w, "%60s%s\n", "", "END OF HEADER")
	return nil
}

func formatEpoch(t time.Time) string {
	return fmt.Sprintf("%6d%6d%6d%6d%6d%6d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// WriteMap encodes one TEC map (EPOCH OF CURRENT MAP, grid rows wrapped at
// 16 values per line, END OF TEC MAP). Only the TEC grid (m.Values) is
// written; RMS maps are not emitted by the 2D writer.
func (enc *Encoder) WriteMap(m *TecMap) error {
	enc.nWritten++
	w := enc.w

	fmt.Fprintf(w, "%6d%54s%s\n", enc.nWritten, "", "START OF TEC MAP")
	fmt.Fprintf(w, "%s%24s%s\n", formatEpoch(m.Epoch.UTC()), "", "EPOCH OF CURRENT MAP")

	nLat, nLon, _ := m.dims()
	scale := pow10(-enc.hdr.Exponent)

	for i := 0; i < nLat; i++ {
		lat := enc.hdr.Lat1 + enc.hdr.DLat*float64(i)
		fmt.Fprintf(w, "%2s%6.1f%6.1f%6.1f%6.1f%6.1f%28s%s\n", "", lat, enc.hdr.Lon1, enc.hdr.Lon2, enc.hdr.DLon, enc.hdr.Hgt1, "", "LAT/LON1/LON2/DLON/H")

		var b strings.Builder
		for j := 0; j < nLon; j++ {
			idx := m.flatIndex(i, j, 0)
			v := 9999.0
			if idx >= 0 && idx < len(m.Values) {
				v = m.Values[idx] * scale
			}
			fmt.Fprintf(&b, "%5d", int(v+sign(v)*0.5))
			if (j+1)%16 == 0 {
				b.WriteByte('\n')
			}
		}
		if b.Len() == 0 || b.String()[b.Len()-1] != '\n' {
			b.WriteByte('\n')
		}
		w.Write([]byte(b.String()))
	}

	fmt.Fprintf(w, "%6d%54s%s\n", enc.nWritten, "", "END OF TEC MAP")
	return nil
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// Close writes nothing: no END OF FILE trailer is emitted. It is a no-op
// reserved for symmetry with other encoders in the engine.
func (enc *Encoder) Close() error {
	return nil
}
