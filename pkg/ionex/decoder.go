package ionex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Decoder reads and decodes header and TEC map records from an IONEX input
// stream.
type Decoder struct {
	// Header is valid after NewDecoder returns successfully.
	Header Header

	sc      *bufio.Scanner
	m       *TecMap // the map currently being assembled
	dtype   int     // 0: between maps, 1: TEC map, 2: RMS map
	byEpoch map[time.Time]*TecMap
	lineNum int
	err     error
}

// NewDecoder creates a new decoder for IONEX data. The header is read
// implicitly; it is the caller's responsibility to close the underlying
// reader when done.
func NewDecoder(r io.Reader) (*Decoder, error) {
	dec := &Decoder{sc: bufio.NewScanner(r), byEpoch: map[time.Time]*TecMap{}}
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
	hdr.Exponent = -1
	hdr.DCBs = map[string]DCB{}

readln:
	for dec.readLine() {
		line := dec.line()

		if dec.lineNum == 1 {
			if !strings.Contains(line, "IONEX VERSION") {
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
		case "IONEX VERSION / TYPE":
			v, e := strconv.ParseFloat(strings.TrimSpace(val[:8]), 32)
			if e != nil {
				return hdr, fmt.Errorf("ionex: parse version: %v", e)
			}
			hdr.Version = float32(v)
			hdr.FileType = strings.TrimSpace(val[20:21])
			hdr.System = strings.TrimSpace(val[40:41])
		case "PGM / RUN BY / DATE":
			hdr.Pgm = strings.TrimSpace(val[:20])
			hdr.RunBy = strings.TrimSpace(val[20:40])
			if date, e := parseHeaderDate(strings.TrimSpace(val[40:])); e == nil {
				hdr.Date = date
			}
		case "COMMENT":
			hdr.Comments = append(hdr.Comments, strings.TrimSpace(val))
		case "DESCRIPTION":
			hdr.Description = append(hdr.Description, strings.TrimSpace(val))
		case "EPOCH OF FIRST MAP":
			t, e := parseEpoch(val)
			if e != nil {
				return hdr, fmt.Errorf("ionex: %v", e)
			}
			hdr.EpochOfFirstMap = t
		case "EPOCH OF LAST MAP":
			t, e := parseEpoch(val)
			if e != nil {
				return hdr, fmt.Errorf("ionex: %v", e)
			}
			hdr.EpochOfLastMap = t
		case "INTERVAL":
			n, e := strconv.Atoi(strings.TrimSpace(val[:6]))
			if e != nil {
				return hdr, fmt.Errorf("ionex: parse interval: %v", e)
			}
			hdr.IntervalSecs = n
		case "# OF MAPS IN FILE":
			n, e := strconv.Atoi(strings.TrimSpace(val[:6]))
			if e != nil {
				return hdr, fmt.Errorf("ionex: parse # of maps: %v", e)
			}
			hdr.NumOfMaps = n
		case "MAPPING FUNCTION":
			hdr.MappingFunction = strings.TrimSpace(val[:4])
		case "ELEVATION CUTOFF":
			f, e := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64)
			if e == nil {
				hdr.ElevationCutoff = f
			}
		case "OBSERVABLES USED":
			hdr.ObservablesUsed = strings.TrimSpace(val)
		case "# OF STATIONS":
			n, e := strconv.Atoi(strings.TrimSpace(val[:6]))
			if e == nil {
				hdr.NumOfStations = n
			}
		case "# OF SATELLITES":
			n, e := strconv.Atoi(strings.TrimSpace(val[:6]))
			if e == nil {
				hdr.NumOfSatellites = n
			}
		case "BASE RADIUS":
			f, e := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64)
			if e != nil {
				return hdr, fmt.Errorf("ionex: parse base radius: %v", e)
			}
			hdr.BaseRadius = f
		case "MAP DIMENSION":
			n, e := strconv.Atoi(strings.TrimSpace(val[:6]))
			if e != nil {
				return hdr, fmt.Errorf("ionex: parse map dimension: %v", e)
			}
			hdr.MapDimension = n
		case "HGT1 / HGT2 / DHGT":
			hdr.Hgt1, hdr.Hgt2, hdr.DHgt, err = parseAxisTriple(val)
			if err != nil {
				return hdr, fmt.Errorf("ionex: %v", err)
			}
		case "LAT1 / LAT2 / DLAT":
			hdr.Lat1, hdr.Lat2, hdr.DLat, err = parseAxisTriple(val)
			if err != nil {
				return hdr, fmt.Errorf("ionex: %v", err)
			}
		case "LON1 / LON2 / DLON":
			hdr.Lon1, hdr.Lon2, hdr.DLon, err = parseAxisTriple(val)
			if err != nil {
				return hdr, fmt.Errorf("ionex: %v", err)
			}
		case "EXPONENT":
			n, e := strconv.Atoi(strings.TrimSpace(val[:6]))
			if e != nil {
				return hdr, fmt.Errorf("ionex: parse exponent: %v", e)
			}
			hdr.Exponent = n
		case "START OF AUX DATA":
			if strings.Contains(val, "DIFFERENTIAL CODE BIASES") {
				if err := dec.readDCBs(&hdr); err != nil {
					return hdr, err
				}
			}
		case "END OF HEADER":
			break readln
		default:
			// unknown/optional record, ignore
		}
	}

	if err = dec.sc.Err(); err != nil {
		return hdr, err
	}
	return hdr, nil
}

// readDCBs reads PRN / BIAS / RMS records up to END OF AUX DATA.
func (dec *Decoder) readDCBs(hdr *Header) error {
	for dec.readLine() {
		line := dec.line()
		if len(line) < 60 {
			continue
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])
		switch key {
		case "PRN / BIAS / RMS":
			id := strings.TrimSpace(val[3:6])
			bias, e1 := strconv.ParseFloat(strings.TrimSpace(val[6:16]), 64)
			rms, _ := strconv.ParseFloat(strings.TrimSpace(val[16:26]), 64)
			if e1 == nil {
				hdr.DCBs[id] = DCB{Bias: bias, RMS: rms}
			}
		case "END OF AUX DATA":
			return nil
		}
	}
	return dec.sc.Err()
}

// NextMap advances to the next TEC map, returning false at EOF or on error
// (check Err after NextMap returns false).
func (dec *Decoder) NextMap() bool {
	if dec.err != nil {
		return false
	}

	for dec.readLine() {
		line := dec.line()
		if len(line) < 60 {
			continue
		}
		val := line[:60]
		key := strings.TrimSpace(line[60:])

		switch key {
		case "START OF TEC MAP":
			dec.m = dec.newMap()
			dec.dtype = 1
		case "START OF RMS MAP":
			// RMS maps form their own pass over the same epochs seen in the
			// TEC maps above; dec.m is resolved once its epoch is known.
			dec.m = nil
			dec.dtype = 2
		case "END OF TEC MAP":
			dec.dtype = 0
			if dec.m != nil {
				return true
			}
		case "END OF RMS MAP":
			dec.dtype = 0
			dec.m = nil
		case "EPOCH OF CURRENT MAP":
			t, e := parseEpoch(val)
			if e != nil {
				dec.setErr(fmt.Errorf("ionex: parse map epoch: %v", e))
				return false
			}
			switch dec.dtype {
			case 1:
				dec.m.Epoch = t
				dec.byEpoch[t] = dec.m
			case 2:
				dec.m = dec.byEpoch[t] // nil if no matching TEC map was seen; rows are then skipped
			}
		case "LAT/LON1/LON2/DLON/H":
			if dec.m == nil {
				continue
			}
			if err := dec.readLatRow(val); err != nil {
				dec.setErr(err)
				return false
			}
		}
	}

	if err := dec.sc.Err(); err != nil {
		dec.setErr(err)
	}
	return false
}

// Map returns the map most recently completed by NextMap.
func (dec *Decoder) Map() *TecMap {
	return dec.m
}

func (dec *Decoder) newMap() *TecMap {
	h := dec.Header
	return &TecMap{
		lat: axis{h.Lat1, h.Lat2, h.DLat},
		lon: axis{h.Lon1, h.Lon2, h.DLon},
		hgt: axis{h.Hgt1, h.Hgt2, h.DHgt},
	}
}

// readLatRow reads one LAT/LON1/LON2/DLON/H record and the wrapped data
// values that follow it, 16 five-column values per line.
func (dec *Decoder) readLatRow(val string) error {
	lat, err := strconv.ParseFloat(strings.TrimSpace(val[2:8]), 64)
	if err != nil {
		return fmt.Errorf("ionex: parse lat: %v", err)
	}
	lon1, err := strconv.ParseFloat(strings.TrimSpace(val[8:14]), 64)
	if err != nil {
		return fmt.Errorf("ionex: parse lon1: %v", err)
	}
	dlon, err := strconv.ParseFloat(strings.TrimSpace(val[20:26]), 64)
	if err != nil {
		return fmt.Errorf("ionex: parse dlon: %v", err)
	}
	hgt, err := strconv.ParseFloat(strings.TrimSpace(val[26:32]), 64)
	if err != nil {
		return fmt.Errorf("ionex: parse hgt: %v", err)
	}

	i := dec.m.lat.index(lat)
	k := dec.m.hgt.index(hgt)

	nLon := dec.m.lon.n()
	nLat, _, nHgt := dec.m.dims()
	size := nLat * nLon * nHgt
	if dec.dtype == 1 && len(dec.m.Values) == 0 {
		dec.m.Values = make([]float64, size)
	}
	if dec.dtype == 2 && len(dec.m.RMS) == 0 {
		dec.m.RMS = make([]float64, size)
	}

	exp := dec.Header.Exponent
	scale := pow10(exp)

	remaining := nLon
	col := 0
	for remaining > 0 {
		if col == 0 {
			if !dec.readLine() {
				return fmt.Errorf("ionex: unexpected EOF reading TEC row")
			}
		}
		line := dec.line()
		for ; col < 16 && remaining > 0; col++ {
			start := col * 5
			if start+5 > len(line) {
				break
			}
			field := line[start : start+5]
			v, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				return fmt.Errorf("ionex: parse value %q: %v", field, err)
			}
			lon := lon1 + dlon*float64(nLon-remaining)
			j := dec.m.lon.index(lon)
			idx := dec.m.flatIndex(i, j, k)
			if idx >= 0 && float64(v) != 9999 {
				if dec.dtype == 2 {
					dec.m.RMS[idx] = float64(v) * scale
				} else {
					dec.m.Values[idx] = float64(v) * scale
				}
			}
			remaining--
		}
		col = 0
	}
	return nil
}

func pow10(exp int) float64 {
	v := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			v *= 10
		}
		return v
	}
	for i := 0; i < -exp; i++ {
		v /= 10
	}
	return v
}
