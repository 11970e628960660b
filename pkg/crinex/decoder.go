package crinex

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Decoder reconstructs plain RINEX text from a CRINEX byte stream. It
// implements io.Reader so it can sit underneath a bufio.Scanner exactly like
// any other line source in pkg/stream.
//
// The framing (magic header, per-epoch reset markers, satellite line
// layout) is grounded on github.com/satoshi-pes/crinex's Scanner and Reader
// (scanner.go, reader.go); the differencing itself follows spec §4.5.
type Decoder struct {
	sc  *bufio.Scanner
	out bytes.Buffer
	err error

	version    string
	headerDone bool

	epochRef   string
	clock      *scaledDiffer
	satDiffers map[string]*scaledDiffer // keyed by "<sv><obsIndex>"
	flagsRef   map[string]string        // keyed by sv, raw LLI/SSI tail
	order      int
}

// NewDecoder wraps r, which must begin with the two-line CRINEX magic
// header ("CRINEX VERS / TYPE", "CRINEX PROG / DATE"), and returns a Decoder
// ready to stream fully decompressed RINEX text.
func NewDecoder(r io.Reader) (*Decoder, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: empty stream", ErrBadMagic)
	}
	first := sc.Text()
	if len(first) < 20 || !strings.Contains(first, "CRINEX VERS") {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, first)
	}
	version := strings.TrimSpace(first[:20])
	switch version {
	case "1.0", "3.0", "3.1":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	if !sc.Scan() {
		return nil, fmt.Errorf("%w: missing CRINEX PROG / DATE line", ErrInvalidHeader)
	}

	d := &Decoder{
		sc:         sc,
		version:    version,
		satDiffers: make(map[string]*scaledDiffer),
		flagsRef:   make(map[string]string),
		order:      DefaultOrder,
		clock:      newScaledDiffer(DefaultOrder),
	}
	return d, nil
}

// Read implements io.Reader, decoding additional input as needed to satisfy
// the request.
func (d *Decoder) Read(p []byte) (int, error) {
	for d.out.Len() == 0 {
		if d.err != nil {
			return 0, d.err
		}
		if !d.advance() {
			if d.err == nil {
				d.err = io.EOF
			}
			return 0, d.err
		}
	}
	return d.out.Read(p)
}

// advance decodes one more logical record (a passthrough header line, or a
// decompressed epoch block) and appends it to the output buffer. It returns
// false when the underlying stream is exhausted or on error.
func (d *Decoder) advance() bool {
	if !d.headerDone {
		if !d.sc.Scan() {
			d.setScanErr()
			return false
		}
		line := d.sc.Text()
		d.out.WriteString(line)
		d.out.WriteByte('\n')
		if len(line) >= 60 && strings.Contains(line[60:], "END OF HEADER") {
			d.headerDone = true
		}
		return true
	}

	if !d.sc.Scan() {
		d.setScanErr()
		return false
	}
	epochLine := d.sc.Text()
	if epochLine == "" {
		return true
	}

	reset := epochLine[0] == '&'
	body := epochLine
	if reset {
		body = epochLine[1:]
		d.epochRef = ""
		for k := range d.satDiffers {
			delete(d.satDiffers, k)
		}
		for k := range d.flagsRef {
			delete(d.flagsRef, k)
		}
		d.clock = newScaledDiffer(d.order)
	}

	decodedEpoch := undiffText(body, d.epochRef)
	d.epochRef = decodedEpoch
	d.out.WriteString(decodedEpoch)
	d.out.WriteByte('\n')

	numSV := countEpochSatellites(decodedEpoch)
	for i := 0; i < numSV; i++ {
		if !d.sc.Scan() {
			d.setScanErr()
			return false
		}
		satLine := d.sc.Text()
		sv := satID(decodedEpoch, i)
		decoded := d.decodeSatLine(sv, satLine)
		d.out.WriteString(decoded)
		d.out.WriteByte('\n')
	}
	return true
}

// decodeSatLine reconstructs one satellite's observation line: space
// separated integer residuals, each undone through that SV's per-field
// differ and written as a 14.3f value followed by two blank columns. LLI/SSI
// flags are not decoded; the flag columns are always blank.
func (d *Decoder) decodeSatLine(sv, line string) string {
	fields := strings.Fields(line)
	var b strings.Builder
	for i, f := range fields {
		if f == "" {
			continue
		}
		residual, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			b.WriteString(f)
			b.WriteByte(' ')
			continue
		}
		sd := d.fieldDiffer(sv, i)
		value := sd.decode(residual)
		fmt.Fprintf(&b, "%14.3f  ", value)
	}
	return b.String()
}

func (d *Decoder) fieldDiffer(sv string, idx int) *scaledDiffer {
	key := fmt.Sprintf("%s%d", sv, idx)
	sd, ok := d.satDiffers[key]
	if !ok {
		sd = newScaledDiffer(d.order)
		d.satDiffers[key] = sd
	}
	return sd
}

func (d *Decoder) setScanErr() {
	if err := d.sc.Err(); err != nil {
		d.err = err
		return
	}
	d.err = io.EOF
}

// countEpochSatellites extracts the satellite count from a decoded RINEX
// epoch line: "> yyyy mm dd hh mm ss.sssssss flag numsat [svlist...]", flag
// at columns 30-32, numsat at columns 33-35 (0-indexed 29:32, 32:35).
func countEpochSatellites(epochLine string) int {
	if len(epochLine) < 35 {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(epochLine[32:35]))
	if err != nil {
		return 0
	}
	return n
}

// satID returns a short key identifying the i-th satellite in the epoch
// line's inline satellite list (columns 36 onward, 3 chars each), used only
// to key per-satellite differencer state.
func satID(epochLine string, i int) string {
	base := 35 + i*3
	if base+3 > len(epochLine) {
		return fmt.Sprintf("SV%d", i)
	}
	return epochLine[base : base+3]
}
