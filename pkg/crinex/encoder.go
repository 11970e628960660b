package crinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Encoder compresses plain RINEX observation text into CRINEX, mirroring
// Decoder field for field. It is line-driven: callers feed it the header
// lines via WriteHeaderLine and then each epoch via WriteEpoch, in the same
// order a plain RINEX file would present them.
type Encoder struct {
	w   *bufio.Writer
	out io.Writer

	headerDone bool
	epochRef   string
	satDiffers map[string]*scaledDiffer
	order      int
	epochCount int
	resetEvery int // full differencer reset interval, 0 disables periodic reset
}

// NewEncoder returns an Encoder writing CRINEX framing and compressed
// records to w. progName/progDate populate the "CRINEX PROG / DATE" header
// line; version selects the CRINEX magic ("3.0" is used for RINEX 3/4
// input).
func NewEncoder(w io.Writer, progName string, date time.Time, version string) (*Encoder, error) {
	switch version {
	case "1.0", "3.0", "3.1":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, version)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%-20s%40s%s\n", version, "", "CRINEX VERS   / TYPE")
	fmt.Fprintf(bw, "%-20s%-20s%-20s%s\n", progName, date.Format("02-Jan-06 15:04"), "",
		"CRINEX PROG / DATE")

	return &Encoder{
		w:          bw,
		out:        w,
		satDiffers: make(map[string]*scaledDiffer),
		order:      DefaultOrder,
		resetEvery: 0,
	}, nil
}

// WriteHeaderLine passes a RINEX header line through uncompressed, as
// CRINEX never compresses the header block (spec §4.5).
func (e *Encoder) WriteHeaderLine(line string) error {
	if _, err := fmt.Fprintln(e.w, line); err != nil {
		return fmt.Errorf("%w: %v", ErrIOWrite, err)
	}
	if len(line) >= 60 && strings.Contains(line[60:], "END OF HEADER") {
		e.headerDone = true
	}
	return nil
}

// WriteEpoch compresses one full epoch: its RINEX epoch line plus the
// satellite observation lines that follow it. forceReset requests a full
// differencer reset, marked with a leading '&' on the emitted epoch line
// (used after a data gap or at the start of a file, spec §4.5(c)).
func (e *Encoder) WriteEpoch(epochLine string, satLines []string, forceReset bool) error {
	if forceReset || e.epochCount == 0 {
		e.epochRef = ""
		for k := range e.satDiffers {
			delete(e.satDiffers, k)
		}
	}

	mask := diffText(epochLine, e.epochRef)
	e.epochRef = epochLine
	prefix := ""
	if forceReset || e.epochCount == 0 {
		prefix = "&"
	}
	if _, err := fmt.Fprintln(e.w, prefix+mask); err != nil {
		return fmt.Errorf("%w: %v", ErrIOWrite, err)
	}

	for i, line := range satLines {
		sv := satID(epochLine, i)
		if err := e.writeSatLine(sv, line); err != nil {
			return err
		}
	}
	e.epochCount++
	return nil
}

func (e *Encoder) writeSatLine(sv, line string) error {
	var b strings.Builder
	for i := 0; i+14 <= len(line); i += 16 {
		end := i + 14
		if end > len(line) {
			end = len(line)
		}
		field := strings.TrimSpace(line[i:end])
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			continue
		}
		sd := e.fieldDiffer(sv, i/16)
		fmt.Fprintf(&b, "%d ", sd.encode(v))
	}
	_, err := fmt.Fprintln(e.w, strings.TrimRight(b.String(), " "))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIOWrite, err)
	}
	return nil
}

func (e *Encoder) fieldDiffer(sv string, idx int) *scaledDiffer {
	key := fmt.Sprintf("%s%d", sv, idx)
	sd, ok := e.satDiffers[key]
	if !ok {
		sd = newScaledDiffer(e.order)
		e.satDiffers[key] = sd
	}
	return sd
}

// Flush flushes any buffered output.
func (e *Encoder) Flush() error {
	return e.w.Flush()
}
