// Package stream provides the byte-stream input pipeline that sits in front
// of every RINEX decoder: it presents a uniform sequence of logical text
// lines regardless of whether the underlying stream is plain RINEX,
// gzip-wrapped RINEX, plain CRINEX, or gzip-wrapped CRINEX.
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mholt/archiver/v3"

	"github.com/de-bkg/gognss/pkg/crinex"
)

// Sentinel errors surfaced by the pipeline. Errors halt the iterator;
// partial records already built by the caller remain valid.
var (
	ErrIoFailure     = errors.New("stream: io failure")
	ErrInvalidGzip   = errors.New("stream: invalid gzip stream")
	ErrInvalidCrinex = errors.New("stream: invalid crinex stream")
	ErrLineTooLong   = errors.New("stream: line too long")
)

// MaxLineLength caps a single logical line at 16 KiB, per spec §4.1.
const MaxLineLength = 16 * 1024

// gzipMagic is the two leading bytes of any gzip stream.
var gzipMagic = []byte{0x1F, 0x8B}

// Reader presents a uniform sequence of logical text lines over a RINEX,
// CRINEX, or gzip-wrapped byte stream. It cannot seek; it is pull-driven and
// strictly sequential.
type Reader struct {
	sc         *bufio.Scanner
	crx        *crinex.Decoder // non-nil if the source was detected as CRINEX
	isCrinex   bool
	underlying io.Reader
	closer     io.Closer
	err        error
}

// Open opens source (a file path or an already-open byte stream) and returns
// a Reader. A ".gz" path suffix, or a gzip magic number sniffed from the
// first bytes, selects gzip decompression. CRINEX presence is then detected
// from the first header line, "CRINEX VERS / TYPE".
func Open(source any) (*Reader, error) {
	switch v := source.(type) {
	case string:
		f, err := os.Open(v)
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrIoFailure, v, err)
		}
		r, err := newReader(f, strings.HasSuffix(v, ".gz"))
		if err != nil {
			f.Close()
			return nil, err
		}
		r.closer = f
		return r, nil
	case io.Reader:
		return newReader(v, false)
	default:
		return nil, fmt.Errorf("stream: unsupported source type %T", source)
	}
}

// newReader builds the pipeline: optional gzip unwrap, then CRINEX sniff.
func newReader(r io.Reader, forceGzip bool) (*Reader, error) {
	br := bufio.NewReaderSize(r, 64*1024)

	isGzip := forceGzip
	if !isGzip {
		peek, err := br.Peek(2)
		if err == nil && bytes.Equal(peek, gzipMagic) {
			isGzip = true
		}
	}

	var plain io.Reader = br
	if isGzip {
		var buf bytes.Buffer
		if err := archiver.DefaultGzip.Decompress(br, &buf); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGzip, err)
		}
		plain = &buf
	}

	peekable := bufio.NewReaderSize(plain, 80)
	firstLine, _ := peekable.Peek(80)
	isCrinex := looksLikeCrinex(firstLine)

	rd := &Reader{underlying: peekable}
	if isCrinex {
		dec, err := crinex.NewDecoder(peekable)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCrinex, err)
		}
		rd.crx = dec
		rd.isCrinex = true
		rd.sc = bufio.NewScanner(dec)
	} else {
		rd.sc = bufio.NewScanner(peekable)
	}
	rd.sc.Buffer(make([]byte, 0, 4096), MaxLineLength)

	return rd, nil
}

// looksLikeCrinex reports whether the peeked header bytes carry the
// "CRINEX VERS   / TYPE" label in columns 61-80, per spec §4.1.
func looksLikeCrinex(firstLine []byte) bool {
	return bytes.Contains(firstLine, []byte("CRINEX VERS"))
}

// IsCrinex reports whether this stream was detected and is being decoded as
// Hatanaka-compressed CRINEX.
func (r *Reader) IsCrinex() bool { return r.isCrinex }

// NextLine yields one logical line stripped of its line terminator, or false
// at end of stream or on error. After CRINEX decoding, a single input epoch
// may expand into several output lines; NextLine hides this.
func (r *Reader) NextLine() (string, bool) {
	if r.err != nil {
		return "", false
	}
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				r.err = ErrLineTooLong
			} else {
				r.err = fmt.Errorf("%w: %v", ErrIoFailure, err)
			}
		}
		return "", false
	}
	return r.sc.Text(), true
}

// Err returns the first non-EOF error encountered by the pipeline.
func (r *Reader) Err() error { return r.err }

// Close releases any file opened by Open.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
