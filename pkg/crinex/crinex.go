// Package crinex implements the Hatanaka (CRINEX) codec: compression and
// decompression of RINEX observation records using an m-th order numeric
// differencing predictor for observation values (kept to 3 decimals) and a
// character-differencing predictor for epoch lines. LLI/SSI flags are not
// carried: decoded satellite lines have blank flag columns.
//
// The codec is grounded on github.com/satoshi-pes/crinex (scanner.go,
// reader.go retrieved separately), adapted into this module's decoder idiom
// (bufio.Scanner-driven, Err()/setErr as used throughout pkg/rinex); the
// differencing mathematics follow the m-th order forward-difference
// predictor described in the Hatanaka compression specification.
package crinex

import "errors"

// Sentinel errors, see spec §4.5 Failures.
var (
	ErrOrderTooHigh       = errors.New("crinex: differencing order too high")
	ErrResidualOverflow   = errors.New("crinex: residual overflow, stream desynchronized")
	ErrUnexpectedReset    = errors.New("crinex: unexpected reset marker")
	ErrTruncatedEpoch     = errors.New("crinex: truncated epoch")
	ErrBadMagic           = errors.New("crinex: bad magic, not a CRINEX stream")
	ErrUnsupportedVersion = errors.New("crinex: unsupported CRINEX version")
	ErrInvalidHeader      = errors.New("crinex: invalid header")
	ErrInvalidEpoch       = errors.New("crinex: invalid epoch record")
	ErrIOWrite            = errors.New("crinex: write failure")
)

// MaxOrder is the maximum differencing order this engine supports. The
// publication recommends 4; the tool accepts up to 6 (spec §4.5).
const MaxOrder = 6

// DefaultOrder is the order used when a stream's order is not otherwise
// specified.
const DefaultOrder = 4

// valueScale is the fixed-point scale applied to floating point observation
// values before integer differencing (spec §4.5(a)): 3 decimal digits,
// i.e. millimeters/milli-cycles.
const valueScale = 1000.0
