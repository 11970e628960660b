package gnss

import "time"

// Timescale identifies the time reference an Epoch is expressed in.
type Timescale int

// Supported timescales.
const (
	GPST Timescale = iota + 1
	GST             // Galileo System Time
	BDT             // BeiDou Time
	GLONASST
	QZSST
	IRNSST
	UTC
	TAI
)

func (ts Timescale) String() string {
	return [...]string{"", "GPST", "GST", "BDT", "GLONASST", "QZSST", "IRNSST", "UTC", "TAI"}[ts]
}

// leapSecondsTAIminusUTC is the TAI-UTC offset in effect at the time this
// table was last updated (2017-01-01 leap second, 37s). The engine does not
// ship a historical leap-second table: every conversion uses this value,
// whatever the epoch.
const leapSecondsTAIminusUTC = 37 * time.Second

// gpstEpoch is the origin of GPS Time: 1980-01-06 00:00:00 UTC.
var gpstEpoch = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

// galEpoch (Galileo System Time) shares the GPST origin.
var galEpoch = gpstEpoch

// bdtEpoch is the origin of BeiDou Time: 2006-01-01 00:00:00 UTC.
var bdtEpoch = time.Date(2006, 1, 1, 0, 0, 0, 0, time.UTC)

// glonasstUTCOffset: GLONASST is UTC+3h, so GLONASST has no fixed origin
// distinct from UTC; conversions handle it as a fixed offset from UTC.
const glonasstUTCOffset = 3 * time.Hour

// Epoch is a point in time on a named timescale, represented internally as a
// time.Time (nanosecond resolution) whose clock reading is the time on that
// scale. Equality is exact; ordering is total. Epoch never implicitly
// converts between timescales.
type Epoch struct {
	scale Timescale
	t     time.Time // the instant, read as a clock time on scale
}

// NewEpoch returns an Epoch on the given timescale at instant t (t is
// interpreted as already being expressed in that scale; no conversion is
// performed).
func NewEpoch(scale Timescale, t time.Time) Epoch {
	return Epoch{scale: scale, t: t}
}

// Scale returns the Epoch's timescale.
func (e Epoch) Scale() Timescale { return e.scale }

// Time returns the underlying instant, still expressed on e.Scale().
func (e Epoch) Time() time.Time { return e.t }

// Before reports whether e occurs strictly before o. Both must share a scale;
// mixed-scale comparisons always report false to avoid silently comparing
// unlike quantities — convert with In first.
func (e Epoch) Before(o Epoch) bool {
	if e.scale != o.scale {
		return false
	}
	return e.t.Before(o.t)
}

// Equal reports exact equality: same scale, same instant. No floating-point
// tolerance is applied.
func (e Epoch) Equal(o Epoch) bool {
	return e.scale == o.scale && e.t.Equal(o.t)
}

// Sub returns e-o as a Duration; panics if the scales differ.
func (e Epoch) Sub(o Epoch) time.Duration {
	if e.scale != o.scale {
		panic("gnss: Sub of epochs on different timescales")
	}
	return e.t.Sub(o.t)
}

// Add returns the epoch advanced by d, preserving the scale.
func (e Epoch) Add(d time.Duration) Epoch {
	return Epoch{scale: e.scale, t: e.t.Add(d)}
}

// In converts the epoch to the target timescale. Conversion is a pure
// function of the two scales' fixed relationships (UTC offsets, leap
// seconds); no implicit conversion ever happens elsewhere in the engine.
func (e Epoch) In(target Timescale) Epoch {
	if e.scale == target {
		return e
	}

	utc := e.toUTC()
	return fromUTC(target, utc)
}

// toUTC returns the instant in (true) UTC civil time.
func (e Epoch) toUTC() time.Time {
	switch e.scale {
	case UTC:
		return e.t
	case TAI:
		return e.t.Add(-leapSecondsTAIminusUTC)
	case GPST, GST, QZSST:
		// QZSST is treated as identical to GPST; see open question in spec.
		return e.t.Add(-leapSecondsSinceGPSEpoch(e.t))
	case BDT:
		return e.t.Add(-leapSecondsSinceBDSEpoch(e.t))
	case GLONASST:
		return e.t.Add(-glonasstUTCOffset)
	case IRNSST:
		return e.t.Add(-leapSecondsSinceGPSEpoch(e.t))
	}
	return e.t
}

func fromUTC(target Timescale, utc time.Time) Epoch {
	switch target {
	case UTC:
		return Epoch{scale: UTC, t: utc}
	case TAI:
		return Epoch{scale: TAI, t: utc.Add(leapSecondsTAIminusUTC)}
	case GPST, GST, QZSST, IRNSST:
		return Epoch{scale: target, t: utc.Add(leapSecondsSinceGPSEpoch(utc))}
	case BDT:
		return Epoch{scale: BDT, t: utc.Add(leapSecondsSinceBDSEpoch(utc))}
	case GLONASST:
		return Epoch{scale: GLONASST, t: utc.Add(glonasstUTCOffset)}
	}
	return Epoch{scale: target, t: utc}
}

// leapSecondsSinceGPSEpoch returns the constant GPST-UTC leap second offset.
// GPST does not itself accumulate leap seconds after 1980; the engine uses
// the fixed modern value. A table-driven historical lookup is future work.
func leapSecondsSinceGPSEpoch(time.Time) time.Duration {
	return leapSecondsTAIminusUTC - 19*time.Second // TAI-GPST is a fixed 19s
}

func leapSecondsSinceBDSEpoch(time.Time) time.Duration {
	return leapSecondsSinceGPSEpoch(time.Time{}) - 14*time.Second // BDT lags GPST by 14s
}
