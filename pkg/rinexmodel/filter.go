package rinexmodel

import (
	"fmt"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/de-bkg/gognss/pkg/rinex"
)

// Kind identifies the operation a Filter performs.
type Kind int

// Filter kinds for the mask, decim (modulo and duration), mov, hatch and
// scaling forms. There is no interpolation kind.
const (
	KindMask Kind = iota
	KindDecimateModulo
	KindDecimateDuration
	KindMovingAverage
	KindHatch
	KindScaling
)

// Op is a mask comparison operator.
type Op int

// Mask operators; Eq is the default when unspecified.
const (
	Eq Op = iota
	Neq
	Lt
	Lte
	Gt
	Gte
)

// Filter is one stage of a preprocessing pipeline. Only the fields relevant
// to Kind are read.
type Filter struct {
	Kind Kind

	// Mask fields.
	Op       Op
	Systems  []gnss.System
	SVs      []rinex.PRN
	Observables []rinex.ObsCode
	Before, After time.Time

	// Decimation fields.
	Modulo   int
	Interval time.Duration

	// Smoothing/scaling fields.
	Target   rinex.ObsCode // observable the filter applies to
	Window   time.Duration // KindMovingAverage
	HatchCap int           // KindHatch, 0 means the default cap of 100
	A, B     float64       // KindScaling: out = A*in + B
}

// Pipeline is an ordered list of filters applied left to right.
type Pipeline []Filter

// Apply runs the pipeline over series, returning a new series; series is
// never mutated.
func (p Pipeline) Apply(series *ObsSeries) (*ObsSeries, error) {
	epochs := cloneSeries(series)
	for _, f := range p {
		var err error
		epochs, err = f.apply(epochs)
		if err != nil {
			return nil, err
		}
	}
	return NewObsSeries(epochs), nil
}

func (f Filter) apply(epochs []*rinex.Epoch) ([]*rinex.Epoch, error) {
	switch f.Kind {
	case KindMask:
		return f.applyMask(epochs), nil
	case KindDecimateModulo:
		return f.applyDecimateModulo(epochs), nil
	case KindDecimateDuration:
		return f.applyDecimateDuration(epochs), nil
	case KindMovingAverage:
		return applyMovingAverage(epochs, f.Target, f.Window), nil
	case KindHatch:
		return applyHatch(epochs, f.Target, f.HatchCap), nil
	case KindScaling:
		return f.applyScaling(epochs), nil
	default:
		return nil, fmt.Errorf("rinexmodel: unknown filter kind %d", f.Kind)
	}
}

// applyMask keeps only epochs/SVs/observables satisfying every mask subject
// set on f; an unset subject (nil slice, zero time) imposes no constraint.
func (f Filter) applyMask(epochs []*rinex.Epoch) []*rinex.Epoch {
	out := make([]*rinex.Epoch, 0, len(epochs))
	for _, epo := range epochs {
		if !f.Before.IsZero() && !timeCompare(f.Op, epo.Time, f.Before) {
			continue
		}
		if !f.After.IsZero() && !timeCompare(f.Op, epo.Time, f.After) {
			continue
		}

		filtered := epo
		if len(f.Systems) > 0 || len(f.SVs) > 0 || len(f.Observables) > 0 {
			filtered = cloneEpoch(epo)
			filtered.ObsList = filtered.ObsList[:0]
			for _, so := range epo.ObsList {
				if len(f.Systems) > 0 && !containsSystem(f.Systems, so.Prn.Sys) {
					continue
				}
				if len(f.SVs) > 0 && !containsPRN(f.SVs, so.Prn) {
					continue
				}
				if len(f.Observables) > 0 {
					masked := make(map[rinex.ObsCode]rinex.Obs, len(f.Observables))
					for _, code := range f.Observables {
						if obs, ok := so.Obss[code]; ok {
							masked[code] = obs
						}
					}
					so.Obss = masked
				}
				filtered.ObsList = append(filtered.ObsList, so)
			}
			filtered.NumSat = uint8(len(filtered.ObsList))
		}
		out = append(out, filtered)
	}
	return out
}

func timeCompare(op Op, t, bound time.Time) bool {
	switch op {
	case Neq:
		return !t.Equal(bound)
	case Lt:
		return t.Before(bound)
	case Lte:
		return t.Before(bound) || t.Equal(bound)
	case Gt:
		return t.After(bound)
	case Gte:
		return t.After(bound) || t.Equal(bound)
	default:
		return t.Equal(bound)
	}
}

func containsSystem(syss []gnss.System, sys gnss.System) bool {
	for _, s := range syss {
		if s == sys {
			return true
		}
	}
	return false
}

func containsPRN(prns []rinex.PRN, prn rinex.PRN) bool {
	for _, p := range prns {
		if p == prn {
			return true
		}
	}
	return false
}

// applyDecimateModulo keeps every Nth epoch by position.
func (f Filter) applyDecimateModulo(epochs []*rinex.Epoch) []*rinex.Epoch {
	if f.Modulo <= 1 {
		return epochs
	}
	out := make([]*rinex.Epoch, 0, len(epochs)/f.Modulo+1)
	for i, epo := range epochs {
		if i%f.Modulo == 0 {
			out = append(out, epo)
		}
	}
	return out
}

// applyDecimateDuration keeps one epoch per Interval, advancing from the
// first kept epoch's time.
func (f Filter) applyDecimateDuration(epochs []*rinex.Epoch) []*rinex.Epoch {
	if f.Interval <= 0 || len(epochs) == 0 {
		return epochs
	}
	out := make([]*rinex.Epoch, 0, len(epochs))
	next := epochs[0].Time
	for _, epo := range epochs {
		if epo.Time.Before(next) {
			continue
		}
		out = append(out, epo)
		for !next.After(epo.Time) {
			next = next.Add(f.Interval)
		}
	}
	return out
}

// applyScaling applies out = A*in + B to the target observable's value in
// every epoch/SV that carries it.
func (f Filter) applyScaling(epochs []*rinex.Epoch) []*rinex.Epoch {
	for _, epo := range epochs {
		for i := range epo.ObsList {
			obs, ok := epo.ObsList[i].Obss[f.Target]
			if !ok {
				continue
			}
			obs.Val = f.A*obs.Val + f.B
			epo.ObsList[i].Obss[f.Target] = obs
		}
	}
	return epochs
}
