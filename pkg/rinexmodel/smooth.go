package rinexmodel

import (
	"time"

	"github.com/de-bkg/gognss/pkg/rinex"
)

const defaultHatchCap = 100

// hatchState tracks one SV/code's code-carrier smoothing recursion across
// epochs.
type hatchState struct {
	smoothed  float64
	prevPhase float64
	n         int // current ramp count, reset to 0 on a loss-of-lock
	have      bool
}

// applyHatch smooths the pseudo-range observable target using the phase
// observable on the same carrier (its code identifies the same frequency
// slot, e.g. C1C smoothed against L1C), per:
//
//	P̃(tn) = (1/N)*P(tn) + ((N-1)/N)*(P̃(tn-1) + (Φ(tn) - Φ(tn-1)))
//
// N ramps from 1 up to cap (default 100) and resets whenever LLI flags a
// loss of lock on the phase observable.
func applyHatch(epochs []*rinex.Epoch, target rinex.ObsCode, cap int) []*rinex.Epoch {
	if cap <= 0 {
		cap = defaultHatchCap
	}
	phaseCode := phaseCodeFor(target)
	states := map[rinex.PRN]*hatchState{}

	for _, epo := range epochs {
		for i := range epo.ObsList {
			so := &epo.ObsList[i]
			code, ok := so.Obss[target]
			if !ok {
				continue
			}
			phase, ok := so.Obss[phaseCode]
			if !ok {
				continue
			}

			st, exists := states[so.Prn]
			if !exists {
				st = &hatchState{}
				states[so.Prn] = st
			}

			lossOfLock := phase.LLI&1 != 0
			if lossOfLock || !st.have {
				st.smoothed = code.Val
				st.prevPhase = phase.Val
				st.n = 1
				st.have = true
			} else {
				if st.n < cap {
					st.n++
				}
				n := float64(st.n)
				st.smoothed = code.Val/n + ((n-1)/n)*(st.smoothed+(phase.Val-st.prevPhase))
				st.prevPhase = phase.Val
			}

			code.Val = st.smoothed
			so.Obss[target] = code
		}
	}
	return epochs
}

// phaseCodeFor returns the carrier phase observation code sharing target's
// frequency slot: the same RINEX 3 band/attribute pair with observation
// type 'L' instead of 'C'.
func phaseCodeFor(target rinex.ObsCode) rinex.ObsCode {
	s := string(target)
	if len(s) == 0 {
		return target
	}
	return rinex.ObsCode("L" + s[1:])
}

// applyMovingAverage replaces target's value at each epoch/SV with the mean
// of its values over the trailing window, inclusive of the current epoch.
func applyMovingAverage(epochs []*rinex.Epoch, target rinex.ObsCode, window time.Duration) []*rinex.Epoch {
	if window <= 0 {
		return epochs
	}

	type sample struct {
		t   time.Time
		val float64
	}
	history := map[rinex.PRN][]sample{}

	for _, epo := range epochs {
		for i := range epo.ObsList {
			so := &epo.ObsList[i]
			obs, ok := so.Obss[target]
			if !ok {
				continue
			}

			hist := append(history[so.Prn], sample{epo.Time, obs.Val})
			cutoff := epo.Time.Add(-window)
			start := 0
			for start < len(hist) && hist[start].t.Before(cutoff) {
				start++
			}
			hist = hist[start:]
			history[so.Prn] = hist

			var sum float64
			for _, s := range hist {
				sum += s.val
			}
			obs.Val = sum / float64(len(hist))
			so.Obss[target] = obs
		}
	}
	return epochs
}
