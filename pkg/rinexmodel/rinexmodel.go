// Package rinexmodel holds the in-memory, epoch-indexed record model used to
// preprocess and recombine RINEX observation data once it has been decoded:
// masking, decimation, smoothing, merging, splitting and diffing independent
// of any particular file encoding.
package rinexmodel

import (
	"fmt"
	"sort"
	"time"

	"github.com/de-bkg/gognss/pkg/rinex"
)

// ObsSeries is an epoch-ordered, deduplicated collection of observation
// epochs. Epochs are always kept sorted ascending by time; lookup by epoch
// is a binary search over the sorted slice.
type ObsSeries struct {
	epochs []*rinex.Epoch
}

// NewObsSeries builds a series from epochs, sorting and deduplicating by
// time (the last epoch seen for a given time wins).
func NewObsSeries(epochs []*rinex.Epoch) *ObsSeries {
	byTime := make(map[time.Time]*rinex.Epoch, len(epochs))
	for _, epo := range epochs {
		byTime[epo.Time] = epo
	}

	out := make([]*rinex.Epoch, 0, len(byTime))
	for _, epo := range byTime {
		out = append(out, epo)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })

	return &ObsSeries{epochs: out}
}

// CollectObsSeries reads every remaining epoch off dec into a series.
func CollectObsSeries(dec *rinex.ObsDecoder) (*ObsSeries, error) {
	var epochs []*rinex.Epoch
	for dec.NextEpoch() {
		epochs = append(epochs, dec.Epoch())
	}
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("rinexmodel: read epochs: %w", err)
	}
	return NewObsSeries(epochs), nil
}

// Len returns the number of epochs in the series.
func (s *ObsSeries) Len() int {
	return len(s.epochs)
}

// Epochs returns the ordered, ascending-time epoch slice. Callers must not
// mutate the returned epochs or slice.
func (s *ObsSeries) Epochs() []*rinex.Epoch {
	return s.epochs
}

// At returns the i-th epoch in ascending time order.
func (s *ObsSeries) At(i int) *rinex.Epoch {
	return s.epochs[i]
}

// Lookup finds the epoch at exactly time t via binary search.
func (s *ObsSeries) Lookup(t time.Time) (*rinex.Epoch, bool) {
	i := sort.Search(len(s.epochs), func(i int) bool { return !s.epochs[i].Time.Before(t) })
	if i < len(s.epochs) && s.epochs[i].Time.Equal(t) {
		return s.epochs[i], true
	}
	return nil, false
}

// TimeRange returns the first and last epoch times. Ok is false for an
// empty series.
func (s *ObsSeries) TimeRange() (first, last time.Time, ok bool) {
	if len(s.epochs) == 0 {
		return
	}
	return s.epochs[0].Time, s.epochs[len(s.epochs)-1].Time, true
}

// Record couples a decoded observation header with its fully materialized
// epoch series, enabling the preprocessing and file operations that need
// the whole time series in memory at once (merge, split, time-bin, diff).
type Record struct {
	Header *rinex.ObsHeader
	Series *ObsSeries
}

// BuildRecord reads hdr's companion body from dec into a Record.
func BuildRecord(dec *rinex.ObsDecoder) (*Record, error) {
	series, err := CollectObsSeries(dec)
	if err != nil {
		return nil, err
	}
	hdr := dec.Header
	return &Record{Header: &hdr, Series: series}, nil
}

// cloneEpoch deep-copies an epoch so preprocessing never aliases the
// source's SatObs/Obs maps.
func cloneEpoch(epo *rinex.Epoch) *rinex.Epoch {
	out := &rinex.Epoch{Time: epo.Time, Flag: epo.Flag, NumSat: epo.NumSat,
		ObsList: make([]rinex.SatObs, len(epo.ObsList))}
	for i, so := range epo.ObsList {
		obss := make(map[rinex.ObsCode]rinex.Obs, len(so.Obss))
		for code, obs := range so.Obss {
			obss[code] = obs
		}
		out.ObsList[i] = rinex.SatObs{Prn: so.Prn, Obss: obss}
	}
	return out
}

func cloneSeries(s *ObsSeries) []*rinex.Epoch {
	out := make([]*rinex.Epoch, len(s.epochs))
	for i, epo := range s.epochs {
		out[i] = cloneEpoch(epo)
	}
	return out
}
