package rinexmodel

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/de-bkg/gognss/pkg/rinex"
)

// ErrIncompatible is returned by Merge when two records are not mergeable
// (different RINEX type or satellite system).
var ErrIncompatible = fmt.Errorf("rinexmodel: incompatible records")

// MergeRecord is the producer-metadata entry stamped into the merged
// header's comments, identifying one merge operation.
type MergeRecord struct {
	ID             uuid.UUID
	AddedEpochs    int
	SecondaryStart time.Time
	SecondaryEnd   time.Time
}

// String renders the merge record as a RINEX comment line.
func (m MergeRecord) String() string {
	return fmt.Sprintf("merged %s: +%d epochs [%s .. %s]", m.ID, m.AddedEpochs,
		m.SecondaryStart.Format(time.RFC3339), m.SecondaryEnd.Format(time.RFC3339))
}

// Merge unions a's and b's epochs; on a time collision between the two, the
// per-SV per-observable union favours a (a's value wins on a key clash).
// a's header is cloned as the result's header; any of b's comment lines not
// already present in a are appended, along with a record of the merge.
func Merge(a, b *Record) (*Record, error) {
	if a.Header.RINEXType != b.Header.RINEXType || a.Header.SatSystem != b.Header.SatSystem {
		return nil, ErrIncompatible
	}

	byTime := make(map[time.Time]*rinex.Epoch, a.Series.Len()+b.Series.Len())
	for _, epo := range b.Series.Epochs() {
		byTime[epo.Time] = cloneEpoch(epo)
	}
	for _, epo := range a.Series.Epochs() {
		if existing, ok := byTime[epo.Time]; ok {
			byTime[epo.Time] = mergeEpoch(epo, existing)
		} else {
			byTime[epo.Time] = cloneEpoch(epo)
		}
	}

	merged := make([]*rinex.Epoch, 0, len(byTime))
	for _, epo := range byTime {
		merged = append(merged, epo)
	}

	hdr := *a.Header
	record := MergeRecord{ID: uuid.New(), AddedEpochs: b.Series.Len()}
	if first, last, ok := b.Series.TimeRange(); ok {
		record.SecondaryStart, record.SecondaryEnd = first, last
	}
	hdr.Comments = append(append([]string{}, a.Header.Comments...), record.String())
	for _, c := range b.Header.Comments {
		if !containsString(hdr.Comments, c) {
			hdr.Comments = append(hdr.Comments, c)
		}
	}

	series := NewObsSeries(merged)
	if first, last, ok := series.TimeRange(); ok {
		hdr.TimeOfFirstObs = first
		hdr.TimeOfLastObs = last
	}

	return &Record{Header: &hdr, Series: series}, nil
}

// mergeEpoch unions primary and secondary's SatObs lists, with primary
// winning per-SV per-observable on a clash.
func mergeEpoch(primary, secondary *rinex.Epoch) *rinex.Epoch {
	out := cloneEpoch(secondary)
	bySV := make(map[rinex.PRN]int, len(out.ObsList))
	for i, so := range out.ObsList {
		bySV[so.Prn] = i
	}

	for _, so := range primary.ObsList {
		if i, ok := bySV[so.Prn]; ok {
			for code, obs := range so.Obss {
				out.ObsList[i].Obss[code] = obs
			}
		} else {
			clone := rinex.SatObs{Prn: so.Prn, Obss: make(map[rinex.ObsCode]rinex.Obs, len(so.Obss))}
			for code, obs := range so.Obss {
				clone.Obss[code] = obs
			}
			bySV[so.Prn] = len(out.ObsList)
			out.ObsList = append(out.ObsList, clone)
		}
	}
	out.NumSat = uint8(len(out.ObsList))
	return out
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// Split partitions r at t: r1 retains epochs <= t, r2 retains epochs > t.
// Both headers are clones of r's header with their time-of-first/last obs
// updated to the resulting epoch ranges.
func Split(r *Record, t time.Time) (r1, r2 *Record) {
	var e1, e2 []*rinex.Epoch
	for _, epo := range r.Series.Epochs() {
		if !epo.Time.After(t) {
			e1 = append(e1, cloneEpoch(epo))
		} else {
			e2 = append(e2, cloneEpoch(epo))
		}
	}

	h1, h2 := *r.Header, *r.Header
	s1, s2 := NewObsSeries(e1), NewObsSeries(e2)
	if first, last, ok := s1.TimeRange(); ok {
		h1.TimeOfFirstObs, h1.TimeOfLastObs = first, last
	}
	if first, last, ok := s2.TimeRange(); ok {
		h2.TimeOfFirstObs, h2.TimeOfLastObs = first, last
	}

	return &Record{Header: &h1, Series: s1}, &Record{Header: &h2, Series: s2}
}

// TimeBin partitions r's epochs into contiguous slices of duration d, each
// starting on the floor of the first epoch of that slice; empty slices are
// omitted.
func TimeBin(r *Record, d time.Duration) []*Record {
	epochs := r.Series.Epochs()
	if len(epochs) == 0 || d <= 0 {
		return nil
	}

	var bins []*Record
	binStart := epochs[0].Time.Truncate(d)
	var cur []*rinex.Epoch

	flush := func() {
		if len(cur) == 0 {
			return
		}
		hdr := *r.Header
		series := NewObsSeries(cur)
		if first, last, ok := series.TimeRange(); ok {
			hdr.TimeOfFirstObs, hdr.TimeOfLastObs = first, last
		}
		bins = append(bins, &Record{Header: &hdr, Series: series})
		cur = nil
	}

	for _, epo := range epochs {
		for epo.Time.Sub(binStart) >= d {
			flush()
			binStart = binStart.Add(d)
		}
		cur = append(cur, cloneEpoch(epo))
	}
	flush()

	return bins
}

// DiffEntry is one observable's difference between two records at one
// epoch/SV, present only where both a and b carry that (epoch, SV,
// observable) triple.
type DiffEntry struct {
	Time time.Time
	Prn  rinex.PRN
	Code rinex.ObsCode
	DVal float64 // a - b
}

// Diff compares two observation records and returns, for every (epoch, SV,
// observable) present in both, the difference a - b.
func Diff(a, b *Record) []DiffEntry {
	var out []DiffEntry
	for _, epoA := range a.Series.Epochs() {
		epoB, ok := b.Series.Lookup(epoA.Time)
		if !ok {
			continue
		}
		bBySV := make(map[rinex.PRN]rinex.SatObs, len(epoB.ObsList))
		for _, so := range epoB.ObsList {
			bBySV[so.Prn] = so
		}

		for _, soA := range epoA.ObsList {
			soB, ok := bBySV[soA.Prn]
			if !ok {
				continue
			}
			for code, obsA := range soA.Obss {
				obsB, ok := soB.Obss[code]
				if !ok {
					continue
				}
				out = append(out, DiffEntry{Time: epoA.Time, Prn: soA.Prn, Code: code, DVal: obsA.Val - obsB.Val})
			}
		}
	}
	return out
}
