package rinexmodel

import (
	"testing"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/de-bkg/gognss/pkg/rinex"
)

func mkEpoch(t time.Time, prn rinex.PRN, code string, val float64, lli int8) *rinex.Epoch {
	return &rinex.Epoch{
		Time: t, NumSat: 1,
		ObsList: []rinex.SatObs{{Prn: prn, Obss: map[rinex.ObsCode]rinex.Obs{
			rinex.ObsCode(code): {Val: val, LLI: lli},
		}}},
	}
}

func TestObsSeriesOrdering(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	g01 := rinex.PRN{Sys: gnss.SysGPS, Num: 1}

	s := NewObsSeries([]*rinex.Epoch{
		mkEpoch(t0.Add(2*time.Second), g01, "C1C", 2, 0),
		mkEpoch(t0, g01, "C1C", 1, 0),
		mkEpoch(t0.Add(1*time.Second), g01, "C1C", 1.5, 0),
	})
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", s.Len())
	}
	if !s.At(0).Time.Equal(t0) {
		t.Errorf("At(0).Time = %v, want %v", s.At(0).Time, t0)
	}
	if !s.At(2).Time.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("At(2).Time = %v, want t0+2s", s.At(2).Time)
	}
}

func TestHatchSmoothing(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	g01 := rinex.PRN{Sys: gnss.SysGPS, Num: 1}

	// Epoch 0: code=100, phase=50 -> smoothed=100, n=1
	// Epoch 1: code=102, phase=51 (dPhase=1), no LLI -> n=2
	//   smoothed = 102/2 + (1/2)*(100 + 1) = 51 + 50.5 = 101.5
	// Epoch 2: code=104, phase=53 (dPhase=2), no LLI -> n=3
	//   smoothed = 104/3 + (2/3)*(101.5 + 2) = 34.6667 + 69.0 = 103.6667
	epochs := []*rinex.Epoch{
		mkEpoch(t0, g01, "C1C", 100, 0),
		mkEpoch(t0.Add(time.Second), g01, "C1C", 102, 0),
		mkEpoch(t0.Add(2*time.Second), g01, "C1C", 104, 0),
	}
	for i, phase := range []float64{50, 51, 53} {
		epochs[i].ObsList[0].Obss["L1C"] = rinex.Obs{Val: phase, LLI: 0}
	}

	out := applyHatch(epochs, "C1C", 0)

	got0 := out[0].ObsList[0].Obss["C1C"].Val
	if got0 != 100 {
		t.Errorf("epoch0 smoothed = %v, want 100", got0)
	}
	got1 := out[1].ObsList[0].Obss["C1C"].Val
	if got1 != 101.5 {
		t.Errorf("epoch1 smoothed = %v, want 101.5", got1)
	}
	got2 := out[2].ObsList[0].Obss["C1C"].Val
	want2 := 104.0/3 + (2.0/3)*(101.5+2)
	if diff := got2 - want2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("epoch2 smoothed = %v, want %v", got2, want2)
	}
}

func TestHatchResetsOnLossOfLock(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	g01 := rinex.PRN{Sys: gnss.SysGPS, Num: 1}

	epochs := []*rinex.Epoch{
		mkEpoch(t0, g01, "C1C", 100, 0),
		mkEpoch(t0.Add(time.Second), g01, "C1C", 200, 1), // LLI set: loss of lock
	}
	epochs[0].ObsList[0].Obss["L1C"] = rinex.Obs{Val: 50}
	epochs[1].ObsList[0].Obss["L1C"] = rinex.Obs{Val: 999, LLI: 1}

	out := applyHatch(epochs, "C1C", 0)
	got := out[1].ObsList[0].Obss["C1C"].Val
	if got != 200 {
		t.Errorf("epoch1 smoothed after LLI reset = %v, want 200 (raw code value)", got)
	}
}

func TestMergeFavorsPrimary(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	g01 := rinex.PRN{Sys: gnss.SysGPS, Num: 1}

	hdrA := &rinex.ObsHeader{SatSystem: gnss.SysGPS}
	hdrB := &rinex.ObsHeader{SatSystem: gnss.SysGPS}

	a := &Record{Header: hdrA, Series: NewObsSeries([]*rinex.Epoch{
		mkEpoch(t0, g01, "C1C", 1, 0),
		mkEpoch(t0.Add(30*time.Second), g01, "C1C", 2, 0),
	})}
	b := &Record{Header: hdrB, Series: NewObsSeries([]*rinex.Epoch{
		mkEpoch(t0, g01, "C1C", 999, 0), // collides with a's t0; a should win
		mkEpoch(t0.Add(60*time.Second), g01, "C1C", 3, 0),
	})}

	merged, err := Merge(a, b)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.Series.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", merged.Series.Len())
	}
	epo0, ok := merged.Series.Lookup(t0)
	if !ok {
		t.Fatalf("Lookup(t0) missing")
	}
	if v := epo0.ObsList[0].Obss["C1C"].Val; v != 1 {
		t.Errorf("collision value = %v, want 1 (a wins)", v)
	}
}

func TestSplitAndTimeBin(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	g01 := rinex.PRN{Sys: gnss.SysGPS, Num: 1}

	var epochs []*rinex.Epoch
	for i := 0; i < 6; i++ {
		epochs = append(epochs, mkEpoch(t0.Add(time.Duration(i)*30*time.Second), g01, "C1C", float64(i), 0))
	}
	r := &Record{Header: &rinex.ObsHeader{}, Series: NewObsSeries(epochs)}

	r1, r2 := Split(r, t0.Add(75*time.Second))
	if r1.Series.Len() != 3 {
		t.Errorf("r1 len = %d, want 3", r1.Series.Len())
	}
	if r2.Series.Len() != 3 {
		t.Errorf("r2 len = %d, want 3", r2.Series.Len())
	}

	bins := TimeBin(r, 90*time.Second)
	total := 0
	for _, bin := range bins {
		total += bin.Series.Len()
	}
	if total != 6 {
		t.Errorf("sum of bin lengths = %d, want 6", total)
	}
}

func TestDiff(t *testing.T) {
	t0 := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	g01 := rinex.PRN{Sys: gnss.SysGPS, Num: 1}

	a := &Record{Header: &rinex.ObsHeader{}, Series: NewObsSeries([]*rinex.Epoch{
		mkEpoch(t0, g01, "C1C", 10, 0),
	})}
	b := &Record{Header: &rinex.ObsHeader{}, Series: NewObsSeries([]*rinex.Epoch{
		mkEpoch(t0, g01, "C1C", 7, 0),
	})}

	entries := Diff(a, b)
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].DVal != 3 {
		t.Errorf("DVal = %v, want 3", entries[0].DVal)
	}
}
