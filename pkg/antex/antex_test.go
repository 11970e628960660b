package antex

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	hdr := Header{
		Version: 1.4, SatSystem: "M",
		Pgm: "gognss", RunBy: "TEST",
		Date:    time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		PcvType: "A",
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, hdr)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	cal := &Calibration{
		AntType: "TRM59800.80", Serial: "12345",
		Method: "CONV", Agency: "GFZ", NumCalibrations: 3,
		Zen1: 0, Zen2: 90, DZen: 5,
		ValidFrom: time.Date(2011, 1, 19, 0, 0, 0, 0, time.UTC),
		Frequencies: []Frequency{
			{
				Code:  "G01",
				North: 1.2, East: 0.3, Up: 85.4,
				NoAzi: []float64{1, 2, 3, 2, 1},
			},
		},
	}
	if err := enc.WriteCalibration(cal); err != nil {
		t.Fatalf("WriteCalibration: %v", err)
	}

	dec, err := NewDecoder(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	if dec.Header.Version != 1.4 || dec.Header.SatSystem != "M" {
		t.Errorf("header = %+v, want version 1.4, syst M", dec.Header)
	}

	if !dec.NextCalibration() {
		t.Fatalf("NextCalibration() = false, want true: %v", dec.Err())
	}
	got := dec.Calibration()
	if got.AntType != "TRM59800.80" {
		t.Errorf("AntType = %q, want TRM59800.80", got.AntType)
	}
	if len(got.Frequencies) != 1 {
		t.Fatalf("len(Frequencies) = %d, want 1", len(got.Frequencies))
	}
	f := got.Frequencies[0]
	if f.Code != "G01" {
		t.Errorf("Code = %q, want G01", f.Code)
	}
	if f.Up < 85.3 || f.Up > 85.5 {
		t.Errorf("Up = %v, want ~85.4", f.Up)
	}
	if len(f.NoAzi) != 5 || f.NoAzi[2] != 3 {
		t.Errorf("NoAzi = %v, want [1 2 3 2 1]", f.NoAzi)
	}
}

func TestParseAntexEpoch(t *testing.T) {
	got, err := parseAntexEpoch("  2011     1    19     0     0   00.0000000")
	if err != nil {
		t.Fatalf("parseAntexEpoch: %v", err)
	}
	want := time.Date(2011, 1, 19, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseAntexEpoch = %v, want %v", got, want)
	}
}
