package ionex

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	hdr := Header{
		Version: 1.0, FileType: "I", System: "G",
		Pgm: "gognss", RunBy: "TEST", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EpochOfFirstMap: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EpochOfLastMap:  time.Date(2023, 1, 1, 2, 0, 0, 0, time.UTC),
		IntervalSecs:    7200,
		NumOfMaps:       2,
		MappingFunction: "NONE",
		BaseRadius:      6371.0,
		MapDimension:    2,
		Hgt1:            450, Hgt2: 450, DHgt: 0,
		Lat1: 87.5, Lat2: 82.5, DLat: -2.5,
		Lon1: -180, Lon2: 180, DLon: 5,
		Exponent: -1,
	}

	var buf bytes.Buffer
	enc, err := NewEncoder(&buf, hdr)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	m := &TecMap{
		Epoch: hdr.EpochOfFirstMap,
		lat:   axis{hdr.Lat1, hdr.Lat2, hdr.DLat},
		lon:   axis{hdr.Lon1, hdr.Lon2, hdr.DLon},
		hgt:   axis{hdr.Hgt1, hdr.Hgt2, hdr.DHgt},
	}
	nLat, nLon, nHgt := m.dims()
	m.Values = make([]float64, nLat*nLon*nHgt)
	for i := range m.Values {
		m.Values[i] = 10.5
	}

	if err := enc.WriteMap(m); err != nil {
		t.Fatalf("WriteMap: %v", err)
	}

	dec, err := NewDecoder(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}

	if dec.Header.BaseRadius != 6371.0 {
		t.Errorf("BaseRadius = %v, want 6371.0", dec.Header.BaseRadius)
	}
	if dec.Header.Lat1 != 87.5 || dec.Header.DLat != -2.5 {
		t.Errorf("lat axis = %v/%v, want 87.5/-2.5", dec.Header.Lat1, dec.Header.DLat)
	}

	if !dec.NextMap() {
		t.Fatalf("NextMap() = false, want true: %v", dec.Err())
	}
	got := dec.Map()
	if !got.Epoch.Equal(hdr.EpochOfFirstMap) {
		t.Errorf("map epoch = %v, want %v", got.Epoch, hdr.EpochOfFirstMap)
	}
	if v, ok := got.At(87.5, -180, 450); !ok || v < 10.4 || v > 10.6 {
		t.Errorf("At(87.5,-180,450) = %v, %v, want ~10.5, true", v, ok)
	}
}

func TestAxis(t *testing.T) {
	a := axis{start: 87.5, stop: 82.5, step: -2.5}
	if n := a.n(); n != 3 {
		t.Errorf("n() = %d, want 3", n)
	}
	if i := a.index(82.5); i != 2 {
		t.Errorf("index(82.5) = %d, want 2", i)
	}
	if i := a.index(100); i != -1 {
		t.Errorf("index(100) = %d, want -1", i)
	}
}
