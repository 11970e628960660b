// Package gnss contains common constants and type definitions.
package gnss

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystems_MarshalJSON(t *testing.T) {
	systems := Systems{SysGAL, SysBDS}
	sysJSON, err := json.Marshal(systems)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "[\"E\",\"C\"]", string(sysJSON), "marshall gnss")
}

func TestParseSatSystems(t *testing.T) {
	tests := []struct {
		name    string
		s       string
		want    Systems
		wantErr bool
	}{

		{name: "t1", s: "GPS+GLO+GAL+BDS+SBAS+IRNSS",
			want: Systems{SysGPS, SysGLO, SysGAL, SysBDS, SysSBAS, SysNavIC}, wantErr: false},
		{name: "t1-blanks", s: " GPS + GLO+GAL+BDS+SBAS+IRNSS ",
			want: Systems{SysGPS, SysGLO, SysGAL, SysBDS, SysSBAS, SysNavIC}, wantErr: false},
		{name: "t2", s: "GPS+GLO-GAL+BDS+SBAS+IRNSS", want: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSatSystems(tt.s)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseSatSystems() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSatSystems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSV_String(t *testing.T) {
	sv := SV{Sys: SysGPS, PRN: 7}
	assert.Equal(t, "G07", sv.String())
}

func TestParseSV(t *testing.T) {
	sv, err := ParseSV("R23")
	assert.NoError(t, err)
	assert.Equal(t, SV{Sys: SysGLO, PRN: 23}, sv)

	_, err = ParseSV("X")
	assert.Error(t, err)
}

func TestSBASSystemForPRN(t *testing.T) {
	assert.Equal(t, SBASEGNOS, SBASSystemForPRN(123))
	assert.Equal(t, SBASWAAS, SBASSystemForPRN(131))
	assert.Equal(t, SBASUnknown, SBASSystemForPRN(1))
}

func TestEpoch_RoundTrip(t *testing.T) {
	instant, err := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
	assert.NoError(t, err)

	e := NewEpoch(UTC, instant)
	gpst := e.In(GPST)
	back := gpst.In(UTC)
	assert.True(t, e.Equal(back))
}

func TestEpoch_Ordering(t *testing.T) {
	t0, err := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
	assert.NoError(t, err)

	e1 := NewEpoch(GPST, t0)
	e2 := NewEpoch(GPST, t0.Add(30*time.Second))
	assert.True(t, e1.Before(e2))
	assert.False(t, e2.Before(e1))
}
