package crinex

import (
	"bufio"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleHeaderLine and sampleEndHeaderLine form a minimal RINEX 3 observation
// header, short enough to exercise header passthrough without pulling in
// pkg/rinex.
const sampleHeaderLine = "     3.04           OBSERVATION DATA    M                 RINEX VERSION / TYPE"
const sampleEndHeaderLine = "                                                            END OF HEADER"

func buildCrinex(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	enc, err := NewEncoder(&buf, "rnxfmt", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "3.0")
	require.NoError(t, err)

	require.NoError(t, enc.WriteHeaderLine(sampleHeaderLine))
	require.NoError(t, enc.WriteHeaderLine(sampleEndHeaderLine))

	epoch1 := "> 2024 01 01 00 00  0.0000000  0  1G01"
	sat1 := "  20123456.789    20123456.789  "
	require.NoError(t, enc.WriteEpoch(epoch1, []string{sat1}, true))

	epoch2 := "> 2024 01 01 00 00 30.0000000  0  1G01"
	sat2 := "  20123460.123    20123460.123  "
	require.NoError(t, enc.WriteEpoch(epoch2, []string{sat2}, false))

	require.NoError(t, enc.Flush())
	return buf.Bytes()
}

func TestEncoderDecoder_HeaderPassthrough(t *testing.T) {
	data := buildCrinex(t)

	dec, err := NewDecoder(bytes.NewReader(data))
	require.NoError(t, err)

	sc := bufio.NewScanner(dec)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil && err != io.EOF {
		require.NoError(t, err)
	}

	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, sampleHeaderLine, lines[0])
	assert.Equal(t, sampleEndHeaderLine, lines[1])
}

func TestEncoderDecoder_EpochRoundTrip(t *testing.T) {
	data := buildCrinex(t)

	dec, err := NewDecoder(bytes.NewReader(data))
	require.NoError(t, err)

	sc := bufio.NewScanner(dec)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}

	require.GreaterOrEqual(t, len(lines), 4)
	assert.Contains(t, lines[2], "2024 01 01 00 00")
	assert.Contains(t, lines[4], "2024 01 01 00 00 30")
}
