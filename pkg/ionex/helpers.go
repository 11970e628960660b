package ionex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseEpoch parses the 6-field (yyyy mm dd hh mm ss) epoch used in EPOCH OF
// FIRST/LAST/CURRENT MAP records, given the raw 60-char value field.
func parseEpoch(val string) (time.Time, error) {
	fields := strings.Fields(val)
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("parse epoch %q: not enough fields", val)
	}
	nums := make([]int, 6)
	for i := 0; i < 6; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("parse epoch %q: %v", val, err)
		}
		nums[i] = n
	}
	return time.Date(nums[0], time.Month(nums[1]), nums[2], nums[3], nums[4], nums[5], 0, time.UTC), nil
}

// parseAxisTriple parses a "start stop step" header record value, the layout
// shared by HGT1/HGT2/DHGT, LAT1/LAT2/DLAT and LON1/LON2/DLON.
func parseAxisTriple(val string) (start, stop, step float64, err error) {
	if len(val) < 20 {
		return 0, 0, 0, fmt.Errorf("parse axis triple %q: too short", val)
	}
	start, err = strconv.ParseFloat(strings.TrimSpace(val[2:8]), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse axis start %q: %v", val, err)
	}
	stop, err = strconv.ParseFloat(strings.TrimSpace(val[8:14]), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse axis stop %q: %v", val, err)
	}
	step, err = strconv.ParseFloat(strings.TrimSpace(val[14:20]), 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse axis step %q: %v", val, err)
	}
	return start, stop, step, nil
}

// parseHeaderDate parses the Date field of PGM / RUN BY / DATE, mirroring
// the format set accepted by the RINEX decoders in pkg/rinex.
func parseHeaderDate(date string) (time.Time, error) {
	formats := []string{"20060102 150405", "20060102 150405 MST", "02-Jan-06 15:04"}
	var lastErr error
	for _, f := range formats {
		if t, err := time.Parse(f, date); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, lastErr
}
