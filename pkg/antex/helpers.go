package antex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseHeaderDate parses the PGM / RUN BY / DATE and METH / BY / # / DATE
// date field, which appears in the wild as either a plain "yyyymmdd hhmmss"
// stamp or a "yyyymmdd hhmmss ZON" stamp with a time zone abbreviation.
func parseHeaderDate(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	for _, layout := range []string{"20060102 150405 MST", "20060102 150405", "02-Jan-06 15:04"} {
		if t, err := time.Parse(layout, date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("antex: parse date %q", date)
}

// parseAntexEpoch parses a VALID FROM / VALID UNTIL data field: six
// whitespace-separated fields, year month day hour min sec(.fraction).
func parseAntexEpoch(val string) (time.Time, error) {
	fields := strings.Fields(val)
	if len(fields) < 6 {
		return time.Time{}, fmt.Errorf("antex: parse epoch %q: not enough fields", val)
	}

	ints := make([]int, 5)
	for i := 0; i < 5; i++ {
		n, err := strconv.Atoi(fields[i])
		if err != nil {
			return time.Time{}, fmt.Errorf("antex: parse epoch %q: %v", val, err)
		}
		ints[i] = n
	}
	sec, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("antex: parse epoch %q: %v", val, err)
	}

	whole := int(sec)
	nsec := int((sec - float64(whole)) * 1e9)
	return time.Date(ints[0], time.Month(ints[1]), ints[2], ints[3], ints[4], whole, nsec, time.UTC), nil
}
