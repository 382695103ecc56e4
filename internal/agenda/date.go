package agenda

import (
	"regexp"
	"strconv"
	"time"
)

// frenchDateRe matches the sheet's date format: D/M/YYYY with an optional
// H:M or H:M:S part after a single space. Day, month, hour, minute and
// second accept 1 or 2 digits. The match is anchored at the start only;
// trailing text is ignored, as the original feed sometimes carries it.
var frenchDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})(?: (\d{1,2}):(\d{1,2})(?::(\d{1,2}))?)?`)

// ParseFrenchDate parses a "jour/mois/année" date string from the sheet
// into an instant in the given location.
//
// The instant is built from the numeric components with time.Date, never
// through a locale-sensitive parse, so day and month can never be swapped.
// Components that do not form a real calendar date or clock time
// (31/04/2024, 29/02/2023, hour 24, ...) are rejected rather than
// normalized away.
//
// Missing time defaults to midnight. The second return value is false for
// empty, malformed or invalid input; the function never fails any other
// way.
func ParseFrenchDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	m := frenchDateRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := atoi(m[3])

	hour, minute, second := 0, 0, 0
	if m[4] != "" {
		hour = atoi(m[4])
		minute = atoi(m[5])
		if m[6] != "" {
			second = atoi(m[6])
		}
	}

	if month < 1 || month > 12 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, second, 0, loc)

	// time.Date silently normalizes out-of-range components (day 31 of a
	// 30-day month becomes the 1st of the next month). Round-trip the
	// components to reject anything that moved.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day ||
		t.Hour() != hour || t.Minute() != minute || t.Second() != second {
		return time.Time{}, false
	}

	// The zero instant is reserved as the absent-date marker everywhere
	// downstream; a literal 1/1/0001 in UTC must not masquerade as it.
	if t.IsZero() {
		return time.Time{}, false
	}

	return t, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
