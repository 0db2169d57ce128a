package series

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Layouts seen from the sentiment API: pandas str(Timestamp), Flask's HTTP
// date rendering of datetimes, ISO dates, and the M/D/YYYY display form.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
}

// NormalizeDay maps a raw date onto its calendar day in loc, returned as UTC
// midnight. Every form is read as an instant first: zone-less dates and
// timestamps are UTC, so "2024-01-08 00:00:00" and
// "Mon, 08 Jan 2024 00:00:00 GMT" always land on the same day. A
// digits-only string of at least twelve digits is read as Unix milliseconds;
// shorter numbers are not dates.
func NormalizeDay(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	if isDigits(s) {
		if len(s) < 12 {
			return time.Time{}, false
		}
		ms, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return time.Time{}, false
		}
		return civilDay(time.UnixMilli(ms).In(loc)), true
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return civilDay(t.In(loc)), true
	}
	return time.Time{}, false
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func normalizePoint(p RawPoint, loc *time.Location) (time.Time, bool) {
	if !p.Date.Valid {
		return time.Time{}, false
	}
	return NormalizeDay(p.Date.String, loc)
}

func usableValue(v null.Float) (float64, bool) {
	if !v.Valid {
		return 0, false
	}
	if math.IsNaN(v.Float64) || math.IsInf(v.Float64, 0) {
		return 0, false
	}
	return v.Float64, true
}
