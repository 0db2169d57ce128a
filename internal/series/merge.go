package series

import (
	"maps"
	"slices"
	"time"

	"github.com/guregu/null/v6"
)

// DefaultDisplayLayout renders dates as M/D/YYYY.
const DefaultDisplayLayout = "1/2/2006"

type options struct {
	layout string
	loc    *time.Location
}

// Option configures Merge.
type Option func(*options)

// WithDisplayLayout sets the time layout used for MergedPoint.Date. The
// layout only affects display; ordering always follows the calendar.
func WithDisplayLayout(layout string) Option {
	return func(o *options) {
		if layout != "" {
			o.layout = layout
		}
	}
}

// WithLocation sets the zone in which each date's calendar day is taken.
// Zone-less dates are read as UTC first. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.loc = loc
		}
	}
}

// Merge aligns the sentiment and forecast series by calendar day. Nil inputs
// are treated as empty. See MergeWithStats.
func Merge(sentiment, forecast []RawPoint, opts ...Option) MergedSeries {
	ms, _ := MergeWithStats(sentiment, forecast, opts...)
	return ms
}

// MergeWithStats aligns the two series and reports how many points were
// skipped. Sentiment is applied first, then forecast; a duplicate day within
// one series overwrites that series' field only.
func MergeWithStats(sentiment, forecast []RawPoint, opts ...Option) (MergedSeries, Stats) {
	o := options{layout: DefaultDisplayLayout, loc: time.UTC}
	for _, opt := range opts {
		opt(&o)
	}

	var st Stats
	rows := make(map[int64]*MergedPoint, len(sentiment)+len(forecast))

	apply := func(points []RawPoint, kind Kind) {
		for _, p := range points {
			day, ok := normalizePoint(p, o.loc)
			if !ok {
				st.SkippedDates++
				continue
			}
			v, ok := usableValue(p.Value)
			if !ok {
				st.SkippedValues++
				continue
			}

			key := day.Unix()
			row := rows[key]
			if row == nil {
				row = &MergedPoint{Day: day}
				rows[key] = row
			}
			switch kind {
			case Sentiment:
				row.Current = null.FloatFrom(v)
			case Forecast:
				row.Future = null.FloatFrom(v)
			}
		}
	}
	apply(sentiment, Sentiment)
	apply(forecast, Forecast)

	keys := slices.Sorted(maps.Keys(rows))
	out := make(MergedSeries, 0, len(keys))
	for _, k := range keys {
		row := rows[k]
		row.Date = row.Day.Format(o.layout)
		out = append(out, *row)
	}
	st.Merged = len(out)
	return out, st
}
