// Package series aligns the sentiment and forecast series returned by the
// sentiment API into one chronologically ordered dataset for charting.
//
// Merging is a pure function of its inputs. Points that cannot be placed on
// the calendar are skipped rather than reported, so one corrupt observation
// never blanks a whole chart.
package series

import (
	"time"

	"github.com/guregu/null/v6"
)

// Kind identifies which source series a point came from.
type Kind int

const (
	Sentiment Kind = iota
	Forecast
)

// Field returns the output field a Kind populates on a MergedPoint.
func (k Kind) Field() string {
	switch k {
	case Sentiment:
		return "current"
	case Forecast:
		return "future"
	default:
		return ""
	}
}

func (k Kind) String() string {
	switch k {
	case Sentiment:
		return "sentiment"
	case Forecast:
		return "forecast"
	default:
		return "unknown"
	}
}

// RawPoint is one observation from either source series. An invalid Date or
// Value means the API sent null, nothing, or something unusable.
type RawPoint struct {
	Date  null.String
	Value null.Float
}

// Point builds a RawPoint with both fields present.
func Point(date string, value float64) RawPoint {
	return RawPoint{Date: null.StringFrom(date), Value: null.FloatFrom(value)}
}

// MergedPoint is one row of the merged dataset. Current is valid iff the
// sentiment series had a value for Day; Future likewise for the forecast.
type MergedPoint struct {
	Date    string     `json:"date"`
	Current null.Float `json:"current,omitzero"`
	Future  null.Float `json:"future,omitzero"`

	// Day is the merge key: UTC midnight of the calendar day.
	Day time.Time `json:"-"`
}

// MergedSeries is ordered by Day, strictly increasing.
type MergedSeries []MergedPoint

// Current returns the days and values of the sentiment line.
func (ms MergedSeries) Current() ([]time.Time, []float64) {
	return ms.line(func(p MergedPoint) null.Float { return p.Current })
}

// Future returns the days and values of the forecast line.
func (ms MergedSeries) Future() ([]time.Time, []float64) {
	return ms.line(func(p MergedPoint) null.Float { return p.Future })
}

func (ms MergedSeries) line(field func(MergedPoint) null.Float) ([]time.Time, []float64) {
	var days []time.Time
	var values []float64
	for _, p := range ms {
		v := field(p)
		if !v.Valid {
			continue
		}
		days = append(days, p.Day)
		values = append(values, v.Float64)
	}
	return days, values
}

// Stats counts what a merge discarded.
type Stats struct {
	Merged        int // output rows
	SkippedDates  int // points dropped for a missing or unparseable date
	SkippedValues int // points dropped for a missing or non-finite value
}
