package dashboard

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/shopspring/decimal"

	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

// Missing is shown for a value the API did not send.
const Missing = "—"

// ScorePlaces is the number of decimals scores are rounded to for display.
const ScorePlaces = 4

// FormatScore rounds a score for display, or returns Missing.
func FormatScore(v null.Float) string {
	if !v.Valid {
		return Missing
	}
	return decimal.NewFromFloat(v.Float64).Round(ScorePlaces).String()
}

// FormatExtreme renders a min or max as "value on date". Dates that parse
// are shown in layout; anything else (a forecast row index, say) is shown
// verbatim.
func FormatExtreme(e *upstream.Extreme, layout string) string {
	if e == nil {
		return Missing
	}
	v := FormatScore(null.FloatFrom(e.Value))
	date := strings.TrimSpace(e.Date)
	if date == "" {
		return v
	}
	if day, ok := series.NormalizeDay(date, time.UTC); ok {
		if layout == "" {
			layout = series.DefaultDisplayLayout
		}
		date = day.Format(layout)
	}
	return v + " on " + date
}

// FormatTrend adds a direction arrow to the API's trend word.
func FormatTrend(trend string) string {
	switch trend {
	case "":
		return Missing
	case "Increasing":
		return trend + " ↑"
	case "Decreasing":
		return trend + " ↓"
	case "Stable":
		return trend + " →"
	default:
		return trend
	}
}

// FormatText returns s, or Missing when s is empty.
func FormatText(s string) string {
	if s == "" {
		return Missing
	}
	return s
}

// Row is one label/value line of a summary table.
type Row struct {
	Label string
	Value string
}

// SummaryRows lays out an aggregate as the six summary table rows. An
// aggregate without data yields a single row carrying its message.
func SummaryRows(a upstream.Aggregate, layout string) []Row {
	if !a.HasData() && a.Message != "" {
		return []Row{{Label: "Message", Value: a.Message}}
	}
	return []Row{
		{Label: "Average", Value: FormatScore(a.Average)},
		{Label: "Latest", Value: FormatScore(a.Latest)},
		{Label: "Max", Value: FormatExtreme(a.Max, layout)},
		{Label: "Min", Value: FormatExtreme(a.Min, layout)},
		{Label: "Prediction", Value: FormatText(a.Prediction)},
		{Label: "Trend", Value: FormatTrend(a.Trend)},
	}
}

// PointRow is one rendered line of the merged data table.
type PointRow struct {
	Date    string
	Current string
	Future  string
}

// PointRows renders a merged series for tabular display.
func PointRows(ms series.MergedSeries) []PointRow {
	rows := make([]PointRow, 0, len(ms))
	for _, p := range ms {
		rows = append(rows, PointRow{
			Date:    p.Date,
			Current: FormatScore(p.Current),
			Future:  FormatScore(p.Future),
		})
	}
	return rows
}
