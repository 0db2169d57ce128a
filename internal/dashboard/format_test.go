package dashboard

import (
	"testing"

	"github.com/guregu/null/v6"

	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		in   null.Float
		want string
	}{
		{null.FloatFrom(0.1 + 0.2), "0.3"},
		{null.FloatFrom(0.123456), "0.1235"},
		{null.FloatFrom(-0.5), "-0.5"},
		{null.FloatFrom(0), "0"},
		{null.Float{}, Missing},
	}
	for _, tt := range tests {
		if got := FormatScore(tt.in); got != tt.want {
			t.Errorf("FormatScore(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExtreme(t *testing.T) {
	tests := []struct {
		in   *upstream.Extreme
		want string
	}{
		{&upstream.Extreme{Value: 0.9, Date: "2024-01-05 00:00:00"}, "0.9 on 1/5/2024"},
		{&upstream.Extreme{Value: 0.2, Date: "Fri, 05 Jan 2024 00:00:00 GMT"}, "0.2 on 1/5/2024"},
		{&upstream.Extreme{Value: 0.7, Date: "12"}, "0.7 on 12"},
		{&upstream.Extreme{Value: 0.7}, "0.7"},
		{nil, Missing},
	}
	for _, tt := range tests {
		if got := FormatExtreme(tt.in, ""); got != tt.want {
			t.Errorf("FormatExtreme(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatTrend(t *testing.T) {
	if got := FormatTrend("Increasing"); got != "Increasing ↑" {
		t.Errorf("FormatTrend(Increasing) = %q", got)
	}
	if got := FormatTrend(""); got != Missing {
		t.Errorf("FormatTrend(\"\") = %q, want %q", got, Missing)
	}
	if got := FormatTrend("Sideways"); got != "Sideways" {
		t.Errorf("FormatTrend(Sideways) = %q", got)
	}
}

func TestSummaryRows(t *testing.T) {
	rows := SummaryRows(upstream.Aggregate{
		Average:    null.FloatFrom(0.25),
		Latest:     null.FloatFrom(0.5),
		Prediction: "Likely Positive",
		Trend:      "Stable",
	}, "")
	labels := []string{"Average", "Latest", "Max", "Min", "Prediction", "Trend"}
	if len(rows) != len(labels) {
		t.Fatalf("SummaryRows returned %d rows, want %d", len(rows), len(labels))
	}
	for i, l := range labels {
		if rows[i].Label != l {
			t.Errorf("row %d: Label = %q, want %q", i, rows[i].Label, l)
		}
	}
	if rows[2].Value != Missing {
		t.Errorf("Max = %q, want %q", rows[2].Value, Missing)
	}

	msg := SummaryRows(upstream.Aggregate{Message: "No forecast data available"}, "")
	if len(msg) != 1 || msg[0].Value != "No forecast data available" {
		t.Errorf("message aggregate rows = %+v", msg)
	}
}

func TestPointRows(t *testing.T) {
	ms := series.Merge(
		[]series.RawPoint{series.Point("2024-01-01", 0.2)},
		[]series.RawPoint{series.Point("2024-01-02", 0.3)},
	)
	rows := PointRows(ms)
	if len(rows) != 2 {
		t.Fatalf("PointRows returned %d rows, want 2", len(rows))
	}
	if rows[0].Future != Missing || rows[1].Current != Missing {
		t.Errorf("absent fields not rendered as %q: %+v", Missing, rows)
	}
	if rows[1].Future != "0.3" {
		t.Errorf("Future = %q, want 0.3", rows[1].Future)
	}
}
