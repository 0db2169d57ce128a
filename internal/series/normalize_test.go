package series

import (
	"testing"
	"time"
)

func TestNormalizeDay(t *testing.T) {
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   string
	}{
		{"iso date", "2024-01-15"},
		{"rfc3339", "2024-01-15T08:30:00Z"},
		{"rfc3339 nano", "2024-01-15T08:30:00.123456Z"},
		{"naive T", "2024-01-15T23:59:59"},
		{"naive space", "2024-01-15 00:00:00"},
		{"pandas zoned", "2024-01-15 00:00:00+00:00"},
		{"http date", "Mon, 15 Jan 2024 00:00:00 GMT"},
		{"display form", "1/15/2024"},
		{"padded display form", "01/15/2024"},
		{"unix millis", "1705276800000"},
		{"whitespace", "  2024-01-15 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeDay(tt.in, time.UTC)
			if !ok {
				t.Fatalf("NormalizeDay(%q) failed", tt.in)
			}
			if !got.Equal(want) {
				t.Errorf("NormalizeDay(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}

func TestNormalizeDayRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "2024-13-01", "15/15/2024", "12", "20240115"} {
		if _, ok := NormalizeDay(in, time.UTC); ok {
			t.Errorf("NormalizeDay(%q) succeeded, want failure", in)
		}
	}
}

func TestNormalizeDayLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	ny := time.FixedZone("EST", -5*3600)

	tests := []struct {
		in   string
		loc  *time.Location
		want int
	}{
		{"2024-01-15 23:00:00", tokyo, 16},
		{"2024-01-15T23:00:00Z", tokyo, 16},
		{"2024-01-15 00:00:00", ny, 14},
		{"Mon, 15 Jan 2024 00:00:00 GMT", ny, 14},
		{"2024-01-15", ny, 14},
		{"1705276800000", ny, 14},
		{"2024-01-15T00:00:00-05:00", ny, 15},
	}

	for _, tt := range tests {
		got, ok := NormalizeDay(tt.in, tt.loc)
		if !ok {
			t.Fatalf("NormalizeDay(%q) failed", tt.in)
		}
		if got.Day() != tt.want {
			t.Errorf("NormalizeDay(%q, %s) day = %d, want %d", tt.in, tt.loc, got.Day(), tt.want)
		}
	}
}
