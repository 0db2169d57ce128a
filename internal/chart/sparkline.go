package chart

import (
	"math"
	"strings"

	"sentidash/internal/series"
)

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders values as a row of block characters scaled between lo
// and hi. NaN renders as a space.
func Sparkline(values []float64, lo, hi float64) string {
	var b strings.Builder
	span := hi - lo
	for _, v := range values {
		if math.IsNaN(v) {
			b.WriteByte(' ')
			continue
		}
		idx := 0
		if span > 0 {
			idx = int(math.Round((v - lo) / span * float64(len(sparkRunes)-1)))
		}
		idx = max(0, min(idx, len(sparkRunes)-1))
		b.WriteRune(sparkRunes[idx])
	}
	return b.String()
}

// Sparklines renders both lines of ms on a shared scale, one rune per row.
// A row without a value for a line is blank in that line.
func Sparklines(ms series.MergedSeries) (current, future string) {
	cur := make([]float64, len(ms))
	fut := make([]float64, len(ms))
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range ms {
		cur[i], fut[i] = math.NaN(), math.NaN()
		if p.Current.Valid {
			cur[i] = p.Current.Float64
			lo, hi = math.Min(lo, cur[i]), math.Max(hi, cur[i])
		}
		if p.Future.Valid {
			fut[i] = p.Future.Float64
			lo, hi = math.Min(lo, fut[i]), math.Max(hi, fut[i])
		}
	}
	return Sparkline(cur, lo, hi), Sparkline(fut, lo, hi)
}
