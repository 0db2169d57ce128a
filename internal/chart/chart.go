// Package chart renders a merged sentiment series as a PNG line chart and as
// terminal sparklines.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"sentidash/internal/series"
)

// Line names as shown in the legend.
const (
	CurrentName = "Current Sentiment"
	FutureName  = "Future Prediction"
)

var (
	currentColor = drawing.ColorFromHex("42fa09")
	futureColor  = drawing.ColorFromHex("ff7f0e")
	blankColor   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// Options controls the rendered image.
type Options struct {
	Title      string
	Width      int
	Height     int
	DateLayout string
}

// DefaultOptions matches the chart section defaults of the config file.
func DefaultOptions() Options {
	return Options{Width: 1024, Height: 480, DateLayout: series.DefaultDisplayLayout}
}

func (o Options) normalized() Options {
	d := DefaultOptions()
	if o.Width <= 0 {
		o.Width = d.Width
	}
	if o.Height <= 0 {
		o.Height = d.Height
	}
	if o.DateLayout == "" {
		o.DateLayout = d.DateLayout
	}
	return o
}

// RenderPNG draws the sentiment and forecast lines of ms. Each line only
// connects its own points, so a day with one field leaves a gap in the
// other line. An empty series renders a blank image.
func RenderPNG(w io.Writer, ms series.MergedSeries, opts Options) error {
	opts = opts.normalized()

	var lines []gochart.TimeSeries
	if s, ok := timeSeries(CurrentName, currentColor, ms.Current); ok {
		lines = append(lines, s)
	}
	if s, ok := timeSeries(FutureName, futureColor, ms.Future); ok {
		lines = append(lines, s)
	}
	if len(lines) == 0 {
		return blank(w, opts.Width, opts.Height)
	}

	first, last := timeBounds(lines)
	lo, hi := valueBounds(ms)
	drawn := make([]gochart.Series, len(lines))
	for i, l := range lines {
		drawn[i] = l
	}

	ch := gochart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			ValueFormatter: gochart.TimeValueFormatterWithFormat(opts.DateLayout),
			Range:          &gochart.ContinuousRange{Min: float64(first.UnixNano()), Max: float64(last.UnixNano())},
		},
		YAxis: gochart.YAxis{
			Name:  "Sentiment",
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: drawn,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// timeSeries builds one line. go-chart needs two x values, so a lone point
// is drawn as a dot spanning one hour.
func timeSeries(name string, col drawing.Color, line func() ([]time.Time, []float64)) (gochart.TimeSeries, bool) {
	days, values := line()
	if len(days) == 0 {
		return gochart.TimeSeries{}, false
	}
	style := gochart.Style{StrokeColor: col, StrokeWidth: 2, DotColor: col, DotWidth: 3}
	if len(days) == 1 {
		days = []time.Time{days[0], days[0].Add(time.Hour)}
		values = []float64{values[0], values[0]}
		style.DotWidth = 6
	}
	return gochart.TimeSeries{Name: name, XValues: days, YValues: values, Style: style}, true
}

// timeBounds spans every x value drawn, including the extra hour of a lone
// point. A range of one day is widened by half a day on each side.
func timeBounds(lines []gochart.TimeSeries) (time.Time, time.Time) {
	first, last := lines[0].XValues[0], lines[0].XValues[0]
	for _, l := range lines {
		for _, x := range l.XValues {
			if x.Before(first) {
				first = x
			}
			if x.After(last) {
				last = x
			}
		}
	}
	if last.Sub(first) < 24*time.Hour {
		first = first.Add(-12 * time.Hour)
		last = last.Add(12 * time.Hour)
	}
	return first, last
}

func valueBounds(ms series.MergedSeries) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range ms {
		for _, v := range []struct {
			ok bool
			f  float64
		}{{p.Current.Valid, p.Current.Float64}, {p.Future.Valid, p.Future.Float64}} {
			if !v.ok {
				continue
			}
			lo = math.Min(lo, v.f)
			hi = math.Max(hi, v.f)
		}
	}
	if hi <= lo {
		return lo - 0.5, hi + 0.5
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// blank writes an empty white PNG of the requested size.
func blank(w io.Writer, width, height int) error {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: blankColor}, image.Point{}, draw.Src)
	return png.Encode(w, img)
}
