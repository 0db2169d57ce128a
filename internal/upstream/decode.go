package upstream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	"sentidash/internal/series"
)

type graphWire struct {
	ASIN        string          `json:"asin"`
	ProductName string          `json:"product_name"`
	Sentiment   json.RawMessage `json:"sentiment"`
	Forecast    json.RawMessage `json:"forecast"`
}

// decodeGraph accepts any JSON object. A missing or non-array series is
// treated as empty.
func decodeGraph(body []byte) (*Graph, error) {
	var w graphWire
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, err
	}
	return &Graph{
		ASIN:        w.ASIN,
		ProductName: w.ProductName,
		Sentiment:   decodePoints(w.Sentiment, "score"),
		Forecast:    decodePoints(w.Forecast, "yhat"),
	}, nil
}

func decodePoints(raw json.RawMessage, valueKey string) []series.RawPoint {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []series.RawPoint{}
	}
	points := make([]series.RawPoint, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			points = append(points, series.RawPoint{})
			continue
		}
		points = append(points, series.RawPoint{
			Date:  decodeDate(fields["date"]),
			Value: decodeValue(fields[valueKey]),
		})
	}
	return points
}

// decodeDate keeps strings as sent and renders numbers (epoch millis from
// pandas) as their integer text.
func decodeDate(raw json.RawMessage) null.String {
	if isNull(raw) {
		return null.String{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return null.StringFrom(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if i, err := n.Int64(); err == nil {
			return null.StringFrom(strconv.FormatInt(i, 10))
		}
	}
	return null.String{}
}

// decodeValue accepts JSON numbers and numeric strings.
func decodeValue(raw json.RawMessage) null.Float {
	if isNull(raw) {
		return null.Float{}
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return null.FloatFrom(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.Float{}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
