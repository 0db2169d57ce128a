// Package upstream is a client for the product sentiment API: per-product
// summaries, the raw sentiment and forecast series, and the product list.
package upstream

import (
	"errors"

	"github.com/guregu/null/v6"

	"sentidash/internal/series"
)

var (
	// ErrNotFound means the API does not know the product.
	ErrNotFound = errors.New("upstream: product not found")

	// ErrLoadFailed wraps every graph fetch failure.
	ErrLoadFailed = errors.New("upstream: failed to load graph data")
)

// Extreme is a min or max of a series with the date it occurred on. Date is
// whatever the API rendered, which for forecasts may be a row index.
type Extreme struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// Aggregate summarises one series. When the API has no data it sends only
// Message.
type Aggregate struct {
	Label      string     `json:"label,omitempty"`
	Average    null.Float `json:"average,omitzero"`
	Latest     null.Float `json:"latest,omitzero"`
	Max        *Extreme   `json:"max,omitempty"`
	Min        *Extreme   `json:"min,omitempty"`
	Trend      string     `json:"trend,omitempty"`
	Prediction string     `json:"prediction,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// HasData reports whether the aggregate carries any statistics.
func (a Aggregate) HasData() bool {
	return a.Average.Valid || a.Latest.Valid || a.Max != nil || a.Min != nil
}

// Summary is the response of POST /product_summary.
type Summary struct {
	ASIN        string    `json:"asin"`
	ProductName string    `json:"product_name"`
	Historical  Aggregate `json:"historical_summary"`
	Forecast    Aggregate `json:"forecast_summary"`
}

// Graph is the decoded response of GET /graph/{product}. Points the API sent
// in an unusable shape are kept as invalid RawPoints so the merge can count
// them.
type Graph struct {
	ASIN        string
	ProductName string
	Sentiment   []series.RawPoint
	Forecast    []series.RawPoint
}

// Product is one entry of GET /products.
type Product struct {
	ASIN string `json:"asin"`
	Name string `json:"name"`
}
