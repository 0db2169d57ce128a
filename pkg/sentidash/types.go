package sentidash

// Full method names of the sentidash.v1.Dashboard service.
const (
	ServiceName = "sentidash.v1.Dashboard"

	MethodGetSummary   = "/" + ServiceName + "/GetSummary"
	MethodGetGraph     = "/" + ServiceName + "/GetGraph"
	MethodListProducts = "/" + ServiceName + "/ListProducts"
	MethodGetOverview  = "/" + ServiceName + "/GetOverview"
)

// Extreme is a min or max of a series and the date it occurred on.
type Extreme struct {
	Value float64 `json:"value"`
	Date  string  `json:"date"`
}

// Aggregate summarises one series. Message is set instead of the statistics
// when the series has no data.
type Aggregate struct {
	Label      string   `json:"label,omitempty"`
	Average    *float64 `json:"average,omitempty"`
	Latest     *float64 `json:"latest,omitempty"`
	Max        *Extreme `json:"max,omitempty"`
	Min        *Extreme `json:"min,omitempty"`
	Trend      string   `json:"trend,omitempty"`
	Prediction string   `json:"prediction,omitempty"`
	Message    string   `json:"message,omitempty"`
}

// Summary is a product's historical and forecast aggregates.
type Summary struct {
	ASIN        string    `json:"asin"`
	ProductName string    `json:"product_name,omitempty"`
	Historical  Aggregate `json:"historical_summary"`
	Forecast    Aggregate `json:"forecast_summary"`
}

// Point is one day of the merged chart data. Current and Future are nil
// when the respective series had no value that day.
type Point struct {
	Date    string   `json:"date"`
	Current *float64 `json:"current,omitempty"`
	Future  *float64 `json:"future,omitempty"`
}

// Graph is the merged, chronologically ordered chart data of a product.
type Graph struct {
	Product string  `json:"product"`
	Points  []Point `json:"points"`
}

// OverviewRow is one product's summary or the reason it is missing.
type OverviewRow struct {
	Product string   `json:"product"`
	Summary *Summary `json:"summary,omitempty"`
	Err     string   `json:"error,omitempty"`
}
