// Package httpapi serves the sentiment dashboard over HTTP: the two browser
// screens, a JSON API carrying the same data, and the chart image.
package httpapi

import (
	"time"

	"sentidash/internal/dashboard"
	"sentidash/internal/series"
)

// ProductsJSON is the response of GET /api/products.
type ProductsJSON struct {
	Products  []string  `json:"products"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GraphJSON is the response of GET /api/graph/{product}.
type GraphJSON struct {
	Product string              `json:"product"`
	Points  series.MergedSeries `json:"points"`
}

// OverviewJSON is the response of GET /api/overview.
type OverviewJSON struct {
	Rows []dashboard.OverviewRow `json:"rows"`
}

// HealthJSON is the response of GET /healthz.
type HealthJSON struct {
	Status   string `json:"status"`
	Upstream string `json:"upstream"`
}

// indexPage feeds the "index" template.
type indexPage struct {
	Products   []string
	State      dashboard.State
	Historical []dashboard.Row
	Forecast   []dashboard.Row
}

// graphPage feeds the "graph" template.
type graphPage struct {
	State dashboard.State
	Rows  []dashboard.PointRow
}
