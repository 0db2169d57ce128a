package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"sentidash/internal/chart"
	"sentidash/internal/dashboard"
	"sentidash/internal/upstream"
)

// Pinger checks the upstream API. *upstream.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DashboardServer serves the dashboard screens and JSON API.
type DashboardServer struct {
	svc       *dashboard.Service
	pinger    Pinger
	chartOpts chart.Options
	log       *slog.Logger
	pages     *pageSet
}

// NewDashboardServer creates a new dashboard HTTP server.
func NewDashboardServer(svc *dashboard.Service, pinger Pinger, chartOpts chart.Options, log *slog.Logger) *DashboardServer {
	if log == nil {
		log = slog.Default()
	}
	return &DashboardServer{
		svc:       svc,
		pinger:    pinger,
		chartOpts: chartOpts,
		log:       log,
		pages:     mustParsePages(chartOpts.DateLayout),
	}
}

// RegisterRoutes registers all routes on the given mux.
func (s *DashboardServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /graph/{product}", s.handleGraphPage)

	mux.HandleFunc("GET /api/products", s.handleProducts)
	mux.HandleFunc("GET /api/overview", s.handleOverview)
	mux.HandleFunc("GET /api/summary/{product}", s.handleSummary)
	mux.HandleFunc("GET /api/graph/{product}", s.handleGraph)
	mux.HandleFunc("GET /api/graph/{product}/chart.png", s.handleChart)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with CORS, request ID and logging
// middleware.
func (s *DashboardServer) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return corsMiddleware(requestIDMiddleware(loggingMiddleware(s.log, mux)))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func productParam(r *http.Request) string {
	return strings.TrimSpace(r.PathValue("product"))
}

// --- JSON API ---

func (s *DashboardServer) handleProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, ProductsJSON{
		Products:  s.svc.Products(),
		UpdatedAt: s.svc.Catalog().UpdatedAt(),
	})
}

func (s *DashboardServer) handleOverview(w http.ResponseWriter, r *http.Request) {
	var products []string
	if q := r.URL.Query().Get("products"); q != "" {
		products = strings.Split(q, ",")
	}
	writeJSON(w, OverviewJSON{Rows: s.svc.Overview(r.Context(), products)})
}

func (s *DashboardServer) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Summary(r.Context(), productParam(r))
	switch {
	case errors.Is(err, dashboard.ErrEmptyProduct):
		writeError(w, http.StatusBadRequest, "missing product")
	case errors.Is(err, upstream.ErrNotFound):
		writeError(w, http.StatusNotFound, dashboard.SummaryFailedMessage)
	case err != nil:
		writeError(w, http.StatusBadGateway, dashboard.SummaryFailedMessage)
	default:
		writeJSON(w, sum)
	}
}

func (s *DashboardServer) handleGraph(w http.ResponseWriter, r *http.Request) {
	product := productParam(r)
	ms, err := s.svc.Graph(r.Context(), product)
	switch {
	case errors.Is(err, dashboard.ErrEmptyProduct):
		writeError(w, http.StatusBadRequest, "missing product")
	case err != nil:
		writeError(w, http.StatusBadGateway, dashboard.GraphFailedMessage)
	default:
		writeJSON(w, GraphJSON{Product: product, Points: ms})
	}
}

func (s *DashboardServer) handleChart(w http.ResponseWriter, r *http.Request) {
	product := productParam(r)
	ms, err := s.svc.Graph(r.Context(), product)
	switch {
	case errors.Is(err, dashboard.ErrEmptyProduct):
		writeError(w, http.StatusBadRequest, "missing product")
		return
	case err != nil:
		writeError(w, http.StatusBadGateway, dashboard.GraphFailedMessage)
		return
	}

	opts := s.chartOpts
	opts.Title = product
	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, ms, opts); err != nil {
		s.log.Error("rendering chart", "product", product, "error", err)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	buf.WriteTo(w)
}

func (s *DashboardServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := s.pinger.Ping(ctx); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(HealthJSON{Status: "degraded", Upstream: err.Error()})
		return
	}
	writeJSON(w, HealthJSON{Status: "ok", Upstream: "ok"})
}
