package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"sentidash/internal/dashboard"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageSet struct {
	tmpl   *template.Template
	layout string
}

func mustParsePages(layout string) *pageSet {
	funcs := template.FuncMap{"pathEscape": url.PathEscape}
	tmpl := template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
	return &pageSet{tmpl: tmpl, layout: layout}
}

func (s *DashboardServer) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("rendering page", "page", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// handleIndex is the selection screen. ?product= selects a product and
// shows its summary tables.
func (s *DashboardServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	page := indexPage{Products: s.svc.Products()}

	if product := strings.TrimSpace(r.URL.Query().Get("product")); product != "" {
		st, req := page.State.Select(product)
		sum, err := s.svc.Summary(r.Context(), product)
		page.State = st.ResolveSummary(req, sum, err)
		if page.State.Summary != nil {
			page.Historical = dashboard.SummaryRows(page.State.Summary.Historical, s.pages.layout)
			page.Forecast = dashboard.SummaryRows(page.State.Summary.Forecast, s.pages.layout)
		}
	}

	s.render(w, "index", page)
}

// handleGraphPage is the chart screen for one product.
func (s *DashboardServer) handleGraphPage(w http.ResponseWriter, r *http.Request) {
	product := productParam(r)
	var page graphPage

	st, req := page.State.OpenGraph(product)
	ms, err := s.svc.Graph(r.Context(), product)
	page.State = st.ResolveGraph(req, ms, err)
	page.Rows = dashboard.PointRows(page.State.Series)

	s.render(w, "graph", page)
}
