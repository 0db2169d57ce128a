// Package dashboard provides the shared view logic of the sentiment
// dashboard: the fetch-then-merge service, the product catalog, the
// navigation state machine and display formatting. It is used by the web
// server, the gRPC service and the TUI client.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"sentidash/internal/series"
	"sentidash/internal/upstream"
)

// ErrEmptyProduct is returned when a blank product name is requested.
var ErrEmptyProduct = errors.New("dashboard: empty product name")

// Fetcher retrieves raw data from the sentiment API. *upstream.Client
// satisfies it.
type Fetcher interface {
	FetchSummary(ctx context.Context, product string) (*upstream.Summary, error)
	FetchGraph(ctx context.Context, product string) (*upstream.Graph, error)
}

// Service fetches product data and merges graph series.
type Service struct {
	fetcher       Fetcher
	catalog       *Catalog
	mergeOpts     []series.Option
	overviewLimit int
	log           *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMergeOptions sets the options passed to series.Merge.
func WithMergeOptions(opts ...series.Option) ServiceOption {
	return func(s *Service) { s.mergeOpts = append(s.mergeOpts, opts...) }
}

// WithOverviewLimit bounds the concurrent summary fetches of Overview.
func WithOverviewLimit(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.overviewLimit = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a Service over the given fetcher and catalog.
func NewService(f Fetcher, cat *Catalog, opts ...ServiceOption) *Service {
	s := &Service{
		fetcher:       f,
		catalog:       cat,
		overviewLimit: 4,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Catalog returns the product catalog backing the service.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Products returns the current catalog snapshot.
func (s *Service) Products() []string { return s.catalog.Products() }

// Summary fetches the aggregate summary of one product.
func (s *Service) Summary(ctx context.Context, product string) (*upstream.Summary, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, ErrEmptyProduct
	}

	sum, err := s.fetcher.FetchSummary(ctx, product)
	if err != nil {
		s.log.Warn("summary fetch failed", "product", product, "error", err)
		return nil, err
	}
	return sum, nil
}

// Graph fetches both series of a product and merges them by day.
func (s *Service) Graph(ctx context.Context, product string) (series.MergedSeries, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, ErrEmptyProduct
	}

	g, err := s.fetcher.FetchGraph(ctx, product)
	if err != nil {
		s.log.Warn("graph fetch failed", "product", product, "error", err)
		return nil, err
	}

	ms, st := series.MergeWithStats(g.Sentiment, g.Forecast, s.mergeOpts...)
	if st.SkippedDates > 0 || st.SkippedValues > 0 {
		s.log.Info("graph points skipped", "product", product,
			"skipped_dates", st.SkippedDates, "skipped_values", st.SkippedValues)
	}
	s.log.Debug("graph merged", "product", product, "points", st.Merged)
	return ms, nil
}

// OverviewRow is one product's entry in an Overview. Exactly one of Summary
// and Err is set.
type OverviewRow struct {
	Product string            `json:"product"`
	Summary *upstream.Summary `json:"summary,omitempty"`
	Err     string            `json:"error,omitempty"`
}

// Overview fetches the summaries of products concurrently, or of the whole
// catalog when products is empty. Rows keep the input order and a failure
// only affects its own row.
func (s *Service) Overview(ctx context.Context, products []string) []OverviewRow {
	if len(products) == 0 {
		products = s.Products()
	}

	rows := make([]OverviewRow, len(products))
	var g errgroup.Group
	g.SetLimit(s.overviewLimit)

	for i, p := range products {
		g.Go(func() error {
			rows[i].Product = p
			sum, err := s.Summary(ctx, p)
			if err != nil {
				rows[i].Err = fmt.Sprintf("%s: %v", SummaryFailedMessage, err)
				return nil
			}
			rows[i].Summary = sum
			return nil
		})
	}
	_ = g.Wait()
	return rows
}
