package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/guregu/null/v6"
	"github.com/spf13/cobra"

	"sentidash/internal/dashboard"
	"sentidash/internal/series"
	"sentidash/internal/upstream"
	"sentidash/pkg/sentidash"
)

const defaultAddr = "localhost:9090"

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// app holds the global flags and the way commands reach the server.
type app struct {
	addr    string
	timeout time.Duration
	json    bool
	layout  string
	connect func(addr string) (*sentidash.Client, error)
}

func newApp() *app {
	return &app{
		connect: func(addr string) (*sentidash.Client, error) { return sentidash.Dial(addr) },
	}
}

// withClient connects, runs fn under the command timeout and closes the
// connection.
func (a *app) withClient(cmd *cobra.Command, fn func(ctx context.Context, c *sentidash.Client) error) error {
	c, err := a.connect(a.addr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()
	return fn(ctx, c)
}

func newRootCmd(a *app) *cobra.Command {
	addr := os.Getenv("SENTIDASH_ADDR")
	if addr == "" {
		addr = defaultAddr
	}

	root := &cobra.Command{
		Use:           "sentidash-cli",
		Short:         "Query product sentiment from a sentidash server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.addr, "addr", addr, "sentidash-server gRPC address (env SENTIDASH_ADDR)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 15*time.Second, "request timeout")
	root.PersistentFlags().BoolVar(&a.json, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&a.layout, "date-layout", series.DefaultDisplayLayout, "layout for dates in summaries")

	root.AddCommand(
		newVersionCmd(),
		newProductsCmd(a),
		newSummaryCmd(a),
		newGraphCmd(a),
		newReportCmd(a),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sentidash-cli %s\n", version)
		},
	}
}

func newProductsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "products",
		Short: "List the server's product catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *sentidash.Client) error {
				products, err := c.Products(ctx)
				if err != nil {
					return fmt.Errorf("listing products: %w", err)
				}
				w := cmd.OutOrStdout()
				if a.json {
					return writeJSON(w, products)
				}
				for _, p := range products {
					fmt.Fprintln(w, p)
				}
				return nil
			})
		},
	}
}

func newSummaryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "summary <product>",
		Short: "Show a product's historical and forecast summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *sentidash.Client) error {
				sum, err := c.Summary(ctx, args[0])
				if sentidash.IsNotFound(err) {
					return fmt.Errorf("product %q not found", args[0])
				}
				if err != nil {
					return fmt.Errorf("fetching summary: %w", err)
				}
				w := cmd.OutOrStdout()
				if a.json {
					return writeJSON(w, sum)
				}
				printSummary(w, args[0], sum, a.layout)
				return nil
			})
		},
	}
}

func newGraphCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "graph <product>",
		Short: "Show a product's merged sentiment and forecast series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *sentidash.Client) error {
				g, err := c.Graph(ctx, args[0])
				if err != nil {
					return fmt.Errorf("fetching graph: %w", err)
				}
				w := cmd.OutOrStdout()
				if a.json {
					return writeJSON(w, g)
				}
				printGraph(w, g)
				return nil
			})
		},
	}
}

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Summarise every product in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withClient(cmd, func(ctx context.Context, c *sentidash.Client) error {
				rows, err := c.Overview(ctx)
				if err != nil {
					return fmt.Errorf("fetching overview: %w", err)
				}
				w := cmd.OutOrStdout()
				if a.json {
					return writeJSON(w, rows)
				}
				printReport(w, rows)
				return nil
			})
		},
	}
}

// --- Output ---

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSummary(w io.Writer, product string, s *sentidash.Summary, layout string) {
	fmt.Fprintln(w, titleStyle.Render(product+" Summary"))
	fmt.Fprintf(w, "ASIN: %s\n\n", dashboard.FormatText(s.ASIN))
	printRows(w, "Historical", dashboard.SummaryRows(toAggregate(s.Historical), layout))
	fmt.Fprintln(w)
	printRows(w, "Forecast", dashboard.SummaryRows(toAggregate(s.Forecast), layout))
}

func printRows(w io.Writer, title string, rows []dashboard.Row) {
	fmt.Fprintln(w, headStyle.Render(title))
	for _, r := range rows {
		fmt.Fprintf(w, "  %-12s %s\n", r.Label, r.Value)
	}
}

func printGraph(w io.Writer, g *sentidash.Graph) {
	if len(g.Points) == 0 {
		fmt.Fprintln(w, "No data points for this product.")
		return
	}
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%-12s %18s %18s", "Date", "Current Sentiment", "Future Prediction")))
	for _, p := range g.Points {
		fmt.Fprintf(w, "%-12s %18s %18s\n",
			p.Date,
			dashboard.FormatScore(null.FloatFromPtr(p.Current)),
			dashboard.FormatScore(null.FloatFromPtr(p.Future)),
		)
	}
}

func printReport(w io.Writer, rows []sentidash.OverviewRow) {
	fmt.Fprintln(w, headStyle.Render(fmt.Sprintf("%-28s %10s %10s  %-14s %s", "Product", "Average", "Latest", "Trend", "Prediction")))
	for _, r := range rows {
		if r.Summary == nil {
			fmt.Fprintf(w, "%-28s %s\n", r.Product, errStyle.Render(r.Err))
			continue
		}
		h := toAggregate(r.Summary.Historical)
		fmt.Fprintf(w, "%-28s %10s %10s  %-14s %s\n",
			r.Product,
			dashboard.FormatScore(h.Average),
			dashboard.FormatScore(h.Latest),
			dashboard.FormatTrend(h.Trend),
			dashboard.FormatText(r.Summary.Forecast.Prediction),
		)
	}
}

// toAggregate maps an SDK aggregate onto the type the dashboard formatters
// take.
func toAggregate(a sentidash.Aggregate) upstream.Aggregate {
	out := upstream.Aggregate{
		Label:      a.Label,
		Average:    null.FloatFromPtr(a.Average),
		Latest:     null.FloatFromPtr(a.Latest),
		Trend:      a.Trend,
		Prediction: a.Prediction,
		Message:    a.Message,
	}
	if a.Max != nil {
		out.Max = &upstream.Extreme{Value: a.Max.Value, Date: a.Max.Date}
	}
	if a.Min != nil {
		out.Min = &upstream.Extreme{Value: a.Min.Value, Date: a.Min.Date}
	}
	return out
}
