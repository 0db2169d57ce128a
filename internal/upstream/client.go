package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxBodyBytes = 8 << 20

// Limiter paces outgoing requests. *util.RateLimiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Client talks to the sentiment API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    Limiter
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithRateLimiter makes every request wait on l first.
func WithRateLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was created with.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchSummary posts the product name to /product_summary. A 404 or an
// error body maps to ErrNotFound.
func (c *Client) FetchSummary(ctx context.Context, product string) (*Summary, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, fmt.Errorf("fetch summary: %w", ErrNotFound)
	}

	payload, err := json.Marshal(map[string]string{"product_name": product})
	if err != nil {
		return nil, fmt.Errorf("fetch summary: %w", err)
	}
	status, body, err := c.do(ctx, http.MethodPost, "/product_summary", payload)
	if err != nil {
		return nil, fmt.Errorf("fetch summary %q: %w", product, err)
	}
	if status == http.StatusNotFound || status == http.StatusBadRequest {
		return nil, fmt.Errorf("fetch summary %q: %w: %s", product, ErrNotFound, apiMessage(body))
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("fetch summary %q: status %d: %s", product, status, apiMessage(body))
	}

	var resp struct {
		Summary
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("fetch summary %q: decode: %w", product, err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("fetch summary %q: %w: %s", product, ErrNotFound, resp.Error)
	}
	return &resp.Summary, nil
}

// FetchGraph retrieves both raw series for a product. Every failure wraps
// ErrLoadFailed; an unknown product also wraps ErrNotFound.
func (c *Client) FetchGraph(ctx context.Context, product string) (*Graph, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return nil, fmt.Errorf("fetch graph: %w: %w", ErrLoadFailed, ErrNotFound)
	}

	status, body, err := c.do(ctx, http.MethodGet, "/graph/"+url.PathEscape(product), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch graph %q: %w: %w", product, ErrLoadFailed, err)
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("fetch graph %q: %w: %w", product, ErrLoadFailed, ErrNotFound)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("fetch graph %q: %w: status %d: %s", product, ErrLoadFailed, status, apiMessage(body))
	}

	g, err := decodeGraph(body)
	if err != nil {
		return nil, fmt.Errorf("fetch graph %q: %w: decode: %w", product, ErrLoadFailed, err)
	}
	c.log.Debug("graph fetched", "product", product,
		"sentiment", len(g.Sentiment), "forecast", len(g.Forecast))
	return g, nil
}

// ListProducts returns the products the API can serve.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("list products: status %d: %s", status, apiMessage(body))
	}

	var resp struct {
		Count    int       `json:"count"`
		Products []Product `json:"products"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("list products: decode: %w", err)
	}
	return resp.Products, nil
}

// Ping checks that the API root answers.
func (c *Client) Ping(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if status/100 != 2 {
		return fmt.Errorf("ping: status %d: %s", status, apiMessage(body))
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return 0, nil, fmt.Errorf("rate limit: %w", err)
		}
	}
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn("upstream request failed", "method", method, "path", path, "error", err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read body: %w", err)
	}
	c.log.Debug("upstream request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return resp.StatusCode, body, nil
}

// apiMessage extracts the {"error": ...} text the API sends on failure.
func apiMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		return e.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strings.TrimSpace(string(body))
}
