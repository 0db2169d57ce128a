package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"sentidash/internal/upstream"
	"sentidash/internal/util"
)

// Catalog is the enumerated list of selectable products. Reads return
// snapshots; Replace swaps the whole list.
type Catalog struct {
	mu       sync.RWMutex
	products []string
	updated  time.Time
}

// NewCatalog creates a catalog from products, dropping blanks and
// case-insensitive duplicates.
func NewCatalog(products []string) *Catalog {
	return &Catalog{products: normalizeProducts(products), updated: time.Now()}
}

// Products returns a copy of the current list.
func (c *Catalog) Products() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.products)
}

// Contains reports whether product is listed, ignoring case and surrounding
// space.
func (c *Catalog) Contains(product string) bool {
	key := strings.ToLower(strings.TrimSpace(product))
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.products {
		if strings.ToLower(p) == key {
			return true
		}
	}
	return false
}

// Replace swaps in a new list. An empty list is ignored and reported as
// false.
func (c *Catalog) Replace(products []string) bool {
	next := normalizeProducts(products)
	if len(next) == 0 {
		return false
	}
	c.mu.Lock()
	c.products = next
	c.updated = time.Now()
	c.mu.Unlock()
	return true
}

// UpdatedAt returns when the list was last set.
func (c *Catalog) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}

func normalizeProducts(products []string) []string {
	out := make([]string, 0, len(products))
	seen := make(map[string]bool, len(products))
	for _, p := range products {
		p = strings.TrimSpace(p)
		key := strings.ToLower(p)
		if p == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// --- Refresh ---

// Lister lists the products the API serves. *upstream.Client satisfies it.
type Lister interface {
	ListProducts(ctx context.Context) ([]upstream.Product, error)
}

var errNoProducts = errors.New("product list is empty")

// Refresher replaces the catalog with the API's product list, on demand or
// on a cron schedule.
type Refresher struct {
	catalog  *Catalog
	lister   Lister
	log      *slog.Logger
	cron     *cron.Cron
	attempts int
	delay    time.Duration
	timeout  time.Duration
}

// NewRefresher creates a refresher retrying each refresh three times.
func NewRefresher(cat *Catalog, l Lister, log *slog.Logger) *Refresher {
	if log == nil {
		log = slog.Default()
	}
	return &Refresher{
		catalog:  cat,
		lister:   l,
		log:      log,
		attempts: 3,
		delay:    time.Second,
		timeout:  30 * time.Second,
	}
}

// RefreshNow fetches the product list and replaces the catalog. An empty
// list is an error and leaves the catalog untouched.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	var names []string
	err := util.Retry(ctx, r.attempts, r.delay, func(ctx context.Context) error {
		products, err := r.lister.ListProducts(ctx)
		if err != nil {
			return err
		}
		names = names[:0]
		for _, p := range products {
			names = append(names, p.Name)
		}
		if len(normalizeProducts(names)) == 0 {
			return util.Permanent(errNoProducts)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}

	r.catalog.Replace(names)
	r.log.Info("catalog refreshed", "products", len(r.catalog.Products()))
	return nil
}

// Start schedules RefreshNow using a standard five-field cron spec.
func (r *Refresher) Start(spec string) error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(spec, r.scheduledRefresh); err != nil {
		return fmt.Errorf("register catalog refresh: %w", err)
	}
	r.cron.Start()
	r.log.Info("catalog refresh scheduled", "cron", spec)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
	r.log.Info("catalog refresh stopped")
}

func (r *Refresher) scheduledRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if err := r.RefreshNow(ctx); err != nil {
		r.log.Warn("scheduled catalog refresh failed", "error", err)
	}
}
