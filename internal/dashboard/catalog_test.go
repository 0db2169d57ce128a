package dashboard

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"sentidash/internal/upstream"
)

func TestCatalogNormalizes(t *testing.T) {
	c := NewCatalog([]string{" hat ", "Hat", "", "red hat", "kit"})
	got := strings.Join(c.Products(), ",")
	if got != "hat,red hat,kit" {
		t.Errorf("Products() = %q, want hat,red hat,kit", got)
	}
	if !c.Contains("RED HAT") {
		t.Error("Contains should ignore case")
	}
	if c.Contains("socks") {
		t.Error("Contains(socks) = true")
	}
}

func TestCatalogSnapshot(t *testing.T) {
	c := NewCatalog([]string{"hat"})
	snap := c.Products()
	snap[0] = "changed"
	if c.Products()[0] != "hat" {
		t.Error("snapshot aliases catalog storage")
	}
}

func TestCatalogReplace(t *testing.T) {
	c := NewCatalog([]string{"hat"})
	if c.Replace([]string{" ", ""}) {
		t.Error("Replace accepted an empty list")
	}
	if !c.Replace([]string{"kit", "cap"}) {
		t.Fatal("Replace rejected a valid list")
	}
	if strings.Join(c.Products(), ",") != "kit,cap" {
		t.Errorf("Products() = %v", c.Products())
	}
}

type fakeLister struct {
	calls    atomic.Int32
	failures int32
	products []upstream.Product
}

func (f *fakeLister) ListProducts(context.Context) ([]upstream.Product, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errors.New("connection refused")
	}
	return f.products, nil
}

func TestRefreshNowRetries(t *testing.T) {
	c := NewCatalog([]string{"hat"})
	l := &fakeLister{failures: 2, products: []upstream.Product{{ASIN: "B1", Name: "socks"}, {ASIN: "B2", Name: "shirt"}}}
	r := NewRefresher(c, l, quietLog)
	r.delay = 0

	if err := r.RefreshNow(context.Background()); err != nil {
		t.Fatalf("RefreshNow returned error: %v", err)
	}
	if l.calls.Load() != 3 {
		t.Errorf("ListProducts called %d times, want 3", l.calls.Load())
	}
	if strings.Join(c.Products(), ",") != "socks,shirt" {
		t.Errorf("Products() = %v", c.Products())
	}
}

func TestRefreshNowEmptyListKeepsCatalog(t *testing.T) {
	c := NewCatalog([]string{"hat"})
	l := &fakeLister{products: []upstream.Product{{ASIN: "B1"}}}
	r := NewRefresher(c, l, quietLog)
	r.delay = 0

	err := r.RefreshNow(context.Background())
	if !errors.Is(err, errNoProducts) {
		t.Fatalf("RefreshNow error = %v, want errNoProducts", err)
	}
	if l.calls.Load() != 1 {
		t.Errorf("empty list was retried %d times", l.calls.Load())
	}
	if c.Products()[0] != "hat" {
		t.Errorf("catalog changed to %v", c.Products())
	}
}

func TestRefresherStartRejectsBadSpec(t *testing.T) {
	r := NewRefresher(NewCatalog([]string{"hat"}), &fakeLister{}, quietLog)
	if err := r.Start("not a cron spec"); err == nil {
		r.Stop()
		t.Fatal("Start accepted an invalid spec")
	}
}

func TestRefresherStartStop(t *testing.T) {
	r := NewRefresher(NewCatalog([]string{"hat"}), &fakeLister{}, quietLog)
	if err := r.Start("@every 1h"); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	r.Stop()
}
