package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/gyaneshwarpardhi/promoengine/internal/config"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/engine"
	"github.com/gyaneshwarpardhi/promoengine/internal/fixture"
)

func loadCatalog(t *testing.T) (*config.Catalog, config.EngineConf) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "configs", "catalog.yaml"))
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	cfg, err := config.Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	cat, err := config.Build(cfg, config.DefaultRegistries())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	return cat, cfg.Engine
}

func newService(t *testing.T) *engine.Service {
	t.Helper()
	cat, conf := loadCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	svc := engine.New(ctx, cat, conf)
	t.Cleanup(func() {
		cancel()
		svc.Shutdown()
	})
	return svc
}

func TestEvaluate_PicksBestAcrossCatalog(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Evaluate(context.Background(), engine.Request{Order: fixture.BrandOneOrder()})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	best, ok := resp.Selection.Best()
	if !ok || best != "CHAI-MARCH" {
		t.Fatalf("best = %q (%v), want CHAI-MARCH", best, ok)
	}
	if resp.OrderID != "ORD-A" || resp.CatalogVersion != "2025-03" {
		t.Errorf("response header = %q, %q", resp.OrderID, resp.CatalogVersion)
	}

	wantOrder := []string{"CHAI-MARCH", "NORTH-FLAT", "KAAPI-GIFT", "BREAKFAST-BUNDLE"}
	wantEffect := []int64{4500, 3000, 1500, 0}
	if len(resp.Selection.Results) != len(wantOrder) {
		t.Fatalf("results = %d, want %d", len(resp.Selection.Results), len(wantOrder))
	}
	for i, r := range resp.Selection.Results {
		if r.PromotionID != wantOrder[i] {
			t.Errorf("results[%d] = %s, want %s", i, r.PromotionID, wantOrder[i])
		}
		if !r.Result.Applicable {
			t.Errorf("%s should be applicable: %+v", r.PromotionID, r.Result.Trace)
		}
		if got := r.Result.TotalEffect(); !got.Equal(decimal.NewFromInt(wantEffect[i])) {
			t.Errorf("%s effect = %s, want %d", r.PromotionID, got, wantEffect[i])
		}
	}
}

func TestEvaluate_CandidateFilter(t *testing.T) {
	svc := newService(t)

	resp, err := svc.Evaluate(context.Background(), engine.Request{
		Order:        fixture.BrandOneOrder(),
		PromotionIDs: []string{"KAAPI-GIFT", "NORTH-FLAT"},
	})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if best, _ := resp.Selection.Best(); best != "NORTH-FLAT" {
		t.Errorf("best = %q, want NORTH-FLAT", best)
	}
	if len(resp.Selection.Results) != 2 || resp.Selection.Results[0].PromotionID != "KAAPI-GIFT" {
		t.Errorf("results must follow the requested order: %+v", resp.Selection.Results)
	}

	_, err = svc.Evaluate(context.Background(), engine.Request{
		Order:        fixture.BrandOneOrder(),
		PromotionIDs: []string{"SNACK-TRIAL"},
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("disabled promotion: expected ErrNotFound, got %v", err)
	}
}

func TestEvaluate_RejectsInvalidOrder(t *testing.T) {
	svc := newService(t)
	cases := map[string]engine.Request{
		"nil order":     {},
		"no items":      {Order: &domain.Order{ID: "X", DistributorID: "DIST-01"}},
		"zero quantity": {Order: &domain.Order{ID: "X", Items: []domain.LineItem{fixture.Line("PROD-001", 0, 10)}}},
	}
	for name, req := range cases {
		if _, err := svc.Evaluate(context.Background(), req); !errors.Is(err, domain.ErrInvalidConfiguration) {
			t.Errorf("%s: expected ErrInvalidConfiguration, got %v", name, err)
		}
	}
}

func TestEvaluate_ConcurrentFanOutIsDeterministic(t *testing.T) {
	svc := newService(t)
	decimalEqual := cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

	first, err := svc.Evaluate(context.Background(), engine.Request{Order: fixture.BrandOneOrder()})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	for i := 0; i < 25; i++ {
		again, err := svc.Evaluate(context.Background(), engine.Request{Order: fixture.BrandOneOrder()})
		if err != nil {
			t.Fatalf("Evaluate error: %v", err)
		}
		if diff := cmp.Diff(first.Selection, again.Selection, decimalEqual); diff != "" {
			t.Fatalf("run %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestEvaluatePromotion(t *testing.T) {
	svc := newService(t)

	res, err := svc.EvaluatePromotion("BREAKFAST-BUNDLE", fixture.BrandOneOrder())
	if err != nil {
		t.Fatalf("EvaluatePromotion error: %v", err)
	}
	if !res.Result.Applicable || len(res.Result.AppliedActions) != 1 {
		t.Fatalf("unexpected result %+v", res.Result)
	}
	if got := res.Result.AppliedActions[0]; !got.NumericEffect.IsZero() {
		t.Errorf("bundle without PROD-003 should have no effect, got %s", got.NumericEffect)
	}

	if _, err := svc.EvaluatePromotion("NOPE", fixture.BrandOneOrder()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSwapCatalog(t *testing.T) {
	svc := newService(t)
	cfg, err := config.Parse([]byte(`
version: "swapped"
hierarchies:
  organization: [{ id: DIST-01, level: distributor }]
  products: [{ id: PROD-001, level: sku }, { id: PROD-002, level: sku }]
promotions:
  - id: ONLY
    enabled: true
    rule:
      actions: [{ type: fixed_discount, params: { amount: 1 } }]
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	cat, err := config.Build(cfg, config.DefaultRegistries())
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	svc.SwapCatalog(cat)

	resp, err := svc.Evaluate(context.Background(), engine.Request{Order: fixture.BrandOneOrder()})
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if best, _ := resp.Selection.Best(); resp.CatalogVersion != "swapped" || best != "ONLY" {
		t.Errorf("after swap: version %q, best %q", resp.CatalogVersion, best)
	}
}
