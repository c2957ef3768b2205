package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/promoengine/internal/api"
	"github.com/gyaneshwarpardhi/promoengine/internal/config"
	"github.com/gyaneshwarpardhi/promoengine/internal/engine"
)

const orderJSON = `{
	"distributor_id": "DIST-01",
	"date": "2025-03-15T10:30:00Z",
	"items": [
		{"product_id": "PROD-001", "quantity": 10, "unit_price": 2000},
		{"product_id": "PROD-002", "quantity": 10, "unit_price": "2500"}
	]
}`

type env struct {
	handler http.Handler
	path    string
	svc     *engine.Service
}

func setup(t *testing.T) *env {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "configs", "catalog.yaml"))
	if err != nil {
		t.Fatalf("read catalog: %v", err)
	}
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loader, err := config.NewLoader(path)
	if err != nil {
		t.Fatalf("NewLoader error: %v", err)
	}
	reg := config.DefaultRegistries()
	cat, err := config.Build(loader.Config(), reg)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	svc := engine.New(ctx, cat, loader.Config().Engine)
	svc.Follow(loader, reg)
	t.Cleanup(func() {
		cancel()
		svc.Shutdown()
	})
	return &env{handler: api.New(svc, loader), path: path, svc: svc}
}

func (e *env) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response: %v\n%s", err, rec.Body.String())
	}
}

func TestEvaluateOrder(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodPost, "/v1/orders/evaluate", orderJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OrderID   string `json:"order_id"`
		Selection struct {
			BestID  *string `json:"best_id"`
			Results []struct {
				PromotionID string `json:"promotion_id"`
				Result      struct {
					Applicable bool `json:"applicable"`
					Trace      []struct {
						Detail string `json:"detail"`
					} `json:"trace"`
				} `json:"result"`
			} `json:"results"`
		} `json:"selection"`
	}
	decodeBody(t, rec, &resp)

	if _, err := uuid.Parse(resp.OrderID); err != nil {
		t.Errorf("order without id should get a uuid, got %q", resp.OrderID)
	}
	if resp.Selection.BestID == nil || *resp.Selection.BestID != "CHAI-MARCH" {
		t.Errorf("best_id = %v, want CHAI-MARCH", resp.Selection.BestID)
	}
	if len(resp.Selection.Results) != 4 {
		t.Fatalf("results = %d, want 4", len(resp.Selection.Results))
	}
	if got := resp.Selection.Results[0].Result.Trace[0].Detail; got != "order value 45000 >= 40000: pass" {
		t.Errorf("first trace detail = %q", got)
	}
}

func TestEvaluateOrder_Errors(t *testing.T) {
	e := setup(t)
	cases := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"items": [`, want: http.StatusBadRequest},
		{name: "no items", body: `{"id": "O1", "distributor_id": "DIST-01", "items": []}`, want: http.StatusBadRequest},
		{
			name: "unknown promotion filter",
			body: `{"distributor_id": "DIST-01", "items": [{"product_id": "PROD-001", "quantity": 1, "unit_price": 1}], "promotion_ids": ["NOPE"]}`,
			want: http.StatusNotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/v1/orders/evaluate", tc.body)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tc.want, rec.Body.String())
			}
			var body map[string]string
			decodeBody(t, rec, &body)
			if body["error"] == "" {
				t.Error("error envelope missing")
			}
		})
	}
}

func TestEvaluatePromotion(t *testing.T) {
	e := setup(t)

	rec := e.do(t, http.MethodPost, "/v1/promotions/NORTH-FLAT/evaluate", orderJSON)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Result struct {
			PromotionID string `json:"promotion_id"`
			Result      struct {
				Applicable bool `json:"applicable"`
				Trace      []struct {
					ConditionKind string `json:"condition_kind"`
					Passed        bool   `json:"passed"`
				} `json:"trace"`
			} `json:"result"`
		} `json:"result"`
	}
	decodeBody(t, rec, &resp)
	if resp.Result.PromotionID != "NORTH-FLAT" || !resp.Result.Result.Applicable || len(resp.Result.Result.Trace) != 2 {
		t.Errorf("unexpected body %s", rec.Body.String())
	}

	if rec := e.do(t, http.MethodPost, "/v1/promotions/NOPE/evaluate", orderJSON); rec.Code != http.StatusNotFound {
		t.Errorf("unknown promotion status = %d, want 404", rec.Code)
	}
	if rec := e.do(t, http.MethodPost, "/v1/promotions/SNACK-TRIAL/evaluate", orderJSON); rec.Code != http.StatusNotFound {
		t.Errorf("disabled promotion status = %d, want 404", rec.Code)
	}
}

func TestListPromotions(t *testing.T) {
	e := setup(t)
	rec := e.do(t, http.MethodGet, "/v1/promotions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Version    string `json:"version"`
		Disabled   int    `json:"disabled"`
		Promotions []struct {
			ID      string   `json:"id"`
			Actions []string `json:"actions"`
		} `json:"promotions"`
	}
	decodeBody(t, rec, &resp)
	if resp.Version != "2025-03" || resp.Disabled != 1 || len(resp.Promotions) != 4 {
		t.Errorf("unexpected listing %s", rec.Body.String())
	}
	if resp.Promotions[0].ID != "CHAI-MARCH" || len(resp.Promotions[0].Actions) != 1 {
		t.Errorf("first promotion = %+v", resp.Promotions[0])
	}
}

func TestReloadCatalog(t *testing.T) {
	e := setup(t)

	data, err := os.ReadFile(e.path)
	if err != nil {
		t.Fatal(err)
	}
	updated := strings.Replace(string(data), `version: "2025-03"`, `version: "2025-04"`, 1)
	if err := os.WriteFile(e.path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := e.do(t, http.MethodPost, "/v1/catalog/reload", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := e.svc.Catalog().Version; got != "2025-04" {
		t.Errorf("catalog version = %q, want 2025-04", got)
	}

	broken := strings.Replace(updated, "percent: 10,", "percent: 150,", 1)
	if err := os.WriteFile(e.path, []byte(broken), 0o644); err != nil {
		t.Fatal(err)
	}
	rec = e.do(t, http.MethodPost, "/v1/catalog/reload", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("broken catalog status = %d, want 422", rec.Code)
	}
	if got := e.svc.Catalog().Version; got != "2025-04" {
		t.Errorf("broken reload must keep the previous catalog, got %q", got)
	}
}

func TestProbes(t *testing.T) {
	e := setup(t)
	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		if rec := e.do(t, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rec.Code)
		}
	}
	if rec := e.do(t, http.MethodGet, "/v1/orders/evaluate", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET on POST route status = %d, want 405", rec.Code)
	}
}
