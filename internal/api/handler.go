package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/promoengine/internal/config"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/engine"
	"github.com/gyaneshwarpardhi/promoengine/internal/metrics"
)

const maxBodyBytes = 1 << 20

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng    *engine.Service
	loader *config.Loader
	mux    *http.ServeMux
}

// New creates an HTTP handler and registers all routes. Reloads go through
// loader; eng is expected to follow it (see engine.Service.Follow).
func New(eng *engine.Service, loader *config.Loader) http.Handler {
	h := &Handler{eng: eng, loader: loader, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /v1/orders/evaluate", h.evaluateOrder)
	h.mux.HandleFunc("POST /v1/promotions/{id}/evaluate", h.evaluatePromotion)
	h.mux.HandleFunc("GET /v1/promotions", h.listPromotions)
	h.mux.HandleFunc("POST /v1/catalog/reload", h.reloadCatalog)
	h.mux.HandleFunc("GET /healthz", h.healthz)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(h.mux)
}

// evaluateRequest is an order plus an optional candidate filter.
type evaluateRequest struct {
	domain.Order
	PromotionIDs []string `json:"promotion_ids,omitempty"`
}

// POST /v1/orders/evaluate: pick the best promotion for an order.
func (h *Handler) evaluateOrder(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if !decode(w, r, &req) {
		return
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	res, err := h.eng.Evaluate(r.Context(), engine.Request{Order: &req.Order, PromotionIDs: req.PromotionIDs})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /v1/promotions/{id}/evaluate: explain one promotion's rule against an order.
func (h *Handler) evaluatePromotion(w http.ResponseWriter, r *http.Request) {
	var o domain.Order
	if !decode(w, r, &o) {
		return
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	res, err := h.eng.EvaluatePromotion(r.PathValue("id"), &o)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"order_id": o.ID,
		"result":   res,
	})
}

type promotionView struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	RuleID     string   `json:"rule_id"`
	Conditions []string `json:"conditions"`
	Actions    []string `json:"actions"`
}

// GET /v1/promotions: list enabled promotions of the current catalog.
func (h *Handler) listPromotions(w http.ResponseWriter, r *http.Request) {
	cat := h.eng.Catalog()
	views := make([]promotionView, 0, len(cat.Promotions))
	for _, p := range cat.Promotions {
		v := promotionView{
			ID:         p.ID,
			Name:       p.Name,
			RuleID:     p.Rule.ID,
			Conditions: make([]string, 0, len(p.Rule.Conditions)),
			Actions:    make([]string, 0, len(p.Rule.Actions)),
		}
		for _, c := range p.Rule.Conditions {
			v.Conditions = append(v.Conditions, c.String())
		}
		for _, a := range p.Rule.Actions {
			v.Actions = append(v.Actions, a.String())
		}
		views = append(views, v)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"version":    cat.Version,
		"policy":     cat.Policy,
		"disabled":   cat.Disabled(),
		"promotions": views,
	})
}

// POST /v1/catalog/reload: re-read the catalog from disk and swap it in.
func (h *Handler) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	if _, err := h.loader.Reload(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	cat := h.eng.Catalog()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reloaded":         true,
		"version":          cat.Version,
		"promotions_count": len(cat.Promotions),
	})
}

// GET /healthz: always 200 (liveness probe).
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /readyz: 503 if the request queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %s", err))
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrQueueFull):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
