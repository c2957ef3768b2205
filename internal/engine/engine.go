package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gyaneshwarpardhi/promoengine/internal/config"
	"github.com/gyaneshwarpardhi/promoengine/internal/domain"
	"github.com/gyaneshwarpardhi/promoengine/internal/metrics"
	"github.com/gyaneshwarpardhi/promoengine/internal/promotion"
)

// ErrQueueFull is returned when the request queue cannot take more work.
var ErrQueueFull = errors.New("request queue full")

// Request asks for the best promotion for one order. An empty PromotionIDs
// means every enabled promotion in the catalog is a candidate.
type Request struct {
	Order        *domain.Order
	PromotionIDs []string
}

// Response is the outcome of one Request.
type Response struct {
	OrderID        string              `json:"order_id"`
	CatalogVersion string              `json:"catalog_version"`
	DurationMs     float64             `json:"duration_ms"`
	Selection      promotion.Selection `json:"selection"`
}

// Service evaluates orders against the current catalog.
type Service struct {
	catalog atomic.Pointer[config.Catalog]
	pool    *workerPool[*work]
	conf    config.EngineConf
}

type work struct {
	ctx     context.Context
	req     Request
	resultC chan result
}

type result struct {
	resp *Response
	err  error
}

// New creates a Service over cat using conf and starts the request workers.
func New(ctx context.Context, cat *config.Catalog, conf config.EngineConf) *Service {
	s := &Service{conf: conf}
	s.catalog.Store(cat)
	s.pool = newWorkerPool(
		ctx,
		conf.RequestWorkers,
		conf.QueueDepth,
		func(_ context.Context, w *work) {
			resp, err := s.evaluate(w.ctx, w.req)
			w.resultC <- result{resp: resp, err: err}
		},
	)
	return s
}

// SwapCatalog atomically replaces the catalog (used on hot-reload).
// Requests already running finish against the catalog they started with.
func (s *Service) SwapCatalog(cat *config.Catalog) {
	s.catalog.Store(cat)
}

// ApplyConfig builds a catalog from cfg and swaps it in. On error the current
// catalog stays in place.
func (s *Service) ApplyConfig(cfg *config.CatalogConfig, reg config.Registries) (*config.Catalog, error) {
	cat, err := config.Build(cfg, reg)
	if err != nil {
		metrics.CatalogReloads.WithLabelValues("error").Inc()
		return nil, err
	}
	s.SwapCatalog(cat)
	metrics.CatalogReloads.WithLabelValues("success").Inc()
	slog.Info("catalog applied", "version", cat.Version, "promotions", len(cat.Promotions), "disabled", cat.Disabled())
	return cat, nil
}

// Follow applies every config l reloads. A config that fails to build is
// rejected and the loader keeps its previous one.
func (s *Service) Follow(l *config.Loader, reg config.Registries) {
	l.OnChange(func(cfg *config.CatalogConfig) error {
		_, err := s.ApplyConfig(cfg, reg)
		return err
	})
}

// Catalog returns the catalog new requests will use.
func (s *Service) Catalog() *config.Catalog {
	return s.catalog.Load()
}

// Evaluate queues req and waits for its result. It fails fast with
// ErrQueueFull when the queue is saturated.
func (s *Service) Evaluate(ctx context.Context, req Request) (*Response, error) {
	if req.Order == nil {
		return nil, fmt.Errorf("order is required: %w", domain.ErrInvalidConfiguration)
	}
	if err := req.Order.Validate(); err != nil {
		return nil, err
	}

	timeout := time.Duration(s.conf.RequestTimeoutMs) * time.Millisecond
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	w := &work{ctx: ctx, req: req, resultC: make(chan result, 1)}
	if !s.pool.Submit(w) {
		metrics.RequestsDropped.Inc()
		return nil, fmt.Errorf("%w (capacity %d)", ErrQueueFull, s.conf.QueueDepth)
	}
	metrics.RequestsEnqueued.Inc()
	metrics.QueueUtilization.Set(s.QueueUtilization())

	select {
	case r := <-w.resultC:
		return r.resp, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("evaluation timeout after %v: %w", timeout, ctx.Err())
		}
		return nil, ctx.Err()
	}
}

// EvaluatePromotion runs a single enabled promotion against o, bypassing the
// queue. Unknown ids fail with domain.ErrNotFound.
func (s *Service) EvaluatePromotion(id string, o *domain.Order) (*promotion.Result, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	cat := s.catalog.Load()
	p, ok := cat.Promotion(id)
	if !ok {
		return nil, fmt.Errorf("promotion %s: %w", id, domain.ErrNotFound)
	}
	res := promotion.Evaluate(p, o, cat.Context())
	observeRule(res)
	return &res, nil
}

// QueueUtilization returns queue used / capacity (0 to 1).
func (s *Service) QueueUtilization() float64 {
	if s.pool.QueueCap() == 0 {
		return 0
	}
	return float64(s.pool.QueueLen()) / float64(s.pool.QueueCap())
}

// Shutdown drains the request pool gracefully.
func (s *Service) Shutdown() {
	s.pool.Drain()
}

func (s *Service) evaluate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	cat := s.catalog.Load()

	candidates, err := cat.Candidates(req.PromotionIDs)
	if err != nil {
		return nil, err
	}
	evalCtx := cat.Context()

	// Candidates are independent; each writes only its own slot so the
	// reported order matches the candidate order.
	results := make([]promotion.Result, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, s.conf.EvaluationConcurrency))
	for i, p := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = promotion.Evaluate(p, req.Order, evalCtx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sel := promotion.Choose(candidates, results, cat.Policy)
	elapsed := time.Since(start)

	metrics.Evaluations.Inc()
	metrics.EvaluationDuration.Observe(float64(elapsed.Microseconds()) / 1000)
	for i := range results {
		observeRule(results[i])
	}
	if id, ok := sel.Best(); ok {
		metrics.Selections.WithLabelValues(id).Inc()
	} else {
		metrics.Selections.WithLabelValues("none").Inc()
	}

	return &Response{
		OrderID:        req.Order.ID,
		CatalogVersion: cat.Version,
		DurationMs:     float64(elapsed.Microseconds()) / 1000,
		Selection:      sel,
	}, nil
}

func observeRule(r promotion.Result) {
	switch {
	case r.Error != "":
		metrics.RulesEvaluated.WithLabelValues("error").Inc()
	case r.Result != nil && r.Result.Applicable:
		metrics.RulesEvaluated.WithLabelValues("applicable").Inc()
	default:
		metrics.RulesEvaluated.WithLabelValues("not_applicable").Inc()
	}
}
