package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promoengine_requests_enqueued_total",
		Help: "Total number of evaluation requests placed on the processing queue.",
	})

	RequestsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promoengine_requests_dropped_total",
		Help: "Total number of evaluation requests rejected due to a full queue.",
	})

	Evaluations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "promoengine_evaluations_total",
		Help: "Total number of orders evaluated against a candidate set.",
	})

	RulesEvaluated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoengine_rules_evaluated_total",
		Help: "Rule evaluations, labelled by outcome (applicable, not_applicable, error).",
	}, []string{"outcome"})

	Selections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoengine_selections_total",
		Help: "Best-promotion selections, labelled by promotion ID (\"none\" when nothing applied).",
	}, []string{"promotion_id"})

	EvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "promoengine_evaluation_duration_ms",
		Help:    "End-to-end order evaluation latency in milliseconds.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000},
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "promoengine_queue_utilization_ratio",
		Help: "Current request queue utilization (0 to 1).",
	})

	CatalogReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "promoengine_catalog_reloads_total",
		Help: "Catalog reload attempts, labelled by status (success, error).",
	}, []string{"status"})
)
