// Package metrics registers the process-wide Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LeadScoresComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_lead_scores_computed_total",
		Help: "Total number of lead scores computed, labelled by banner.",
	}, []string{"banner"})

	RecomputeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_recompute_failures_total",
		Help: "Derived-state recomputes that failed after the triggering write succeeded.",
	}, []string{"kind"})

	RecomputeRetriesEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_recompute_retries_enqueued_total",
		Help: "Background retry tasks enqueued for failed recomputes.",
	}, []string{"kind"})

	AggregationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crm_aggregation_duration_ms",
		Help:    "Time spent loading and aggregating a report, in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"report"})

	AnalyticsCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crm_analytics_cache_lookups_total",
		Help: "Analytics snapshot cache lookups, labelled by result (hit, miss, error).",
	}, []string{"result"})
)

// Recompute kinds used as label values.
const (
	KindLeadScore = "lead_score"
	KindDealHours = "deal_hours"
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultError   = "error"
)
