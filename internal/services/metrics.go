// Package services – Prometheus instrumentation for the two batch/pipeline
// components. Label cardinality is bounded: pipeline outcomes use the small
// fixed set of terminal codes, aggregation counters carry no labels at all
// (per-tenant detail belongs in logs and the job summary, not in metrics).
package services

import "github.com/prometheus/client_golang/prometheus"

// metricsNamespace matches the HTTP middleware collectors, so the whole
// service scrapes under a single "crm_" prefix.
const metricsNamespace = "crm"

var (
	// aiOutcomes counts AI pipeline invocations by terminal code
	// (SUCCESS, AI_DISABLED, LIMIT_EXCEEDED, TIMEOUT, RATE_LIMIT, ERROR,
	// VALIDATION_FAILED, INAPPROPRIATE_CONTENT).
	aiOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "ai_pipeline_outcomes_total",
			Help:      "Total AI response pipeline invocations by terminal code.",
		},
		[]string{"code"},
	)

	// aiResponseSeconds records end-to-end pipeline latency including the
	// external model call.
	aiResponseSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "ai_pipeline_duration_seconds",
			Help:      "Duration of AI response pipeline invocations in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 45},
		},
	)

	// aggregationRuns counts completed aggregation job runs.
	aggregationRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "aggregation_runs_total",
			Help:      "Total completed daily aggregation runs.",
		},
	)

	// aggregationOrgResults counts per-organization aggregation outcomes.
	aggregationOrgResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "aggregation_organizations_total",
			Help:      "Per-organization daily aggregation outcomes.",
		},
		[]string{"result"}, // "success" | "error"
	)
)

func init() {
	prometheus.MustRegister(aiOutcomes, aiResponseSeconds, aggregationRuns, aggregationOrgResults)
}
