// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of analysis pipeline runs completed",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	PipelineRunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_runs_active",
			Help: "Number of analysis pipeline runs in flight",
		},
	)

	ExternalCallsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "external_calls_failed_total",
			Help: "Total number of failed external collaborator calls",
		},
		[]string{"service", "error_code"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"endpoint", "status"},
	)

	FingerprintCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fingerprint_cache_lookups_total",
			Help: "Fingerprint cache lookups by outcome",
		},
		[]string{"outcome"},
	)
)
