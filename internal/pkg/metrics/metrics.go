package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoswap_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoswap_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 90},
		},
		[]string{"method", "path"},
	)

	// ExtractionAttempts outcome: sufficient, insufficient, failed
	ExtractionAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoswap_extraction_attempts_total",
			Help: "Extraction strategy attempts by outcome.",
		},
		[]string{"strategy", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ecoswap_extraction_duration_seconds",
			Help:    "Duration of a single extraction strategy.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 15, 30, 60},
		},
		[]string{"strategy"},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoswap_extractions_total",
			Help: "Completed extractions by final method.",
		},
		[]string{"method"},
	)

	GenerativeCostUSD = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ecoswap_generative_cost_usd_total",
			Help: "Estimated spend on the generative fallback in USD.",
		},
	)

	// GenerativeTokens kind: prompt, completion
	GenerativeTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoswap_generative_tokens_total",
			Help: "Tokens consumed by the generative fallback.",
		},
		[]string{"kind"},
	)

	GovernorRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoswap_governor_rejections_total",
			Help: "Generative fallback calls refused by the usage governor.",
		},
		[]string{"reason"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ecoswap_cache_lookups_total",
			Help: "Extraction cache lookups by result.",
		},
		[]string{"backend", "result"},
	)
)
