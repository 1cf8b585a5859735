// Package metrics exposes Prometheus instrumentation for the assistant and
// the HTTP API.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Assistant metrics
	AssistantRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursewise_assistant_requests_total",
			Help: "Assistant calls by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	ModelCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursewise_model_call_duration_seconds",
			Help:    "Duration of outbound model calls in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	ModelTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursewise_model_tokens_total",
			Help: "Tokens reported by the model provider, by provider and direction",
		},
		[]string{"provider", "direction"},
	)

	FallbackReplies = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coursewise_fallback_replies_total",
			Help: "Model replies that were not structured JSON",
		},
	)

	BudgetUsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursewise_budget_used",
			Help: "Model calls reserved against the process budget",
		},
	)

	// Prompt cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursewise_prompt_cache_lookups_total",
			Help: "Prompt cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "coursewise_prompt_cache_entries",
			Help: "Entries currently held by the prompt cache",
		},
	)

	// HTTP metrics
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursewise_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "coursewise_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coursewise_http_rate_limit_hits_total",
			Help: "Requests rejected by the per-IP HTTP rate limiter",
		},
		[]string{"route"},
	)
)
