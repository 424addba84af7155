package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded for every request that reaches the exchange route.
const (
	OutcomeForbidden   = "forbidden"
	OutcomeRateLimited = "rate_limited"
	OutcomeBadRequest  = "bad_request"
	OutcomeModerated   = "moderated"
	OutcomePaired      = "paired"
	OutcomeWaiting     = "waiting"
	OutcomeUpstreamErr = "upstream_error"
)

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry         *prometheus.Registry
	requests         *prometheus.CounterVec
	upstreamDuration prometheus.Histogram
	rateLimitErrors  prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pixel_exchange_requests_total",
				Help: "Exchange requests by pipeline outcome",
			},
			[]string{"outcome"},
		),
		upstreamDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pixel_exchange_upstream_duration_seconds",
				Help:    "Latency of the upstream exchange call",
				Buckets: prometheus.DefBuckets,
			},
		),
		rateLimitErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pixel_exchange_ratelimit_errors_total",
				Help: "Rate limiter calls that failed and were let through",
			},
		),
	}
	m.registry.MustRegister(
		m.requests,
		m.upstreamDuration,
		m.rateLimitErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) IncOutcome(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveUpstream(seconds float64) {
	if m == nil {
		return
	}
	m.upstreamDuration.Observe(seconds)
}

func (m *Metrics) IncRateLimitError() {
	if m == nil {
		return
	}
	m.rateLimitErrors.Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
