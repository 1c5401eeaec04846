package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// CacheStats reports embedding cache effectiveness.
type CacheStats interface {
	Stats() (hits, misses int64)
}

// Metrics holds the collectors exposed on /metrics.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	answers   *prometheus.CounterVec
	retrieved prometheus.Histogram
}

// NewMetrics registers the server's collectors on a fresh registry. cache
// may be nil.
func NewMetrics(cache CacheStats) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docrag",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docrag",
			Name:      "answers_total",
			Help:      "Answered questions, split by whether any context was found.",
		}, []string{"grounded"}),
		retrieved: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docrag",
			Name:      "retrieved_chunks",
			Help:      "Chunks used to ground each answer.",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.latency, m.answers, m.retrieved,
	)
	if cache != nil {
		m.registry.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "docrag",
				Name:      "embedding_cache_hits_total",
				Help:      "Embeddings served from the cache.",
			}, func() float64 { h, _ := cache.Stats(); return float64(h) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "docrag",
				Name:      "embedding_cache_misses_total",
				Help:      "Embeddings computed by the provider.",
			}, func() float64 { _, misses := cache.Stats(); return float64(misses) }),
		)
	}
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
