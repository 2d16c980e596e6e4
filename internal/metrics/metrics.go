package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
// All recording methods are safe on a nil receiver.
type Metrics struct {
	registry           *prometheus.Registry
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	transitions        *prometheus.CounterVec
	achievementsEarned prometheus.Counter
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	publishFailures    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "disposal_transitions_total",
			Help: "Disposal status transitions by target status and outcome.",
		}, []string{"status", "outcome"}),
		achievementsEarned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "achievements_earned_total",
			Help: "Achievements awarded to companies.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_cache_hits_total",
			Help: "Catalog cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_cache_misses_total",
			Help: "Catalog cache misses.",
		}),
		publishFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "event_publish_failures_total",
			Help: "Domain events that could not be delivered to the broker.",
		}, []string{"event"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpDuration,
		m.transitions,
		m.achievementsEarned,
		m.cacheHits,
		m.cacheMisses,
		m.publishFailures,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) Transition(status string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "failed"
	}
	m.transitions.WithLabelValues(status, outcome).Inc()
}

func (m *Metrics) AchievementsEarned(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.achievementsEarned.Add(float64(n))
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMisses.Inc()
}

func (m *Metrics) PublishFailed(event string) {
	if m == nil {
		return
	}
	m.publishFailures.WithLabelValues(event).Inc()
}
