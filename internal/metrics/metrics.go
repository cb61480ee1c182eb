// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name.
const Namespace = "clawchat"

// Relay outcomes.
const (
	OutcomeSuccess        = "success"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeTransportError = "transport_error"
)

// Collector owns a private registry so several servers can coexist in one
// process (tests start many).
type Collector struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	RelayRequests *prometheus.CounterVec
	RelayBytes    prometheus.Counter
	RelayDuration *prometheus.HistogramVec
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CachePurges   prometheus.Counter
	AuthFailures  prometheus.Counter
}

// New creates a collector with all metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		RelayRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "relay_requests_total",
			Help:      "Chat relay requests by outcome",
		}, []string{"outcome", "stream"}),
		RelayBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "relay_bytes_total",
			Help:      "Bytes relayed from the gateway to clients",
		}),
		RelayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "relay_duration_seconds",
			Help:      "Chat relay duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stream"}),
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of cache hits",
		}, []string{"key"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of cache misses",
		}, []string{"key"}),
		CachePurges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_purges_total",
			Help:      "Cache purges triggered by OpenClaw file changes",
		}),
		AuthFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected API key attempts",
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.RelayRequests,
		c.RelayBytes,
		c.RelayDuration,
		c.CacheHits,
		c.CacheMisses,
		c.CachePurges,
		c.AuthFailures,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// ObserveHTTP records one served request. route is the matched mux pattern.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ObserveRelay records one chat relay.
func (c *Collector) ObserveRelay(outcome string, stream bool, bytes int64, d time.Duration) {
	s := strconv.FormatBool(stream)
	c.RelayRequests.WithLabelValues(outcome, s).Inc()
	c.RelayBytes.Add(float64(bytes))
	c.RelayDuration.WithLabelValues(s).Observe(d.Seconds())
}

// CacheHit implements cache.Observer.
func (c *Collector) CacheHit(key string) {
	c.CacheHits.WithLabelValues(key).Inc()
}

// CacheMiss implements cache.Observer.
func (c *Collector) CacheMiss(key string) {
	c.CacheMisses.WithLabelValues(key).Inc()
}
