package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the Prometheus metrics of one process. Each collector owns
// its registry, so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	GraphBuilds   *prometheus.CounterVec
	GraphDuration *prometheus.HistogramVec
	GraphNodes    *prometheus.HistogramVec

	Unresolved *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_cache_hits_total",
			Help:      "Enriched collection lookups served from the cache",
		}, []string{"collection", "mode"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_cache_misses_total",
			Help:      "Enriched collection lookups that ran the pipeline",
		}, []string{"collection", "mode"}),
		GraphBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "graph_builds_total",
			Help:      "Per-entity graphs built",
		}, []string{"kind", "found"}),
		GraphDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_build_duration_seconds",
			Help:      "Time spent building a per-entity graph, including loads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		GraphNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes per built graph",
			Buckets:   []float64{1, 2, 5, 10, 20, 50, 100},
		}, []string{"kind"}),
		Unresolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_references_total",
			Help:      "References dropped during hydration",
		}, []string{"reason"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		c.CacheHits,
		c.CacheMisses,
		c.GraphBuilds,
		c.GraphDuration,
		c.GraphNodes,
		c.Unresolved,
		c.HTTPRequests,
		c.HTTPDuration,
	)
	return c
}

// The record helpers below accept a nil collector so components can run
// without metrics.

func (c *Collector) CacheLookup(collection, mode string, hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.CacheHits.WithLabelValues(collection, mode).Inc()
		return
	}
	c.CacheMisses.WithLabelValues(collection, mode).Inc()
}

func (c *Collector) GraphBuilt(kind string, found bool, nodes int, d time.Duration) {
	if c == nil {
		return
	}
	f := "false"
	if found {
		f = "true"
	}
	c.GraphBuilds.WithLabelValues(kind, f).Inc()
	c.GraphDuration.WithLabelValues(kind).Observe(d.Seconds())
	c.GraphNodes.WithLabelValues(kind).Observe(float64(nodes))
}

func (c *Collector) UnresolvedReference(reason string) {
	if c == nil {
		return
	}
	c.Unresolved.WithLabelValues(reason).Inc()
}

func (c *Collector) HTTPRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, http.StatusText(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
