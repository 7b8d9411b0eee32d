package tilecache

import "github.com/prometheus/client_golang/prometheus"

// metrics mirrors the per-provider counters as Prometheus series so an
// operator can graph cache behavior without polling the JSON statistics
// endpoint. The atomic counters in providerStats remain the source of
// truth for Statistics(); these are incremented alongside them.
type metrics struct {
	requests *prometheus.CounterVec
	hits     *prometheus.CounterVec
	misses   *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_tiles_cache_requests_total",
			Help: "Tile cache requests by provider.",
		}, []string{"provider"}),
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_tiles_cache_hits_total",
			Help: "Tile cache hits by provider.",
		}, []string{"provider"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_tiles_cache_misses_total",
			Help: "Tile cache misses (served from remote) by provider.",
		}, []string{"provider"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chart_tiles_cache_failures_total",
			Help: "Tile cache failures by provider.",
		}, []string{"provider"}),
	}
	reg.MustRegister(m.requests, m.hits, m.misses, m.failures)
	return m
}
