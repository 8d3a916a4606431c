package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "aulepi_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})
	SnapshotBuildSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "aulepi_snapshot_build_seconds",
		Help:    "Time spent classifying and ranking one snapshot",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aulepi_calendar_cache_hits_total",
		Help: "Day-calendar cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aulepi_calendar_cache_misses_total",
		Help: "Day-calendar cache misses",
	})
	UpstreamFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "aulepi_upstream_failures_total",
		Help: "Failed calendar refreshes against the scheduling platform",
	})
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		SnapshotBuildSeconds,
		CacheHitsTotal,
		CacheMissesTotal,
		UpstreamFailuresTotal,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
