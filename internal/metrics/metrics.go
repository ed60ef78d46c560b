package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "orgatlas_http_requests_total",
		Help: "Total HTTP requests by route and status code",
	}, []string{"route", "status"})

	HTTPRequestDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "orgatlas_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})

	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orgatlas_cache_hits_total",
		Help: "Total response cache hits",
	})

	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orgatlas_cache_misses_total",
		Help: "Total response cache misses",
	})
)

// Handler exposes the default prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
