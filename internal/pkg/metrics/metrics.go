package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "portfolio_dashboard"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	portfolioFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "fetch_total",
			Help:      "Total number of portfolio aggregation runs.",
		},
		[]string{"result"},
	)

	portfolioFetchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of portfolio aggregation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms to ~5s
		},
	)

	staleFetches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "stale_results_total",
			Help:      "Fetch results dropped because a newer fetch was issued.",
		},
	)

	tokenListFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_list",
			Name:      "fetch_total",
			Help:      "Total number of token list downloads.",
		},
		[]string{"result"},
	)

	metadataSources = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token_metadata",
			Name:      "load_source_total",
			Help:      "Where the token metadata mapping was loaded from.",
		},
		[]string{"source"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	registerOnce sync.Once
)

// MustRegisterMetrics registers all collectors with Registry. Safe to call more than once.
func MustRegisterMetrics() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			portfolioFetches,
			portfolioFetchDuration,
			staleFetches,
			tokenListFetches,
			metadataSources,
			httpRequests,
		)
	})
}

// Handler exposes Registry in the Prometheus text format.
func Handler() http.Handler {
	MustRegisterMetrics()
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// ObservePortfolioFetch records one aggregation run.
func ObservePortfolioFetch(started time.Time, err error) {
	portfolioFetches.WithLabelValues(result(err)).Inc()
	portfolioFetchDuration.Observe(time.Since(started).Seconds())
}

// IncStaleFetch counts a result discarded by the generation check.
func IncStaleFetch() {
	staleFetches.Inc()
}

// ObserveTokenListFetch records one token list download.
func ObserveTokenListFetch(err error) {
	tokenListFetches.WithLabelValues(result(err)).Inc()
}

// IncMetadataSource records where the metadata mapping was populated from: "store" or "network".
func IncMetadataSource(source string) {
	metadataSources.WithLabelValues(source).Inc()
}

// ObserveHTTPRequest records one handled HTTP request.
func ObserveHTTPRequest(method, path, status string) {
	httpRequests.WithLabelValues(method, path, status).Inc()
}
