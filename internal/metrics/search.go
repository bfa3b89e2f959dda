package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdsearch",
			Name:      "search_requests_total",
			Help:      "Total number of search calls",
		},
		[]string{"operation", "status"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mdsearch",
			Name:      "search_duration_seconds",
			Help:      "Search call duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	FacetErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdsearch",
			Name:      "facet_errors_total",
			Help:      "Facet groups skipped because of configuration errors",
		},
		[]string{"path"},
	)

	BoostFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdsearch",
			Name:      "boost_failures_total",
			Help:      "Searches that fell back to an unboosted query",
		},
		[]string{"boost"},
	)

	SearchLogEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdsearch",
			Name:      "search_log_events_total",
			Help:      "Search log entries by outcome",
		},
		[]string{"result"}, // "written" / "dropped" / "retried" / "failed"
	)

	ActiveSnapshots = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mdsearch",
			Name:      "active_snapshots",
			Help:      "Index snapshot handles currently held by searches",
		},
	)

	FilterCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdsearch",
			Name:      "filter_cache_total",
			Help:      "Filter cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(FacetErrorsTotal)
	prometheus.MustRegister(BoostFailuresTotal)
	prometheus.MustRegister(SearchLogEventsTotal)
	prometheus.MustRegister(ActiveSnapshots)
	prometheus.MustRegister(FilterCacheTotal)
	searchMetricsRegistered = true
}
