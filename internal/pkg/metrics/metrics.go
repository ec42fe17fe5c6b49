package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livemapper"

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// CacheLookupsTotal counts status lookups by result (hit/miss).
	CacheLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Vehicle status cache lookups by result.",
		},
		[]string{"result"}, // hit, miss
	)

	// CacheState exposes the current state of the status slot (1 = current).
	CacheState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_state",
			Help:      "Current state of the vehicle status cache slot (1 for the active state).",
		},
		[]string{"state"}, // empty, fresh, stale
	)

	// UpstreamRequestsTotal counts Cartrack calls by outcome.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to the Cartrack API by outcome.",
		},
		[]string{"outcome"}, // success, http_error, error
	)

	// UpstreamLatency records Cartrack call latency.
	UpstreamLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Latency of requests sent to the Cartrack API.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// SharedFetchesTotal counts callers that joined an in-flight fetch instead of starting one.
	SharedFetchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_shared_fetches_total",
			Help:      "Status requests served by joining an in-flight upstream fetch.",
		},
	)

	// HTTPRequestsTotal counts served requests by route, method and status code.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served by route, method and status code.",
		},
		[]string{"route", "method", "code"},
	)

	// HTTPRequestDuration records handler latency per route.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CacheLookupsTotal,
		CacheState,
		UpstreamRequestsTotal,
		UpstreamLatency,
		SharedFetchesTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// SetCacheState marks state as the active cache slot state.
func SetCacheState(state string, all ...string) {
	for _, s := range all {
		CacheState.WithLabelValues(s).Set(0)
	}
	CacheState.WithLabelValues(state).Set(1)
}
