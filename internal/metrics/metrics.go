// Package metrics provides Prometheus instrumentation for sessionscope. It
// exposes counters for singleton resolution paths and construction outcomes,
// and gauges for session counts.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resolution path labels for SingletonLookups.
const (
	PathRequestCache = "request_cache"
	PathSession      = "session"
	PathConstructed  = "constructed"
)

var (
	// SingletonLookups counts singleton resolutions, labeled by the path that
	// produced the instance: "request_cache", "session" or "constructed".
	SingletonLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessionscope_singleton_lookups_total",
		Help: "Total number of session singleton resolutions by path",
	}, []string{"path"})

	// ConstructionFailures counts failed singleton constructions, labeled by cause.
	ConstructionFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessionscope_singleton_construction_failures_total",
		Help: "Total number of failed session singleton constructions",
	}, []string{"cause"})

	// ConstructionDuration records how long factories take to run.
	ConstructionDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sessionscope_singleton_construction_seconds",
		Help:    "Session singleton factory latency in seconds",
		Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
	})

	// SessionsActive tracks the current number of live sessions.
	SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sessionscope_sessions_active",
		Help: "Current number of live sessions",
	})

	// SessionsExpired counts sessions destroyed because they were idle past their TTL.
	SessionsExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sessionscope_sessions_expired_total",
		Help: "Total number of sessions expired by TTL",
	})
)

func init() {
	prometheus.MustRegister(
		SingletonLookups,
		ConstructionFailures,
		ConstructionDuration,
		SessionsActive,
		SessionsExpired,
	)
}

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
