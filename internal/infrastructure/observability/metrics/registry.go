// Package metrics exposes Prometheus collectors for Fund Road operations.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fundroad"

// Registry owns a private Prometheus registry so tests can build as many as they like.
type Registry struct {
	registry *prometheus.Registry

	operationDuration *prometheus.HistogramVec
	operationTotal    *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	toggleTotal       *prometheus.CounterVec
	liveSessions      prometheus.Gauge
	navigationStates  prometheus.Gauge
}

// NewRegistry creates a registry with its own prometheus collectors
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of tracked operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		operationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Tracked operations by outcome.",
		}, []string{"operation", "outcome"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		toggleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completion_toggles_total",
			Help:      "Completion toggles by kind and resulting state.",
		}, []string{"kind", "completed"}),
		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Open live journey websocket sessions.",
		}),
		navigationStates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "navigation_states",
			Help:      "Session navigation states held in memory.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.operationDuration,
		r.operationTotal,
		r.httpDuration,
		r.toggleTotal,
		r.liveSessions,
		r.navigationStates,
	)
	return r
}

// ObserveOperation implements performance.Recorder.
func (r *Registry) ObserveOperation(operation string, duration time.Duration, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	r.operationTotal.WithLabelValues(operation, outcome).Inc()
}

// ObserveHTTP records one request duration by route and status
func (r *Registry) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpDuration.WithLabelValues(strings.ToUpper(method), route, strconv.Itoa(status)).Observe(duration.Seconds())
}

// CountToggle counts a completion toggle
func (r *Registry) CountToggle(kind string, completed bool) {
	r.toggleTotal.WithLabelValues(kind, strconv.FormatBool(completed)).Inc()
}

func (r *Registry) LiveSessionOpened() { r.liveSessions.Inc() }
func (r *Registry) LiveSessionClosed() { r.liveSessions.Dec() }

func (r *Registry) SetNavigationStates(n int) { r.navigationStates.Set(float64(n)) }

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer is exposed for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
