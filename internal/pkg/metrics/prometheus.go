package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkboost",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkboost",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "linkboost",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	proxyRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkboost",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Requests forwarded to upstream services",
		},
		[]string{"upstream", "outcome"},
	)

	proxyRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkboost",
			Subsystem: "proxy",
			Name:      "upstream_duration_seconds",
			Help:      "Time spent waiting on upstream services",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"upstream"},
	)

	healthStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "linkboost",
			Subsystem: "health",
			Name:      "service_status",
			Help:      "Last observed dependency status (0 healthy, 1 degraded, 2 unhealthy)",
		},
		[]string{"service"},
	)

	healthCheckDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "linkboost",
			Subsystem: "health",
			Name:      "check_duration_seconds",
			Help:      "Duration of individual dependency checks",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 2.5, 5, 10},
		},
		[]string{"service"},
	)

	metricsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "linkboost",
			Subsystem: "ingest",
			Name:      "records_total",
			Help:      "Profile and engagement records accepted or rejected",
		},
		[]string{"kind", "outcome"},
	)

	realtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "linkboost",
			Subsystem: "realtime",
			Name:      "clients",
			Help:      "Connected realtime clients",
		},
	)
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)
		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(time.Since(start).Seconds())
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordProxyRequest records one forwarded request and its outcome (ok, upstream_error, invalid_response)
func RecordProxyRequest(upstream, outcome string, duration time.Duration) {
	proxyRequestsTotal.WithLabelValues(upstream, outcome).Inc()
	proxyRequestDuration.WithLabelValues(upstream).Observe(duration.Seconds())
}

// SetHealthStatus stores the numeric status of a dependency
func SetHealthStatus(service string, severity int, duration time.Duration) {
	healthStatus.WithLabelValues(service).Set(float64(severity))
	healthCheckDuration.WithLabelValues(service).Observe(duration.Seconds())
}

// RecordIngest counts an ingest attempt for a metric kind (profile, engagement)
func RecordIngest(kind string, ok bool) {
	outcome := "accepted"
	if !ok {
		outcome = "failed"
	}
	metricsRecorded.WithLabelValues(kind, outcome).Inc()
}

// SetRealtimeClients sets the connected realtime client gauge
func SetRealtimeClients(n int) {
	realtimeClients.Set(float64(n))
}
