// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Shared HTTP metrics.
var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Domain metrics.
var (
	// SignInTotal counts sign-in attempts by outcome: success,
	// invalid_credentials, activation_failed, error.
	SignInTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskhub_signin_total",
			Help: "Sign-in attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// ActivationsTotal counts pending accounts activated on first sign-in.
	ActivationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deskhub_account_activations_total",
		Help: "Pending accounts activated on first sign-in.",
	})

	// PartialConsistencyTotal counts dual-write activations where the new
	// user record was inserted but the provisional record could not be
	// deleted. Each increment corresponds to an orphaned record.
	PartialConsistencyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "deskhub_activation_partial_consistency_total",
		Help: "Activations that left an orphaned provisional user record.",
	})

	// MembershipOpsTotal counts membership synchronizer operations by op
	// (add, update_role, remove) and outcome (ok, error).
	MembershipOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskhub_membership_ops_total",
			Help: "Membership operations by op and outcome.",
		},
		[]string{"op", "outcome"},
	)

	// TicketsCreatedTotal counts tickets created, labeled by priority.
	TicketsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deskhub_tickets_created_total",
			Help: "Tickets created, by priority.",
		},
		[]string{"priority"},
	)
)

// Init registers all metrics with the default registry. Call once at startup.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		SignInTotal, ActivationsTotal, PartialConsistencyTotal,
		MembershipOpsTotal, TicketsCreatedTotal,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument wraps next with request counting, latency, and in-flight gauges.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		status := strconv.Itoa(sw.code)
		path := routePattern(r)
		httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// routePattern returns the chi route pattern ("/tickets/{id}") so ids do not
// mint unbounded label values; unmatched requests fall back to the raw path.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming handlers (the SSE ticket feed) flush through the
// wrapper; a no-op when the underlying writer cannot flush.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
