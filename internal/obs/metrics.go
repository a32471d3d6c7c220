package obs

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Refresh outcomes recorded by RecordRefresh.
const (
	RefreshSucceeded = "success"
	RefreshFailed    = "failure"
	RefreshShared    = "shared"
	RefreshNoToken   = "no_token"
)

var (
	initOnce sync.Once

	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_api_requests_total",
			Help: "Requests sent to the remote billing API.",
		},
		[]string{"method", "status"},
	)

	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "billing_api_request_duration_seconds",
			Help:    "Remote billing API latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	tokenRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_token_refresh_total",
			Help: "Access token refresh attempts by outcome.",
		},
		[]string{"result"},
	)

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_http_in_flight_requests",
		Help: "In-flight console HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "console_http_requests_total",
			Help: "Console HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
)

// Init registers the metrics in the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(apiRequestsTotal, apiRequestDuration, tokenRefreshTotal, httpInFlight, httpRequestsTotal)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAPIRequest counts one remote call. status 0 means no response was received.
func RecordAPIRequest(method string, status int, elapsed time.Duration) {
	label := "transport_error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	apiRequestsTotal.WithLabelValues(method, label).Inc()
	apiRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func RecordRefresh(result string) {
	tokenRefreshTotal.WithLabelValues(result).Inc()
}

// Instrument wraps a handler with in-flight, count and status metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		httpRequestsTotal.WithLabelValues(r.Method, CanonicalPath(r.URL.Path), strconv.Itoa(sw.code)).Inc()
	})
}

// CanonicalPath collapses resource ids so label cardinality stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	// /api/{resource}/{id}[/action]
	if len(parts) >= 4 && parts[1] == "api" && parts[3] != "" {
		parts[3] = ":id"
	}
	return strings.Join(parts, "/")
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
