package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Admin HTTP metrics.
var (
	AdminRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mdsearch",
			Subsystem: "admin",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"method", "route", "status"},
	)

	AdminRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mdsearch",
			Subsystem: "admin",
			Name:      "requests_total",
			Help:      "Total number of admin HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
)

var registerAdmin sync.Once

// Middleware records admin request duration and count per chi route.
func Middleware() func(next http.Handler) http.Handler {
	registerAdmin.Do(func() {
		prometheus.MustRegister(AdminRequestDuration, AdminRequestsTotal)
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			labels := []string{r.Method, routeOf(r), strconv.Itoa(status)}
			AdminRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			AdminRequestsTotal.WithLabelValues(labels...).Inc()
		})
	}
}

// routeOf returns the matched chi pattern. Unmatched paths share one label.
func routeOf(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil || rc.RoutePattern() == "" {
		return "unmatched"
	}
	return rc.RoutePattern()
}
