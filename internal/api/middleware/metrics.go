package middleware

import (
	"net/http"
	"strconv"
	"time"

	"credit-control/internal/infrastructure/monitoring"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MetricsMiddleware records request counts and latencies per route pattern.
// The chi route pattern keeps the label cardinality bounded regardless of
// path parameter values.
func MetricsMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				duration := time.Since(start)
				code := strconv.Itoa(ww.Status())
				routePattern := chi.RouteContext(r.Context()).RoutePattern()

				monitoring.HTTP.RequestsTotal.WithLabelValues(r.Method, routePattern, code).Inc()
				monitoring.HTTP.RequestDuration.WithLabelValues(r.Method, routePattern, code).Observe(duration.Seconds())
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
