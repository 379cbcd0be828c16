package providers

import (
	"net/http"
	"time"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// unmatchedEndpoint labels requests no route pattern matches, so unknown
// paths cannot grow the label set.
const unmatchedEndpoint = "unmatched"

// RouteMatcher reports the registered pattern that serves a request.
// *http.ServeMux satisfies it.
type RouteMatcher interface {
	Handler(r *http.Request) (h http.Handler, pattern string)
}

// MetricsMiddleware labels each request with the route pattern routes
// resolves for it, never with the raw path.
func MetricsMiddleware(metrics MetricsProviderInterface, routes RouteMatcher, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		_, endpoint := routes.Handler(r)
		if endpoint == "" {
			endpoint = unmatchedEndpoint
		}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		metrics.IncRequestsTotal(endpoint, sw.status)
		metrics.ObserveRequestDuration(endpoint, duration)
	})
}
