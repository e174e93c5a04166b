package providers

import (
	"net/http"
	"time"
)

// responseRecorder remembers the status a handler wrote. The outermost
// middleware installs it and the inner ones reuse it.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (w *responseRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func recorderFor(w http.ResponseWriter) *responseRecorder {
	if rec, ok := w.(*responseRecorder); ok {
		return rec
	}
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

// errorClass names the failure behind an HTTP status the API controller
// produces. ok is false for non-error statuses.
func errorClass(status int) (class string, ok bool) {
	switch {
	case status < http.StatusBadRequest:
		return "", false
	case status == http.StatusBadRequest:
		return "bad_request", true
	case status == http.StatusNotFound:
		return "not_found", true
	case status == http.StatusMethodNotAllowed:
		return "method_not_allowed", true
	case status == http.StatusTooManyRequests:
		return "overloaded", true
	case status == http.StatusBadGateway:
		return "upstream", true
	case status == http.StatusServiceUnavailable:
		return "unavailable", true
	case status < http.StatusInternalServerError:
		return "client", true
	default:
		return "internal", true
	}
}

// MetricsMiddleware records requests under route, the pattern the handler is
// mounted at, never the raw path.
func MetricsMiddleware(metrics MetricsProviderInterface, route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := recorderFor(w)

		next.ServeHTTP(rec, r)

		metrics.IncRequestsTotal(route, rec.status)
		metrics.ObserveRequestDuration(route, time.Since(start))
		if class, failed := errorClass(rec.status); failed {
			metrics.IncRequestErrors(route, class)
		}
	})
}

// RouteMetrics adapts MetricsMiddleware for RouterProviderInterface.Handler.
func RouteMetrics(metrics MetricsProviderInterface) RouteMiddleware {
	return func(route string, next http.Handler) http.Handler {
		return MetricsMiddleware(metrics, route, next)
	}
}
