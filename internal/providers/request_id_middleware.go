package providers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an id, reusing the caller's one
// when present, and writes an access line to the http log.
func RequestIDMiddleware(logger Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		start := time.Now()
		rec := recorderFor(w)
		next.ServeHTTP(rec, r)

		logger.Debugf(TypeHttp, "%s %s %s -> %d (%s)", id, r.Method, r.URL.RequestURI(), rec.status, time.Since(start))
	})
}
