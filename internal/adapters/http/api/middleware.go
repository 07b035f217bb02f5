package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mrdon/kioskd/pkg/metrics"
)

// responseWriter captures the status code written by a handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware records request counts and latency per endpoint.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next(rw, r)

		status := strconv.Itoa(rw.statusCode)
		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, time.Since(start).Seconds())
	}
}
