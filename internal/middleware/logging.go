// Package middleware holds the HTTP middleware that runs in front of every
// route: the access log and the session gate.
//
// Every middleware here has the same shape. It takes the next handler and
// returns a handler that does its work before and/or after calling it:
//
//	func Gate(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // before: inspect or short-circuit the request
//	        next.ServeHTTP(w, r)
//	        // after: the response has been written
//	    })
//	}
//
// Ones that need settings, like Logger and SessionGate, are a constructor returning that
// func(http.Handler) http.Handler so chi's r.Use can take them directly.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// responseWriter records the status and size of a response.
//
// http.ResponseWriter never reports what status was sent, so the only way to
// log it is to sit in front of WriteHeader. Embedding the real writer keeps
// Header working unchanged, and Unwrap exposes it for flushing.
// statusCode starts at 200 because a handler that only calls Write never
// calls WriteHeader at all.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int64
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += int64(n)
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Logger writes one access log line per request. Mount it after chi's
// RequestID so the line carries the request id.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			logger.Info("request completed",
				slog.String("requestID", chimiddleware.GetReqID(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.statusCode),
				slog.Duration("duration", time.Since(start)),
				slog.Int64("bytes", wrapped.written),
			)
		})
	}
}
