package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"aulepi/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request so a log line can be tied to a response.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(recorder.status)).Inc()
		s.logger.Info("request",
			"id", recorder.Header().Get(requestIDHeader),
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.status,
			"duration", time.Since(start),
		)
	})
}
