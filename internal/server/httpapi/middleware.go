package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/fibkeeper/internal/common"
	"github.com/dmitrijs2005/fibkeeper/internal/server/session"
	"github.com/google/uuid"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logRequests tags every request with an id and logs its outcome.
func (s *HTTPServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set(common.RequestIDHeaderName, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

// recoverPanics turns a handler panic into a 500 instead of a dropped
// connection.
func (s *HTTPServer) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.logger.Error(r.Context(), "handler panic", "panic", p, "path", r.URL.Path)
				writeText(w, http.StatusInternalServerError, common.ErrorInternal.Error())
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// requireSession short-circuits anonymous clients with 401 and hands the
// principal to next through the request context.
func (s *HTTPServer) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.sessions.Authenticate(r)
		if err != nil {
			if !errors.Is(err, common.ErrorUnauthorized) {
				s.logger.Error(r.Context(), "session lookup failed", "error", err)
				writeText(w, http.StatusInternalServerError, common.ErrorInternal.Error())
				return
			}
			writeText(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
			return
		}

		next(w, r.WithContext(session.WithPrincipal(r.Context(), p)))
	}
}
