package shield

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ffhgterh111-hub/LFGWarframeMain/kit"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// AccessLog logs one line per request with method, path, status, duration
// and the kit request ID when one is set. 5xx responses log at warn.
func AccessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
				"remote_addr", r.RemoteAddr,
			}
			if id := kit.GetRequestID(r.Context()); id != "" {
				attrs = append(attrs, "request_id", id)
			}
			if rec.status >= http.StatusInternalServerError {
				logger.Warn("shield: request", attrs...)
				return
			}
			logger.Debug("shield: request", attrs...)
		})
	}
}
