package middleware

import (
	"net/http"
	"time"

	"github.com/gameshelf/gameshelf/pkg/logger"
)

// Logging returns a middleware that writes one log entry per request.
// Server errors are logged at error level, client errors at warn.
func Logging(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.Discard()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := recordStatus(w)

			next.ServeHTTP(rw, r)

			keyvals := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", GetRequestID(r.Context()),
				"client_ip", GetClientIP(r.Context()),
			}

			switch {
			case rw.status >= http.StatusInternalServerError:
				log.Error("request completed", keyvals...)
			case rw.status >= http.StatusBadRequest:
				log.Warn("request completed", keyvals...)
			default:
				log.Info("request completed", keyvals...)
			}
		})
	}
}
