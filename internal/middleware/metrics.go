package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gameshelf/gameshelf/internal/metrics"
)

const gamesRoute = "/api/games"

// statusRecorder remembers the first status code the handler sends.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func recordStatus(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wrote {
		s.status, s.wrote = code, true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.wrote = true
	return s.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// Metrics counts requests and observes latency per route, and tracks
// in-flight requests.
func Metrics() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			metrics.ActiveConnections.Inc()
			defer metrics.ActiveConnections.Dec()

			start := time.Now()
			rec := recordStatus(w)
			next.ServeHTTP(rec, r)

			metrics.RecordRequest(r.Method, routeLabel(r.URL.Path), rec.status, time.Since(start))
		})
	}
}

// routeLabel maps a request path onto the route it was served by, so game
// ids never become label values.
func routeLabel(path string) string {
	switch path {
	case "/health", "/ready", "/metrics":
		return path
	case gamesRoute, gamesRoute + "/":
		return gamesRoute
	}
	if id, ok := strings.CutPrefix(path, gamesRoute+"/"); ok && id != "" && !strings.Contains(id, "/") {
		return gamesRoute + "/{id}"
	}
	return "/other"
}
