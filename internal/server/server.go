// Package server wires the games API routes, middleware and lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/gameshelf/gameshelf/internal/config"
	"github.com/gameshelf/gameshelf/internal/handlers"
	"github.com/gameshelf/gameshelf/internal/metrics"
	"github.com/gameshelf/gameshelf/internal/middleware"
	"github.com/gameshelf/gameshelf/internal/repository"
	"github.com/gameshelf/gameshelf/pkg/logger"
)

// Server serves the games API over HTTP.
type Server struct {
	cfg    *config.Config
	log    *logger.Logger
	http   *http.Server
	health *handlers.HealthHandler
	games  atomic.Pointer[handlers.GameHandler]

	mu   sync.RWMutex
	ln   net.Listener
	repo repository.GameRepository
}

// New builds a Server from cfg. Game routes answer 503 until SetGameHandler
// is called.
func New(cfg *config.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}

	s := &Server{cfg: cfg, log: log, health: handlers.NewHealthHandler()}
	s.http = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      s.middleware().Then(s.routes()),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func (s *Server) middleware() middleware.Chain {
	chain := middleware.New(
		middleware.Metrics(),
		middleware.RequestID(),
		middleware.ClientIP(s.cfg.Server.TrustProxy, s.cfg.Server.TrustedProxies),
		middleware.Logging(s.log),
	)
	if origins := s.cfg.CORS.AllowedOrigins; len(origins) > 0 {
		chain = chain.Append(middleware.CORS(origins))
	}
	return chain
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.health.Health)
	mux.HandleFunc("GET /ready", s.health.Ready)
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("POST /api/games", s.gameRoute(func(h *handlers.GameHandler, w http.ResponseWriter, r *http.Request) {
		h.Create(w, r)
	}))
	mux.Handle("GET /api/games", s.gameRoute(func(h *handlers.GameHandler, w http.ResponseWriter, r *http.Request) {
		h.List(w, r)
	}))
	mux.Handle("GET /api/games/{id}", s.gameRoute(func(h *handlers.GameHandler, w http.ResponseWriter, r *http.Request) {
		h.Get(w, r, r.PathValue("id"))
	}))
	mux.Handle("DELETE /api/games/{id}", s.gameRoute(func(h *handlers.GameHandler, w http.ResponseWriter, r *http.Request) {
		h.Delete(w, r, r.PathValue("id"))
	}))
	return mux
}

type gameFunc func(h *handlers.GameHandler, w http.ResponseWriter, r *http.Request)

func (s *Server) gameRoute(fn gameFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := s.games.Load()
		if h == nil {
			http.Error(w, "game service not configured", http.StatusServiceUnavailable)
			return
		}
		fn(h, w, r)
	}
}

// Start listens on the configured address and serves until Shutdown.
// It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Address(), err)
	}

	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	s.log.Info("games api listening", "address", ln.Addr().String())

	err = s.http.Serve(ln)

	s.mu.Lock()
	s.ln = nil
	s.mu.Unlock()

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve: %w", err)
}

// Shutdown fails readiness first, then drains in-flight requests until ctx
// expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Drain()
	s.log.Info("games api draining")

	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("shutdown incomplete", "error", err.Error())
		return err
	}

	s.log.Info("games api stopped")
	return nil
}

// IsRunning reports whether Start is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ln != nil
}

// Addr is the bound listener address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Handler is the routed mux behind the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Health exposes the liveness and readiness handler.
func (s *Server) Health() *handlers.HealthHandler {
	return s.health
}

// AddReadinessCheck registers a dependency /ready must reach.
func (s *Server) AddReadinessCheck(name string, check handlers.CheckFunc) {
	s.health.Require(name, check)
}

// AddOptionalReadinessCheck registers a dependency /ready reports on
// without failing.
func (s *Server) AddOptionalReadinessCheck(name string, check handlers.CheckFunc) {
	s.health.Observe(name, check)
}

// SetGameRepository records the store backing the API and makes /ready
// depend on it.
func (s *Server) SetGameRepository(repo repository.GameRepository) {
	s.mu.Lock()
	s.repo = repo
	s.mu.Unlock()

	if repo != nil {
		s.AddReadinessCheck("store", repo.HealthCheck)
	}
}

// GameRepository returns the store set by SetGameRepository.
func (s *Server) GameRepository() repository.GameRepository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.repo
}

// SetGameHandler installs the handler behind /api/games.
func (s *Server) SetGameHandler(h *handlers.GameHandler) {
	s.games.Store(h)
}

// GameHandler returns the installed game handler, if any.
func (s *Server) GameHandler() *handlers.GameHandler {
	return s.games.Load()
}
